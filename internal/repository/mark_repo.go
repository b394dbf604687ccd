package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// MarkRepository defines persistence operations for marks and result status.
type MarkRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
	ListPublishedByStudentAndExam(ctx context.Context, studentID uint, exam string) ([]models.Mark, error)
	ListByExam(ctx context.Context, exam string) ([]models.Mark, error)
	AverageForSubject(ctx context.Context, subject string) (float64, error)
	AverageForStudent(ctx context.Context, studentID uint) (float64, error)
	SetPublishedByExam(ctx context.Context, exam string, published bool) (int64, error)
	GetResultStatus(ctx context.Context, exam string) (models.ResultStatus, error)
	UpsertResultStatus(ctx context.Context, status *models.ResultStatus) error
	StudentIDsByExam(ctx context.Context, exam string) ([]uint, error)
}

type markRepository struct {
	db *gorm.DB
}

// NewMarkRepository instantiates a GORM-backed repository.
func NewMarkRepository(db *gorm.DB) MarkRepository {
	return &markRepository{db: db}
}

func (r *markRepository) Create(ctx context.Context, mark *models.Mark) error {
	return r.db.WithContext(ctx).Create(mark).Error
}

func (r *markRepository) ListPublishedByStudentAndExam(ctx context.Context, studentID uint, exam string) ([]models.Mark, error) {
	var marks []models.Mark
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND exam = ? AND is_published = ?", studentID, exam, true).
		Order("subject ASC").
		Find(&marks).Error
	if err != nil {
		return nil, err
	}

	return marks, nil
}

func (r *markRepository) ListByExam(ctx context.Context, exam string) ([]models.Mark, error) {
	var marks []models.Mark
	err := r.db.WithContext(ctx).
		Where("exam = ?", exam).
		Find(&marks).Error
	if err != nil {
		return nil, err
	}

	return marks, nil
}

func (r *markRepository) AverageForSubject(ctx context.Context, subject string) (float64, error) {
	var average *float64
	err := r.db.WithContext(ctx).
		Model(&models.Mark{}).
		Where("subject = ?", subject).
		Select("AVG(marks)").
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	if average == nil {
		return 0, nil
	}

	return *average, nil
}

func (r *markRepository) AverageForStudent(ctx context.Context, studentID uint) (float64, error) {
	var average *float64
	err := r.db.WithContext(ctx).
		Model(&models.Mark{}).
		Where("student_id = ? AND is_published = ?", studentID, true).
		Select("AVG(marks)").
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	if average == nil {
		return 0, nil
	}

	return *average, nil
}

// SetPublishedByExam flips the published flag for every mark of an exam and
// returns how many rows changed.
func (r *markRepository) SetPublishedByExam(ctx context.Context, exam string, published bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Mark{}).
		Where("exam = ?", exam).
		Update("is_published", published)

	return result.RowsAffected, result.Error
}

func (r *markRepository) GetResultStatus(ctx context.Context, exam string) (models.ResultStatus, error) {
	var status models.ResultStatus
	err := r.db.WithContext(ctx).Where("exam = ?", exam).First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ResultStatus{Exam: exam}, nil
		}
		return models.ResultStatus{}, err
	}

	return status, nil
}

func (r *markRepository) UpsertResultStatus(ctx context.Context, status *models.ResultStatus) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "exam"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_declared", "declared_by", "declared_at", "updated_at"}),
		}).
		Create(status).Error
}

func (r *markRepository) StudentIDsByExam(ctx context.Context, exam string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Mark{}).
		Where("exam = ?", exam).
		Distinct("student_id").
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	AddInternalMarks(ctx context.Context, id uint, delta float64) error
	Count(ctx context.Context) (int64, error)
	IDsByTarget(ctx context.Context, targetRole, department string, semester int) ([]uint, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// AddInternalMarks credits verified bonus marks onto the student record.
func (r *studentRepository) AddInternalMarks(ctx context.Context, id uint, delta float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Update("internal_marks", gorm.Expr("internal_marks + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error

	return count, err
}

// IDsByTarget resolves a notice audience to concrete student IDs.
func (r *studentRepository) IDsByTarget(ctx context.Context, targetRole, department string, semester int) ([]uint, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	switch targetRole {
	case models.NoticeTargetDepartment:
		query = query.Where("department = ?", department)
	case models.NoticeTargetSemester:
		query = query.Where("semester = ?", semester)
	case models.NoticeTargetClass:
		query = query.Where("department = ? AND semester = ?", department, semester)
	case models.NoticeTargetAll:
	default:
		return nil, nil
	}

	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

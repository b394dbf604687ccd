package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// NoticeRepository defines persistence operations for the notice board.
type NoticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	GetByID(ctx context.Context, id uint) (models.Notice, error)
	ListAll(ctx context.Context, noticeType string, limit int) ([]models.Notice, error)
	ListVisible(ctx context.Context, department string, semester int, noticeType string, limit int, now time.Time) ([]models.Notice, error)
	Update(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id uint) error
	ArchiveTimetables(ctx context.Context, department string, semester int) error
	IncrementDownloads(ctx context.Context, id uint) error
	MarkRead(ctx context.Context, noticeID, studentID uint, at time.Time) error
	ReadNoticeIDs(ctx context.Context, studentID uint) ([]uint, error)
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context, noticeType string) (int64, error)
	SumDownloads(ctx context.Context) (int64, error)
	CountReads(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]models.Notice, error)
}

type noticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository instantiates a GORM-backed repository.
func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &noticeRepository{db: db}
}

func (r *noticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	return r.db.WithContext(ctx).Create(notice).Error
}

func (r *noticeRepository) GetByID(ctx context.Context, id uint) (models.Notice, error) {
	var notice models.Notice
	if err := r.db.WithContext(ctx).First(&notice, id).Error; err != nil {
		return models.Notice{}, err
	}

	return notice, nil
}

func (r *noticeRepository) ListAll(ctx context.Context, noticeType string, limit int) ([]models.Notice, error) {
	query := r.db.WithContext(ctx).Model(&models.Notice{})
	if noticeType != "" {
		query = query.Where("notice_type = ?", noticeType)
	}

	var notices []models.Notice
	err := query.Order("created_at DESC").Limit(limit).Find(&notices).Error
	if err != nil {
		return nil, err
	}

	return notices, nil
}

// ListVisible returns published notices whose audience includes the given
// department and semester, skipping notices scheduled for the future.
func (r *noticeRepository) ListVisible(ctx context.Context, department string, semester int, noticeType string, limit int, now time.Time) ([]models.Notice, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Notice{}).
		Where("is_published = ?", true).
		Where("publish_at IS NULL OR publish_at <= ?", now).
		Where(
			"target_role = ? OR (target_role = ? AND department = ?) OR (target_role = ? AND semester = ?) OR (target_role = ? AND department = ? AND semester = ?)",
			models.NoticeTargetAll,
			models.NoticeTargetDepartment, department,
			models.NoticeTargetSemester, semester,
			models.NoticeTargetClass, department, semester,
		)

	if noticeType != "" {
		query = query.Where("notice_type = ?", noticeType)
	}

	var notices []models.Notice
	err := query.Order("created_at DESC").Limit(limit).Find(&notices).Error
	if err != nil {
		return nil, err
	}

	return notices, nil
}

func (r *noticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	return r.db.WithContext(ctx).Save(notice).Error
}

func (r *noticeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notice_id = ?", id).Delete(&models.NoticeRead{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Notice{}, id).Error
	})
}

// ArchiveTimetables unpublishes previously posted timetables for the scope a
// new one replaces.
func (r *noticeRepository) ArchiveTimetables(ctx context.Context, department string, semester int) error {
	query := r.db.WithContext(ctx).
		Model(&models.Notice{}).
		Where("notice_type = ? AND is_published = ?", models.NoticeTypeTimetable, true)

	if department != "" && semester > 0 {
		query = query.Where("department = ? AND semester = ?", department, semester)
	} else if department != "" {
		query = query.Where("department = ?", department)
	}

	return query.Update("is_published", false).Error
}

func (r *noticeRepository) IncrementDownloads(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notice{}).
		Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkRead upserts the per-student read receipt.
func (r *noticeRepository) MarkRead(ctx context.Context, noticeID, studentID uint, at time.Time) error {
	receipt := models.NoticeRead{
		NoticeID:  noticeID,
		StudentID: studentID,
		IsRead:    true,
		ReadAt:    &at,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "notice_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_read", "read_at"}),
		}).
		Create(&receipt).Error
}

func (r *noticeRepository) ReadNoticeIDs(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.NoticeRead{}).
		Where("student_id = ? AND is_read = ?", studentID, true).
		Pluck("notice_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *noticeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notice{}).Count(&count).Error

	return count, err
}

func (r *noticeRepository) CountByType(ctx context.Context, noticeType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notice{}).
		Where("notice_type = ?", noticeType).
		Count(&count).Error

	return count, err
}

func (r *noticeRepository) SumDownloads(ctx context.Context) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Notice{}).
		Select("SUM(download_count)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}

	return *total, nil
}

func (r *noticeRepository) CountReads(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NoticeRead{}).
		Where("is_read = ?", true).
		Count(&count).Error

	return count, err
}

func (r *noticeRepository) ListRecent(ctx context.Context, limit int) ([]models.Notice, error) {
	var notices []models.Notice
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&notices).Error
	if err != nil {
		return nil, err
	}

	return notices, nil
}
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// ComplaintRepository defines persistence operations for grievances.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id uint) (models.Complaint, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Complaint, error)
	ListPending(ctx context.Context) ([]models.Complaint, error)
	Update(ctx context.Context, complaint *models.Complaint) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	Count(ctx context.Context) (int64, error)
	OldestPendingSince(ctx context.Context) (time.Time, bool, error)
}

type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository instantiates a GORM-backed repository.
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *complaintRepository) GetByID(ctx context.Context, id uint) (models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.WithContext(ctx).First(&complaint, id).Error; err != nil {
		return models.Complaint{}, err
	}

	return complaint, nil
}

func (r *complaintRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}

	return complaints, nil
}

func (r *complaintRepository) ListPending(ctx context.Context) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ComplaintStatusPending).
		Order("created_at ASC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}

	return complaints, nil
}

func (r *complaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}

func (r *complaintRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("status = ?", status).
		Count(&count).Error

	return count, err
}

func (r *complaintRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Complaint{}).Count(&count).Error

	return count, err
}

// OldestPendingSince returns the creation time of the oldest unreviewed
// complaint; the boolean is false when no complaint is pending.
func (r *complaintRepository) OldestPendingSince(ctx context.Context) (time.Time, bool, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ComplaintStatusPending).
		Order("created_at ASC").
		First(&complaint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	return complaint.CreatedAt, true, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListActive(ctx context.Context, subject string) ([]models.Assignment, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Deactivate(ctx context.Context, id uint) error
	CountActive(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListActive(ctx context.Context, subject string) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}

	var assignments []models.Assignment
	if err := query.Order("deadline ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("created_by = ?", facultyID).
		Order("created_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// Deactivate retires an assignment without losing its submissions.
func (r *assignmentRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *assignmentRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("is_active = ?", true).
		Count(&count).Error

	return count, err
}

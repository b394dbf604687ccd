package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/repository"
	"github.com/noah-isme/grievance-go-api/internal/reward"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// Assignment service errors surfaced to handlers.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentInactive = errors.New("assignment is no longer active")
	ErrInvalidDeadline    = errors.New("invalid deadline")
	ErrDeadlineInPast     = errors.New("deadline must be in the future")
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssignmentService exposes assignment use cases.
type AssignmentService interface {
	ListActive(ctx context.Context, subject string) ([]dto.AssignmentResponse, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, facultyID uint, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Deactivate(ctx context.Context, id uint) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	uploader  FileUploader
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validate,
		uploader:  uploader,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) ListActive(ctx context.Context, subject string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListActive(ctx, subject)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) ListByFaculty(ctx context.Context, facultyID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, facultyID uint, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	deadline, err := utils.ParseTimestamp(payload.Deadline)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidDeadline, err)
	}

	if !deadline.After(s.now()) {
		return dto.AssignmentResponse{}, ErrDeadlineInPast
	}

	curve, err := reward.ParseCurve(payload.RewardCurve)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	mode := payload.SubmissionMode
	if mode == "" {
		mode = models.SubmissionModeOffline
	}

	assignment := models.Assignment{
		Title:          payload.Title,
		Description:    payload.Description,
		Subject:        payload.Subject,
		Deadline:       deadline,
		MaxBonusMarks:  payload.MaxBonusMarks,
		RewardCurve:    string(curve),
		SubmissionMode: mode,
		IsActive:       true,
		CreatedBy:      facultyID,
	}

	if file != nil {
		url, err := s.uploadFile(ctx, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.FileURL = url
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Str("curve", assignment.RewardCurve).
		Time("deadline", assignment.Deadline).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}

	if payload.Description != nil {
		assignment.Description = *payload.Description
	}

	if payload.Deadline != nil {
		deadline, err := utils.ParseTimestamp(*payload.Deadline)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidDeadline, err)
		}

		if !deadline.After(s.now()) {
			return dto.AssignmentResponse{}, ErrDeadlineInPast
		}

		assignment.Deadline = deadline
	}

	if payload.MaxBonusMarks != nil {
		assignment.MaxBonusMarks = *payload.MaxBonusMarks
	}

	if payload.RewardCurve != nil {
		curve, err := reward.ParseCurve(*payload.RewardCurve)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.RewardCurve = string(curve)
	}

	if file != nil {
		url, err := s.uploadFile(ctx, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.FileURL = url
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Deactivate(ctx context.Context, id uint) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deactivated")
	return nil
}

func (s *assignmentService) uploadFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	url, err := s.uploader.Upload(ctx, file.Filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return url, nil
}

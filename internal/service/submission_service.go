package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/observability"
	"github.com/noah-isme/grievance-go-api/internal/repository"
	"github.com/noah-isme/grievance-go-api/internal/reward"
)

// Submission service errors surfaced to handlers.
var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrAlreadySubmitted    = errors.New("assignment already submitted")
	ErrAlreadyVerified     = errors.New("submission already verified")
	ErrFileRequired        = errors.New("online submissions require a file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// MIME types accepted for online submissions.
var allowedSubmissionMIMEs = []string{
	"application/pdf",
	"application/zip",
	"image/png",
	"image/jpeg",
	"text/plain",
}

// SubmissionService exposes submission use cases.
type SubmissionService interface {
	Submit(ctx context.Context, assignmentID, studentID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	ListMine(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
	Verify(ctx context.Context, id uint, facultyID uint, payload dto.SubmissionVerifyRequest) (dto.SubmissionResponse, error)
	BulkVerify(ctx context.Context, facultyID uint, payload dto.SubmissionBulkVerifyRequest) (dto.BulkVerifyResponse, error)
	Stats(ctx context.Context, assignmentID uint) (dto.AssignmentStatsResponse, error)
}

type submissionService struct {
	submissions   repository.SubmissionRepository
	assignments   repository.AssignmentRepository
	students      repository.StudentRepository
	validator     *validator.Validate
	uploader      FileUploader
	notifications NotificationService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, students repository.StudentRepository, validate *validator.Validate, uploader FileUploader, notifications NotificationService, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions:   submissions,
		assignments:   assignments,
		students:      students,
		validator:     validate,
		uploader:      uploader,
		notifications: notifications,
		logger:        logger.With().Str("component", "submission_service").Logger(),
		now:           time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, assignmentID, studentID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !assignment.IsActive {
		return dto.SubmissionResponse{}, ErrAssignmentInactive
	}

	if _, err := s.submissions.FindByAssignmentAndStudent(ctx, assignmentID, studentID); err == nil {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submittedAt := s.now()
	curve, err := reward.ParseCurve(assignment.RewardCurve)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	bonus := reward.ComputeBonus(assignment.CreatedAt, assignment.Deadline, submittedAt, assignment.MaxBonusMarks, curve)
	observability.BonusComputed().WithLabelValues(string(curve)).Inc()

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		SubmittedAt:  submittedAt,
		AIBonusMarks: bonus,
	}

	if assignment.SubmissionMode == models.SubmissionModeOnline {
		if file == nil {
			return dto.SubmissionResponse{}, ErrFileRequired
		}
		url, err := s.uploadSubmission(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FileURL = url
	} else if file != nil {
		url, err := s.uploadSubmission(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FileURL = url
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignmentID).
		Float64("bonus", bonus).
		Str("curve", assignment.RewardCurve).
		Msg("submission recorded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListMine(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Verify(ctx context.Context, id uint, facultyID uint, payload dto.SubmissionVerifyRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.IsVerified {
		return dto.SubmissionResponse{}, ErrAlreadyVerified
	}

	// A rejected submission stays unverified so faculty can revisit it; only
	// approval closes the review.
	now := s.now()
	submission.IsVerified = payload.Approve
	submission.FacultyNotes = payload.Notes
	submission.VerifiedBy = &facultyID
	submission.VerifiedAt = &now

	var award float64
	switch {
	case payload.ManualBonus != nil:
		award = *payload.ManualBonus
	case payload.Approve:
		award = submission.AIBonusMarks
	}
	submission.FinalBonus = &award

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if payload.Approve && award > 0 {
		if err := s.students.AddInternalMarks(ctx, submission.StudentID, award); err != nil {
			return dto.SubmissionResponse{}, fmt.Errorf("credit internal marks: %w", err)
		}

		s.notify(ctx, dto.NotificationCreateRequest{
			UserID:  studentUserID(submission.StudentID),
			Type:    models.NotificationBonusAwarded,
			Title:   "Bonus marks awarded",
			Message: fmt.Sprintf("You earned %.2f bonus marks for an early submission.", award),
			Payload: map[string]string{"submission_id": fmt.Sprint(submission.ID)},
		})
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("faculty_id", facultyID).
		Bool("approved", payload.Approve).
		Float64("awarded", award).
		Msg("submission verified")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) BulkVerify(ctx context.Context, facultyID uint, payload dto.SubmissionBulkVerifyRequest) (dto.BulkVerifyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkVerifyResponse{}, err
	}

	result := dto.BulkVerifyResponse{Requested: len(payload.SubmissionIDs)}
	for _, id := range payload.SubmissionIDs {
		if _, err := s.Verify(ctx, id, facultyID, dto.SubmissionVerifyRequest{Approve: true}); err != nil {
			// Already verified or missing rows are skipped, not fatal.
			if errors.Is(err, ErrAlreadyVerified) || errors.Is(err, ErrSubmissionNotFound) {
				continue
			}
			return result, err
		}
		result.Verified++
	}

	return result, nil
}

func (s *submissionService) Stats(ctx context.Context, assignmentID uint) (dto.AssignmentStatsResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentStatsResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentStatsResponse{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentStatsResponse{}, err
	}

	stats := dto.AssignmentStatsResponse{
		AssignmentID:     assignmentID,
		TotalSubmissions: len(submissions),
	}

	var bonusSum float64
	for _, submission := range submissions {
		if submission.IsVerified {
			stats.VerifiedSubmissions++
			bonusSum += submission.AwardedBonus()
			stats.TotalBonusAwarded += submission.AwardedBonus()
		} else {
			stats.PendingSubmissions++
		}

		if submission.SubmittedAt.After(assignment.Deadline) {
			stats.LateSubmissions++
		} else {
			stats.EarlySubmissions++
		}
	}

	if stats.VerifiedSubmissions > 0 {
		stats.AverageBonus = math.Round(bonusSum/float64(stats.VerifiedSubmissions)*100) / 100
	}

	return stats, nil
}

func (s *submissionService) notify(ctx context.Context, payload dto.NotificationCreateRequest) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Publish(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("user_id", payload.UserID).Msg("failed to publish notification")
	}
}

// uploadSubmission sniffs the real content type before uploading; the client
// supplied Content-Type header is not trusted.
func (s *submissionService) uploadSubmission(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := mimetype.Detect(data)
	allowed := false
	for _, mime := range allowedSubmissionMIMEs {
		if detected.Is(mime) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, detected.String())
	}

	url, err := s.uploader.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return url, nil
}

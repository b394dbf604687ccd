package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/analysis"
	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/observability"
	"github.com/noah-isme/grievance-go-api/internal/repository"
	"github.com/noah-isme/grievance-go-api/pkg/ai"
)

// Complaint service errors surfaced to handlers.
var (
	ErrComplaintNotFound       = errors.New("complaint not found")
	ErrComplaintNotOwned       = errors.New("complaint belongs to another student")
	ErrComplaintAlreadyClosed  = errors.New("complaint has already been reviewed")
	ErrComplaintEmptyAfterSani = errors.New("complaint text empty after sanitization")
)

// ComplaintService exposes grievance use cases.
type ComplaintService interface {
	Submit(ctx context.Context, studentID uint, payload dto.ComplaintCreateRequest) (dto.ComplaintResponse, error)
	Get(ctx context.Context, id uint, studentID uint, isStaff bool) (dto.ComplaintResponse, error)
	ListMine(ctx context.Context, studentID uint) ([]dto.ComplaintResponse, error)
	PendingQueue(ctx context.Context) ([]dto.ComplaintResponse, error)
	Review(ctx context.Context, id uint, facultyID uint, payload dto.ComplaintReviewRequest) (dto.ComplaintResponse, error)
}

type complaintService struct {
	repo          repository.ComplaintRepository
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	notifications NotificationService
	triager       ai.Triager
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewComplaintService builds a complaint service. The triager is optional;
// when present it supplies an advisory second opinion that is logged but
// never overrides the stored classification.
func NewComplaintService(repo repository.ComplaintRepository, validate *validator.Validate, notifications NotificationService, triager ai.Triager, logger zerolog.Logger) ComplaintService {
	return &complaintService{
		repo:          repo,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		notifications: notifications,
		triager:       triager,
		logger:        logger.With().Str("component", "complaint_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/grievance-go-api/internal/service/complaint"),
		now:           time.Now,
	}
}

func (s *complaintService) Submit(ctx context.Context, studentID uint, payload dto.ComplaintCreateRequest) (dto.ComplaintResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ComplaintResponse{}, err
	}

	cleanText := s.sanitizer.Sanitize(payload.ComplaintText)
	if cleanText == "" {
		return dto.ComplaintResponse{}, ErrComplaintEmptyAfterSani
	}

	spanCtx, span := s.tracer.Start(ctx, "complaints.submit", trace.WithAttributes(
		attribute.String("complaint.subject", payload.Subject),
		attribute.String("complaint.exam", payload.Exam),
	))
	defer span.End()

	classification := analysis.Classify(cleanText)
	observability.ComplaintsClassified().WithLabelValues(classification.IssueType).Inc()
	observability.ClassificationConfidence().Observe(classification.ConfidenceScore)

	complaint := models.Complaint{
		StudentID:           studentID,
		Subject:             payload.Subject,
		Exam:                payload.Exam,
		ComplaintText:       cleanText,
		ExtractedQuestion:   classification.QuestionNumber,
		IssueType:           classification.IssueType,
		AISummary:           classification.Summary,
		DetailedExplanation: classification.DetailedExplanation,
		ConfidenceScore:     classification.ConfidenceScore,
		Status:              models.ComplaintStatusPending,
	}

	if err := s.repo.Create(spanCtx, &complaint); err != nil {
		span.RecordError(err)
		return dto.ComplaintResponse{}, err
	}

	s.logger.Info().
		Uint("complaint_id", complaint.ID).
		Str("issue_type", complaint.IssueType).
		Float64("confidence", complaint.ConfidenceScore).
		Msg("complaint submitted")

	s.notify(spanCtx, dto.NotificationCreateRequest{
		UserID:  studentUserID(studentID),
		Type:    models.NotificationGrievanceUpdate,
		Title:   "Complaint received",
		Message: fmt.Sprintf("Your complaint about %s (%s) was filed and is awaiting review.", payload.Subject, payload.Exam),
		Payload: map[string]string{"complaint_id": fmt.Sprint(complaint.ID)},
	})

	if s.triager != nil {
		go s.secondOpinion(complaint)
	}

	return dto.NewComplaintResponse(complaint), nil
}

func (s *complaintService) Get(ctx context.Context, id uint, studentID uint, isStaff bool) (dto.ComplaintResponse, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ComplaintResponse{}, ErrComplaintNotFound
		}
		return dto.ComplaintResponse{}, err
	}

	if !isStaff && complaint.StudentID != studentID {
		return dto.ComplaintResponse{}, ErrComplaintNotOwned
	}

	return dto.NewComplaintResponse(complaint), nil
}

func (s *complaintService) ListMine(ctx context.Context, studentID uint) ([]dto.ComplaintResponse, error) {
	complaints, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewComplaintResponseSlice(complaints), nil
}

func (s *complaintService) PendingQueue(ctx context.Context) ([]dto.ComplaintResponse, error) {
	complaints, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewComplaintResponseSlice(complaints), nil
}

func (s *complaintService) Review(ctx context.Context, id uint, facultyID uint, payload dto.ComplaintReviewRequest) (dto.ComplaintResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ComplaintResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "complaints.review", trace.WithAttributes(
		attribute.Bool("complaint.resolve", payload.Resolve),
	))
	defer span.End()

	complaint, err := s.repo.GetByID(spanCtx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ComplaintResponse{}, ErrComplaintNotFound
		}
		span.RecordError(err)
		return dto.ComplaintResponse{}, err
	}

	if !complaint.IsPending() {
		return dto.ComplaintResponse{}, ErrComplaintAlreadyClosed
	}

	now := s.now()
	complaint.Status = models.ComplaintStatusRejected
	if payload.Resolve {
		complaint.Status = models.ComplaintStatusResolved
	}
	complaint.FacultyRemark = s.sanitizer.Sanitize(payload.Remark)
	complaint.ReviewedBy = &facultyID
	complaint.ReviewedAt = &now

	if err := s.repo.Update(spanCtx, &complaint); err != nil {
		span.RecordError(err)
		return dto.ComplaintResponse{}, err
	}

	s.logger.Info().
		Uint("complaint_id", complaint.ID).
		Uint("faculty_id", facultyID).
		Str("status", complaint.Status).
		Msg("complaint reviewed")

	s.notify(spanCtx, dto.NotificationCreateRequest{
		UserID:  studentUserID(complaint.StudentID),
		Type:    models.NotificationGrievanceUpdate,
		Title:   "Complaint " + complaint.Status,
		Message: fmt.Sprintf("Your complaint about %s (%s) was marked %s.", complaint.Subject, complaint.Exam, complaint.Status),
		Payload: map[string]string{"complaint_id": fmt.Sprint(complaint.ID)},
	})

	return dto.NewComplaintResponse(complaint), nil
}

func (s *complaintService) notify(ctx context.Context, payload dto.NotificationCreateRequest) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Publish(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("user_id", payload.UserID).Msg("failed to publish notification")
	}
}

// secondOpinion consults the advisory triager off the request path. The
// opinion is only logged; the stored classification stays deterministic.
func (s *complaintService) secondOpinion(complaint models.Complaint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := s.triager.Triage(ctx, ai.TriageInput{
		Subject:           complaint.Subject,
		Exam:              complaint.Exam,
		ComplaintText:     complaint.ComplaintText,
		IssueType:         complaint.IssueType,
		ExtractedQuestion: complaint.ExtractedQuestion,
	})
	if err != nil {
		observability.TriageRequests().WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Uint("complaint_id", complaint.ID).Msg("advisory triage failed")
		return
	}

	outcome := "disagrees"
	if result.Agrees {
		outcome = "agrees"
	}
	observability.TriageRequests().WithLabelValues(outcome).Inc()

	s.logger.Info().
		Uint("complaint_id", complaint.ID).
		Str("triage_issue_type", result.IssueType).
		Str("triage_priority", result.Priority).
		Bool("triage_agrees", result.Agrees).
		Msg("advisory triage opinion")
}

func studentUserID(id uint) string {
	return fmt.Sprintf("student:%d", id)
}

func facultyUserID(id uint) string {
	return fmt.Sprintf("faculty:%d", id)
}

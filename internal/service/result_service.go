package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/repository"
)

// Result service errors surfaced to handlers.
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrNoMarksForExam     = errors.New("no marks recorded for exam")
	ErrResultsNotDeclared = errors.New("results not declared yet")
	ErrResultsAlreadySet  = errors.New("results already in requested state")
)

// ResultService exposes mark entry and result publication use cases.
type ResultService interface {
	AddMark(ctx context.Context, facultyID uint, payload dto.MarkCreateRequest) (dto.MarkResponse, error)
	StudentResults(ctx context.Context, studentID uint, exam string) (dto.StudentResultsResponse, error)
	Status(ctx context.Context, exam string) (dto.ResultStatusResponse, error)
	Publish(ctx context.Context, exam string, adminID uint) (dto.ResultStatusResponse, error)
	Unpublish(ctx context.Context, exam string, adminID uint) (dto.ResultStatusResponse, error)
}

type resultService struct {
	marks         repository.MarkRepository
	students      repository.StudentRepository
	validator     *validator.Validate
	notifications NotificationService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewResultService builds a new result service.
func NewResultService(marks repository.MarkRepository, students repository.StudentRepository, validate *validator.Validate, notifications NotificationService, logger zerolog.Logger) ResultService {
	return &resultService{
		marks:         marks,
		students:      students,
		validator:     validate,
		notifications: notifications,
		logger:        logger.With().Str("component", "result_service").Logger(),
		now:           time.Now,
	}
}

func (s *resultService) AddMark(ctx context.Context, facultyID uint, payload dto.MarkCreateRequest) (dto.MarkResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MarkResponse{}, ErrStudentNotFound
		}
		return dto.MarkResponse{}, err
	}

	mark := models.Mark{
		StudentID: payload.StudentID,
		Subject:   payload.Subject,
		Exam:      payload.Exam,
		Marks:     payload.Marks,
		FacultyID: facultyID,
	}

	if err := s.marks.Create(ctx, &mark); err != nil {
		return dto.MarkResponse{}, err
	}

	s.logger.Info().
		Uint("mark_id", mark.ID).
		Uint("student_id", mark.StudentID).
		Str("exam", mark.Exam).
		Msg("mark recorded")

	s.notify(ctx, dto.NotificationCreateRequest{
		UserID:  studentUserID(payload.StudentID),
		Type:    models.NotificationMarksUploaded,
		Title:   "Marks uploaded",
		Message: fmt.Sprintf("Marks for %s (%s) have been uploaded. They become visible once results are declared.", payload.Subject, payload.Exam),
		Payload: map[string]string{"exam": payload.Exam, "subject": payload.Subject},
	})

	return dto.NewMarkResponse(mark), nil
}

func (s *resultService) StudentResults(ctx context.Context, studentID uint, exam string) (dto.StudentResultsResponse, error) {
	status, err := s.marks.GetResultStatus(ctx, exam)
	if err != nil {
		return dto.StudentResultsResponse{}, err
	}

	if !status.IsDeclared {
		return dto.StudentResultsResponse{}, ErrResultsNotDeclared
	}

	marks, err := s.marks.ListPublishedByStudentAndExam(ctx, studentID, exam)
	if err != nil {
		return dto.StudentResultsResponse{}, err
	}

	response := dto.StudentResultsResponse{
		Exam:       exam,
		IsDeclared: true,
		Marks:      make([]dto.MarkResponse, 0, len(marks)),
	}

	for _, mark := range marks {
		response.Marks = append(response.Marks, dto.NewMarkResponse(mark))
		response.Total += mark.Marks
	}

	if len(marks) > 0 {
		response.Average = float64(response.Total) / float64(len(marks))
	}

	return response, nil
}

func (s *resultService) Status(ctx context.Context, exam string) (dto.ResultStatusResponse, error) {
	status, err := s.marks.GetResultStatus(ctx, exam)
	if err != nil {
		return dto.ResultStatusResponse{}, err
	}

	return dto.NewResultStatusResponse(status), nil
}

func (s *resultService) Publish(ctx context.Context, exam string, adminID uint) (dto.ResultStatusResponse, error) {
	status, err := s.marks.GetResultStatus(ctx, exam)
	if err != nil {
		return dto.ResultStatusResponse{}, err
	}
	if status.IsDeclared {
		return dto.ResultStatusResponse{}, ErrResultsAlreadySet
	}

	affected, err := s.marks.SetPublishedByExam(ctx, exam, true)
	if err != nil {
		return dto.ResultStatusResponse{}, err
	}
	if affected == 0 {
		return dto.ResultStatusResponse{}, ErrNoMarksForExam
	}

	now := s.now()
	status.Exam = exam
	status.IsDeclared = true
	status.DeclaredBy = &adminID
	status.DeclaredAt = &now

	if err := s.marks.UpsertResultStatus(ctx, &status); err != nil {
		return dto.ResultStatusResponse{}, err
	}

	s.logger.Info().
		Str("exam", exam).
		Int64("marks_published", affected).
		Uint("admin_id", adminID).
		Msg("results declared")

	studentIDs, err := s.marks.StudentIDsByExam(ctx, exam)
	if err != nil {
		s.logger.Warn().Err(err).Str("exam", exam).Msg("failed to list students for result notification")
	} else {
		for _, studentID := range studentIDs {
			s.notify(ctx, dto.NotificationCreateRequest{
				UserID:  studentUserID(studentID),
				Type:    models.NotificationResultPublished,
				Title:   "Results declared",
				Message: fmt.Sprintf("Results for %s are now available.", exam),
				Payload: map[string]string{"exam": exam},
			})
		}
	}

	return dto.NewResultStatusResponse(status), nil
}

func (s *resultService) Unpublish(ctx context.Context, exam string, adminID uint) (dto.ResultStatusResponse, error) {
	status, err := s.marks.GetResultStatus(ctx, exam)
	if err != nil {
		return dto.ResultStatusResponse{}, err
	}
	if !status.IsDeclared {
		return dto.ResultStatusResponse{}, ErrResultsAlreadySet
	}

	if _, err := s.marks.SetPublishedByExam(ctx, exam, false); err != nil {
		return dto.ResultStatusResponse{}, err
	}

	status.Exam = exam
	status.IsDeclared = false
	status.DeclaredBy = nil
	status.DeclaredAt = nil

	if err := s.marks.UpsertResultStatus(ctx, &status); err != nil {
		return dto.ResultStatusResponse{}, err
	}

	s.logger.Info().Str("exam", exam).Uint("admin_id", adminID).Msg("results withdrawn")

	return dto.NewResultStatusResponse(status), nil
}

func (s *resultService) notify(ctx context.Context, payload dto.NotificationCreateRequest) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Publish(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("user_id", payload.UserID).Msg("failed to publish notification")
	}
}

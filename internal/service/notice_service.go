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
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/repository"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// Notice service errors surfaced to handlers.
var (
	ErrNoticeNotFound      = errors.New("notice not found")
	ErrNoticeNoFile        = errors.New("notice has no attachment")
	ErrInvalidPublishTime  = errors.New("invalid publish timestamp")
	ErrNoticeTargetScope   = errors.New("notice target requires a department or semester")
	ErrNoticeTitleRequired = errors.New("notice title empty after sanitization")
)

// Attachments on the notice board are documents, not arbitrary uploads.
var allowedNoticeMIMEs = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
}

// NoticeService exposes notice-board use cases: admins post targeted
// notices and timetables, students read and download them.
type NoticeService interface {
	Create(ctx context.Context, adminID uint, payload dto.NoticeCreateRequest, file *multipart.FileHeader) (dto.NoticeResponse, error)
	ListForStudent(ctx context.Context, studentID uint, noticeType string, limit int) ([]dto.NoticeResponse, error)
	ListAll(ctx context.Context, noticeType string, limit int) ([]dto.NoticeResponse, error)
	Get(ctx context.Context, id uint) (dto.NoticeResponse, error)
	MarkRead(ctx context.Context, id, studentID uint) error
	UnreadCount(ctx context.Context, studentID uint, noticeType string) (int, error)
	Download(ctx context.Context, id uint) (string, error)
	Update(ctx context.Context, id uint, payload dto.NoticeUpdateRequest) (dto.NoticeResponse, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (dto.NoticeStatsResponse, error)
}

type noticeService struct {
	repo          repository.NoticeRepository
	students      repository.StudentRepository
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	uploader      FileUploader
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewNoticeService builds a notice service.
func NewNoticeService(repo repository.NoticeRepository, students repository.StudentRepository, validate *validator.Validate, uploader FileUploader, notifications NotificationService, logger zerolog.Logger) NoticeService {
	return &noticeService{
		repo:          repo,
		students:      students,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		uploader:      uploader,
		notifications: notifications,
		logger:        logger.With().Str("component", "notice_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/grievance-go-api/internal/service/notice"),
		now:           time.Now,
	}
}

func (s *noticeService) Create(ctx context.Context, adminID uint, payload dto.NoticeCreateRequest, file *multipart.FileHeader) (dto.NoticeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NoticeResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "notices.create", trace.WithAttributes(
		attribute.String("notice.type", payload.NoticeType),
		attribute.String("notice.target", payload.TargetRole),
	))
	defer span.End()

	title := s.sanitizer.Sanitize(payload.Title)
	if title == "" {
		return dto.NoticeResponse{}, ErrNoticeTitleRequired
	}

	targetRole := payload.TargetRole
	if targetRole == "" {
		targetRole = models.NoticeTargetAll
	}
	if err := validateTargetScope(targetRole, payload.Department, payload.Semester); err != nil {
		return dto.NoticeResponse{}, err
	}

	notice := models.Notice{
		Title:       title,
		Description: s.sanitizer.Sanitize(payload.Description),
		NoticeType:  payload.NoticeType,
		TargetRole:  targetRole,
		Department:  payload.Department,
		Semester:    payload.Semester,
		UploadedBy:  adminID,
		IsPublished: true,
	}

	if payload.PublishAt != "" {
		publishAt, err := utils.ParseTimestamp(payload.PublishAt)
		if err != nil {
			return dto.NoticeResponse{}, fmt.Errorf("%w: %v", ErrInvalidPublishTime, err)
		}
		notice.PublishAt = &publishAt
	}

	if file != nil {
		url, err := s.uploadNotice(ctx, file)
		if err != nil {
			return dto.NoticeResponse{}, err
		}
		notice.FileURL = url
		notice.FileName = file.Filename
	}

	// A new timetable supersedes the one it replaces for the same scope.
	if notice.NoticeType == models.NoticeTypeTimetable {
		if err := s.repo.ArchiveTimetables(ctx, notice.Department, notice.Semester); err != nil {
			return dto.NoticeResponse{}, err
		}
	}

	if err := s.repo.Create(ctx, &notice); err != nil {
		return dto.NoticeResponse{}, err
	}

	s.notifyAudience(ctx, notice)

	s.logger.Info().
		Uint("notice_id", notice.ID).
		Str("type", notice.NoticeType).
		Str("target", notice.TargetRole).
		Msg("notice posted")

	return dto.NewNoticeResponse(notice), nil
}

func (s *noticeService) ListForStudent(ctx context.Context, studentID uint, noticeType string, limit int) ([]dto.NoticeResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	notices, err := s.repo.ListVisible(ctx, student.Department, student.Semester, noticeType, limit, s.now())
	if err != nil {
		return nil, err
	}

	read, err := s.readSet(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewNoticeResponseSlice(notices)
	for i := range responses {
		responses[i].IsRead = read[responses[i].ID]
	}

	return responses, nil
}

func (s *noticeService) ListAll(ctx context.Context, noticeType string, limit int) ([]dto.NoticeResponse, error) {
	if limit <= 0 {
		limit = 100
	}

	notices, err := s.repo.ListAll(ctx, noticeType, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewNoticeResponseSlice(notices), nil
}

func (s *noticeService) Get(ctx context.Context, id uint) (dto.NoticeResponse, error) {
	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoticeResponse{}, ErrNoticeNotFound
		}
		return dto.NoticeResponse{}, err
	}

	return dto.NewNoticeResponse(notice), nil
}

func (s *noticeService) MarkRead(ctx context.Context, id, studentID uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoticeNotFound
		}
		return err
	}

	return s.repo.MarkRead(ctx, id, studentID, s.now())
}

func (s *noticeService) UnreadCount(ctx context.Context, studentID uint, noticeType string) (int, error) {
	notices, err := s.ListForStudent(ctx, studentID, noticeType, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, notice := range notices {
		if !notice.IsRead {
			count++
		}
	}

	return count, nil
}

// Download hands back the attachment URL and bumps the download counter.
func (s *noticeService) Download(ctx context.Context, id uint) (string, error) {
	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoticeNotFound
		}
		return "", err
	}

	if notice.FileURL == "" {
		return "", ErrNoticeNoFile
	}

	if err := s.repo.IncrementDownloads(ctx, id); err != nil {
		return "", err
	}

	return notice.FileURL, nil
}

func (s *noticeService) Update(ctx context.Context, id uint, payload dto.NoticeUpdateRequest) (dto.NoticeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NoticeResponse{}, err
	}

	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoticeResponse{}, ErrNoticeNotFound
		}
		return dto.NoticeResponse{}, err
	}

	if payload.Title != nil {
		title := s.sanitizer.Sanitize(*payload.Title)
		if title == "" {
			return dto.NoticeResponse{}, ErrNoticeTitleRequired
		}
		notice.Title = title
	}
	if payload.Description != nil {
		notice.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.TargetRole != nil {
		notice.TargetRole = *payload.TargetRole
	}
	if payload.Department != nil {
		notice.Department = *payload.Department
	}
	if payload.Semester != nil {
		notice.Semester = *payload.Semester
	}

	if err := validateTargetScope(notice.TargetRole, notice.Department, notice.Semester); err != nil {
		return dto.NoticeResponse{}, err
	}

	if err := s.repo.Update(ctx, &notice); err != nil {
		return dto.NoticeResponse{}, err
	}

	return dto.NewNoticeResponse(notice), nil
}

func (s *noticeService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoticeNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *noticeService) Stats(ctx context.Context) (dto.NoticeStatsResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return dto.NoticeStatsResponse{}, err
	}

	timetables, err := s.repo.CountByType(ctx, models.NoticeTypeTimetable)
	if err != nil {
		return dto.NoticeStatsResponse{}, err
	}

	downloads, err := s.repo.SumDownloads(ctx)
	if err != nil {
		return dto.NoticeStatsResponse{}, err
	}

	reads, err := s.repo.CountReads(ctx)
	if err != nil {
		return dto.NoticeStatsResponse{}, err
	}

	studentCount, err := s.students.Count(ctx)
	if err != nil {
		return dto.NoticeStatsResponse{}, err
	}

	readPercentage := 0.0
	if total > 0 && studentCount > 0 {
		expected := float64(total * studentCount)
		readPercentage = math.Round(float64(reads)/expected*100*100) / 100
	}

	recent, err := s.repo.ListRecent(ctx, 5)
	if err != nil {
		return dto.NoticeStatsResponse{}, err
	}

	return dto.NoticeStatsResponse{
		TotalNotices:    total,
		TotalTimetables: timetables,
		TotalDownloads:  downloads,
		ReadPercentage:  readPercentage,
		RecentUploads:   dto.NewNoticeResponseSlice(recent),
	}, nil
}

// notifyAudience pushes a notification to every student the notice targets.
// Failures are logged; the notice itself is already persisted.
func (s *noticeService) notifyAudience(ctx context.Context, notice models.Notice) {
	if s.notifications == nil {
		return
	}

	ids, err := s.students.IDsByTarget(ctx, notice.TargetRole, notice.Department, notice.Semester)
	if err != nil {
		s.logger.Warn().Err(err).Uint("notice_id", notice.ID).Msg("failed to resolve notice audience")
		return
	}

	for _, id := range ids {
		_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
			UserID:  studentUserID(id),
			Type:    models.NotificationNoticePosted,
			Title:   "New notice posted",
			Message: notice.Title,
			Payload: map[string]string{"notice_id": fmt.Sprint(notice.ID), "notice_type": notice.NoticeType},
		})
		if err != nil {
			s.logger.Warn().Err(err).Uint("notice_id", notice.ID).Msg("failed to publish notice notification")
		}
	}
}

func (s *noticeService) uploadNotice(ctx context.Context, file *multipart.FileHeader) (string, error) {
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
	for _, mime := range allowedNoticeMIMEs {
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

func (s *noticeService) readSet(ctx context.Context, studentID uint) (map[uint]bool, error) {
	ids, err := s.repo.ReadNoticeIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}

	read := make(map[uint]bool, len(ids))
	for _, id := range ids {
		read[id] = true
	}

	return read, nil
}

func validateTargetScope(targetRole, department string, semester int) error {
	switch targetRole {
	case models.NoticeTargetDepartment:
		if department == "" {
			return ErrNoticeTargetScope
		}
	case models.NoticeTargetSemester:
		if semester <= 0 {
			return ErrNoticeTargetScope
		}
	case models.NoticeTargetClass:
		if department == "" || semester <= 0 {
			return ErrNoticeTargetScope
		}
	}

	return nil
}

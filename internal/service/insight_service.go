package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/repository"
)

// InsightService derives rule-based dashboard insights for each role. Results
// are cached in redis for a short TTL to keep dashboards cheap.
type InsightService interface {
	StudentInsights(ctx context.Context, studentID uint) (dto.StudentInsightsResponse, error)
	FacultyInsights(ctx context.Context, subject string) (dto.FacultyInsightsResponse, error)
	AdminInsights(ctx context.Context) (dto.AdminInsightsResponse, error)
}

type insightService struct {
	complaints    repository.ComplaintRepository
	assignments   repository.AssignmentRepository
	submissions   repository.SubmissionRepository
	marks         repository.MarkRepository
	students      repository.StudentRepository
	notifications repository.NotificationRepository
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewInsightService builds an insight service. The cache client is optional;
// without it every call recomputes.
func NewInsightService(complaints repository.ComplaintRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, marks repository.MarkRepository, students repository.StudentRepository, notifications repository.NotificationRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) InsightService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	return &insightService{
		complaints:    complaints,
		assignments:   assignments,
		submissions:   submissions,
		marks:         marks,
		students:      students,
		notifications: notifications,
		cache:         cache,
		cacheTTL:      ttl,
		logger:        logger.With().Str("component", "insight_service").Logger(),
		now:           time.Now,
	}
}

func (s *insightService) StudentInsights(ctx context.Context, studentID uint) (dto.StudentInsightsResponse, error) {
	cacheKey := fmt.Sprintf("insights:student:%d", studentID)

	var cached dto.StudentInsightsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentInsightsResponse{}, ErrStudentNotFound
		}
		return dto.StudentInsightsResponse{}, err
	}

	active, err := s.assignments.ListActive(ctx, "")
	if err != nil {
		return dto.StudentInsightsResponse{}, err
	}

	submitted, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentInsightsResponse{}, err
	}

	submittedByAssignment := make(map[uint]struct{}, len(submitted))
	for _, submission := range submitted {
		submittedByAssignment[submission.AssignmentID] = struct{}{}
	}

	pending := 0
	for _, assignment := range active {
		if _, ok := submittedByAssignment[assignment.ID]; !ok {
			pending++
		}
	}

	average, err := s.marks.AverageForStudent(ctx, studentID)
	if err != nil {
		return dto.StudentInsightsResponse{}, err
	}

	unread, err := s.notifications.CountUnread(ctx, studentUserID(studentID))
	if err != nil {
		return dto.StudentInsightsResponse{}, err
	}

	response := dto.StudentInsightsResponse{
		PendingAssignments: pending,
		BonusEarned:        student.InternalMarks,
		AverageMarks:       average,
		UnreadCount:        unread,
	}

	response.Insights = buildStudentInsights(response, active, s.now())
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *insightService) FacultyInsights(ctx context.Context, subject string) (dto.FacultyInsightsResponse, error) {
	cacheKey := "insights:faculty"
	if subject != "" {
		cacheKey = fmt.Sprintf("insights:faculty:%s", subject)
	}

	var cached dto.FacultyInsightsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	pending, err := s.complaints.CountByStatus(ctx, models.ComplaintStatusPending)
	if err != nil {
		return dto.FacultyInsightsResponse{}, err
	}

	oldestDays := 0
	if since, ok, err := s.complaints.OldestPendingSince(ctx); err != nil {
		return dto.FacultyInsightsResponse{}, err
	} else if ok {
		oldestDays = int(s.now().Sub(since).Hours() / 24)
	}

	unverified, err := s.submissions.CountUnverified(ctx)
	if err != nil {
		return dto.FacultyInsightsResponse{}, err
	}

	classAverage := 0.0
	if subject != "" {
		average, err := s.marks.AverageForSubject(ctx, subject)
		if err != nil {
			return dto.FacultyInsightsResponse{}, err
		}
		classAverage = math.Round(average*10) / 10
	}

	response := dto.FacultyInsightsResponse{
		PendingComplaints:     int(pending),
		OldestPendingDays:     oldestDays,
		ClassAverage:          classAverage,
		UnverifiedSubmissions: int(unverified),
	}

	response.Insights = buildFacultyInsights(response)
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *insightService) AdminInsights(ctx context.Context) (dto.AdminInsightsResponse, error) {
	const cacheKey = "insights:admin"

	var cached dto.AdminInsightsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return dto.AdminInsightsResponse{}, err
	}

	totalComplaints, err := s.complaints.Count(ctx)
	if err != nil {
		return dto.AdminInsightsResponse{}, err
	}

	resolved, err := s.complaints.CountByStatus(ctx, models.ComplaintStatusResolved)
	if err != nil {
		return dto.AdminInsightsResponse{}, err
	}

	activeAssignments, err := s.assignments.CountActive(ctx)
	if err != nil {
		return dto.AdminInsightsResponse{}, err
	}

	totalSubmissions, err := s.submissions.Count(ctx)
	if err != nil {
		return dto.AdminInsightsResponse{}, err
	}

	response := dto.AdminInsightsResponse{
		TotalStudents:      totalStudents,
		TotalComplaints:    totalComplaints,
		ResolvedComplaints: resolved,
		ActiveAssignments:  activeAssignments,
		TotalSubmissions:   totalSubmissions,
	}

	if totalComplaints > 0 {
		response.ResolutionRate = float64(resolved) / float64(totalComplaints) * 100
	}

	response.Insights = buildAdminInsights(response)
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *insightService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read insight cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("corrupt insight cache entry")
		return false
	}

	return true
}

func (s *insightService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to marshal insight cache entry")
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store insight cache")
	}
}

func buildStudentInsights(response dto.StudentInsightsResponse, active []models.Assignment, now time.Time) []dto.Insight {
	insights := make([]dto.Insight, 0, 3)

	if response.PendingAssignments > 0 {
		priority := dto.InsightPriorityMedium
		for _, assignment := range active {
			if assignment.Deadline.Sub(now) < 48*time.Hour {
				priority = dto.InsightPriorityHigh
				break
			}
		}
		insights = append(insights, dto.Insight{
			Category: "assignments",
			Message:  fmt.Sprintf("%d assignment(s) still open. Early submissions earn bonus marks.", response.PendingAssignments),
			Priority: priority,
		})
	}

	if response.AverageMarks > 0 && response.AverageMarks < 50 {
		insights = append(insights, dto.Insight{
			Category: "performance",
			Message:  "Your published average is below 50. Consider discussing it with your faculty.",
			Priority: dto.InsightPriorityHigh,
		})
	}

	if response.BonusEarned > 0 {
		insights = append(insights, dto.Insight{
			Category: "bonus",
			Message:  fmt.Sprintf("You have earned %.2f bonus marks so far.", response.BonusEarned),
			Priority: dto.InsightPriorityLow,
		})
	}

	return insights
}

func buildFacultyInsights(response dto.FacultyInsightsResponse) []dto.Insight {
	insights := make([]dto.Insight, 0, 3)

	if response.PendingComplaints > 0 {
		priority := dto.InsightPriorityMedium
		if response.OldestPendingDays >= 3 {
			priority = dto.InsightPriorityHigh
		}
		insights = append(insights, dto.Insight{
			Category: "complaints",
			Message:  fmt.Sprintf("%d complaint(s) await review; the oldest has waited %d day(s).", response.PendingComplaints, response.OldestPendingDays),
			Priority: priority,
		})
	}

	if response.UnverifiedSubmissions > 0 {
		insights = append(insights, dto.Insight{
			Category: "submissions",
			Message:  fmt.Sprintf("%d submission(s) need verification before bonus marks are credited.", response.UnverifiedSubmissions),
			Priority: dto.InsightPriorityMedium,
		})
	}

	switch {
	case response.ClassAverage >= 70:
		insights = append(insights, dto.Insight{
			Category: "performance",
			Message:  fmt.Sprintf("Excellent class performance. Average: %.1f.", response.ClassAverage),
			Priority: dto.InsightPriorityLow,
		})
	case response.ClassAverage >= 50:
		insights = append(insights, dto.Insight{
			Category: "performance",
			Message:  fmt.Sprintf("Class performance is steady. Average: %.1f.", response.ClassAverage),
			Priority: dto.InsightPriorityLow,
		})
	case response.ClassAverage > 0:
		insights = append(insights, dto.Insight{
			Category: "performance",
			Message:  fmt.Sprintf("Class needs attention. Average: %.1f.", response.ClassAverage),
			Priority: dto.InsightPriorityHigh,
		})
	}

	return insights
}

func buildAdminInsights(response dto.AdminInsightsResponse) []dto.Insight {
	insights := make([]dto.Insight, 0, 2)

	if response.TotalComplaints > 0 && response.ResolutionRate < 50 {
		insights = append(insights, dto.Insight{
			Category: "complaints",
			Message:  fmt.Sprintf("Complaint resolution rate is %.1f%%. Review the pending queue.", response.ResolutionRate),
			Priority: dto.InsightPriorityHigh,
		})
	}

	if response.ActiveAssignments == 0 {
		insights = append(insights, dto.Insight{
			Category: "assignments",
			Message:  "No active assignments. Students have no open bonus opportunities.",
			Priority: dto.InsightPriorityLow,
		})
	}

	return insights
}

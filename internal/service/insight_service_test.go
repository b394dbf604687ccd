package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

type memoryNotificationRepo struct {
	notifications map[uint]models.Notification
	nextID        uint
}

func newMemoryNotificationRepo() *memoryNotificationRepo {
	return &memoryNotificationRepo{notifications: make(map[uint]models.Notification), nextID: 1}
}

func (m *memoryNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	notification.ID = m.nextID
	notification.CreatedAt = time.Now()
	m.notifications[m.nextID] = *notification
	m.nextID++
	return nil
}

func (m *memoryNotificationRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]models.Notification, error) {
	var results []models.Notification
	for _, notification := range m.notifications {
		if notification.UserID == userID {
			results = append(results, notification)
		}
	}
	return results, nil
}

func (m *memoryNotificationRepo) GetByIDForUser(_ context.Context, id uint, userID string) (models.Notification, error) {
	notification, ok := m.notifications[id]
	if !ok || notification.UserID != userID {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	return notification, nil
}

func (m *memoryNotificationRepo) MarkRead(_ context.Context, notification *models.Notification) error {
	notification.IsRead = true
	m.notifications[notification.ID] = *notification
	return nil
}

func (m *memoryNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, notification := range m.notifications {
		if notification.UserID == userID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

type insightFixture struct {
	svc           InsightService
	complaints    *memoryComplaintRepo
	assignments   *memoryAssignmentRepo
	submissions   *memorySubmissionRepo
	marks         *memoryMarkRepo
	students      *memoryStudentRepo
	notifications *memoryNotificationRepo
	redis         *miniredis.Miniredis
}

func newInsightFixture(t *testing.T) insightFixture {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	f := insightFixture{
		complaints:    newMemoryComplaintRepo(),
		assignments:   newMemoryAssignmentRepo(),
		submissions:   newMemorySubmissionRepo(),
		marks:         newMemoryMarkRepo(),
		students:      newMemoryStudentRepo(),
		notifications: newMemoryNotificationRepo(),
		redis:         server,
	}

	f.students.students[1] = models.Student{ID: 1, Name: "Asha", Email: "asha@example.com", InternalMarks: 3.5}

	f.svc = NewInsightService(f.complaints, f.assignments, f.submissions, f.marks, f.students, f.notifications, client, time.Minute, zerolog.Nop())
	return f
}

func TestStudentInsightsCountsPendingAssignments(t *testing.T) {
	f := newInsightFixture(t)

	open := models.Assignment{Title: "A", Subject: "Maths", Deadline: time.Now().Add(24 * time.Hour), IsActive: true, CreatedBy: 1, RewardCurve: "fixed"}
	done := models.Assignment{Title: "B", Subject: "Maths", Deadline: time.Now().Add(48 * time.Hour), IsActive: true, CreatedBy: 1, RewardCurve: "fixed"}
	require.NoError(t, f.assignments.Create(context.Background(), &open))
	require.NoError(t, f.assignments.Create(context.Background(), &done))

	submission := models.Submission{AssignmentID: done.ID, StudentID: 1, SubmittedAt: time.Now()}
	require.NoError(t, f.submissions.Create(context.Background(), &submission))

	response, err := f.svc.StudentInsights(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, response.PendingAssignments)
	require.InDelta(t, 3.5, response.BonusEarned, 1e-9)
	require.False(t, response.CacheHit)
	require.NotEmpty(t, response.Insights)
}

func TestStudentInsightsSecondCallHitsCache(t *testing.T) {
	f := newInsightFixture(t)

	first, err := f.svc.StudentInsights(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := f.svc.StudentInsights(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.PendingAssignments, second.PendingAssignments)
}

func TestStudentInsightsCacheExpires(t *testing.T) {
	f := newInsightFixture(t)

	_, err := f.svc.StudentInsights(context.Background(), 1)
	require.NoError(t, err)

	f.redis.FastForward(2 * time.Minute)

	response, err := f.svc.StudentInsights(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, response.CacheHit)
}

func TestFacultyInsightsFlagsStaleComplaints(t *testing.T) {
	f := newInsightFixture(t)

	stale := models.Complaint{
		StudentID:     1,
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "question 2 was not checked",
		Status:        models.ComplaintStatusPending,
		CreatedAt:     time.Now().Add(-5 * 24 * time.Hour),
	}
	require.NoError(t, f.complaints.Create(context.Background(), &stale))

	response, err := f.svc.FacultyInsights(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 1, response.PendingComplaints)
	require.GreaterOrEqual(t, response.OldestPendingDays, 4)

	require.NotEmpty(t, response.Insights)
	require.Equal(t, "high", response.Insights[0].Priority)
}

func TestFacultyInsightsClassAverageThresholds(t *testing.T) {
	f := newInsightFixture(t)

	for i, marks := range []int{30, 40, 50} {
		mark := models.Mark{StudentID: uint(i + 1), Subject: "Maths", Exam: "Midterm", Marks: marks, FacultyID: 9}
		require.NoError(t, f.marks.Create(context.Background(), &mark))
	}

	response, err := f.svc.FacultyInsights(context.Background(), "Maths")
	require.NoError(t, err)
	require.InDelta(t, 40.0, response.ClassAverage, 1e-9)

	var performance []string
	for _, insight := range response.Insights {
		if insight.Category == "performance" {
			performance = append(performance, insight.Priority)
		}
	}
	require.Equal(t, []string{"high"}, performance)

	// A different subject has no marks, so no performance insight appears.
	other, err := f.svc.FacultyInsights(context.Background(), "Physics")
	require.NoError(t, err)
	require.Zero(t, other.ClassAverage)
	for _, insight := range other.Insights {
		require.NotEqual(t, "performance", insight.Category)
	}
}

func TestAdminInsightsResolutionRate(t *testing.T) {
	f := newInsightFixture(t)

	for _, status := range []string{models.ComplaintStatusResolved, models.ComplaintStatusPending, models.ComplaintStatusPending, models.ComplaintStatusPending} {
		complaint := models.Complaint{StudentID: 1, Subject: "Maths", Exam: "Midterm", ComplaintText: "complaint body text", Status: status}
		require.NoError(t, f.complaints.Create(context.Background(), &complaint))
	}

	response, err := f.svc.AdminInsights(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), response.TotalComplaints)
	require.Equal(t, int64(1), response.ResolvedComplaints)
	require.InDelta(t, 25.0, response.ResolutionRate, 1e-9)

	// A poor resolution rate surfaces a high priority insight.
	require.NotEmpty(t, response.Insights)
	require.Equal(t, "complaints", response.Insights[0].Category)
}

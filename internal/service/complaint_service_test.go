package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
)

type memoryComplaintRepo struct {
	complaints map[uint]models.Complaint
	nextID     uint
}

func newMemoryComplaintRepo() *memoryComplaintRepo {
	return &memoryComplaintRepo{complaints: make(map[uint]models.Complaint), nextID: 1}
}

func (m *memoryComplaintRepo) Create(_ context.Context, complaint *models.Complaint) error {
	complaint.ID = m.nextID
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}
	complaint.UpdatedAt = time.Now()
	m.complaints[m.nextID] = *complaint
	m.nextID++
	return nil
}

func (m *memoryComplaintRepo) GetByID(_ context.Context, id uint) (models.Complaint, error) {
	complaint, ok := m.complaints[id]
	if !ok {
		return models.Complaint{}, gorm.ErrRecordNotFound
	}
	return complaint, nil
}

func (m *memoryComplaintRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Complaint, error) {
	var results []models.Complaint
	for _, complaint := range m.complaints {
		if complaint.StudentID == studentID {
			results = append(results, complaint)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	return results, nil
}

func (m *memoryComplaintRepo) ListPending(_ context.Context) ([]models.Complaint, error) {
	var results []models.Complaint
	for _, complaint := range m.complaints {
		if complaint.Status == models.ComplaintStatusPending {
			results = append(results, complaint)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
	return results, nil
}

func (m *memoryComplaintRepo) Update(_ context.Context, complaint *models.Complaint) error {
	if _, ok := m.complaints[complaint.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	complaint.UpdatedAt = time.Now()
	m.complaints[complaint.ID] = *complaint
	return nil
}

func (m *memoryComplaintRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	for _, complaint := range m.complaints {
		if complaint.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memoryComplaintRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.complaints)), nil
}

func (m *memoryComplaintRepo) OldestPendingSince(_ context.Context) (time.Time, bool, error) {
	pending, _ := m.ListPending(context.Background())
	if len(pending) == 0 {
		return time.Time{}, false, nil
	}
	return pending[0].CreatedAt, true, nil
}

type recordingNotifier struct {
	published []dto.NotificationCreateRequest
}

func (r *recordingNotifier) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	r.published = append(r.published, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type}, nil
}

func (r *recordingNotifier) List(context.Context, string, int, int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkRead(context.Context, uint, string) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (r *recordingNotifier) UnreadCount(context.Context, string) (int64, error) { return 0, nil }

func (r *recordingNotifier) Subscribe(string) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	close(ch)
	return ch, func() {}
}

func (r *recordingNotifier) Start(context.Context) {}

func newComplaintServiceForTest(repo *memoryComplaintRepo, notifier *recordingNotifier) ComplaintService {
	return NewComplaintService(repo, validator.New(), notifier, nil, zerolog.Nop())
}

func TestComplaintSubmitStoresClassification(t *testing.T) {
	repo := newMemoryComplaintRepo()
	notifier := &recordingNotifier{}
	svc := newComplaintServiceForTest(repo, notifier)

	response, err := svc.Submit(context.Background(), 7, dto.ComplaintCreateRequest{
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "Q3 was not checked at all, the second page is blank",
	})
	require.NoError(t, err)

	require.Equal(t, "Q3", response.ExtractedQuestion)
	require.Equal(t, "Unchecked Question", response.IssueType)
	require.Equal(t, models.ComplaintStatusPending, response.Status)
	require.Greater(t, response.ConfidenceScore, 0.5)
	require.NotEmpty(t, response.AISummary)
	require.NotEmpty(t, response.DetailedExplanation)

	require.Len(t, notifier.published, 1)
	require.Equal(t, "student:7", notifier.published[0].UserID)
	require.Equal(t, models.NotificationGrievanceUpdate, notifier.published[0].Type)
}

func TestComplaintSubmitStripsMarkup(t *testing.T) {
	repo := newMemoryComplaintRepo()
	svc := newComplaintServiceForTest(repo, &recordingNotifier{})

	response, err := svc.Submit(context.Background(), 1, dto.ComplaintCreateRequest{
		Subject:       "Physics",
		Exam:          "Final",
		ComplaintText: "<script>alert(1)</script>marks were deducted wrongly in question 4",
	})
	require.NoError(t, err)
	require.NotContains(t, response.ComplaintText, "<script>")
	require.Equal(t, "Q4", response.ExtractedQuestion)
}

func TestComplaintSubmitRejectsShortText(t *testing.T) {
	svc := newComplaintServiceForTest(newMemoryComplaintRepo(), &recordingNotifier{})

	_, err := svc.Submit(context.Background(), 1, dto.ComplaintCreateRequest{
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "short",
	})
	require.Error(t, err)
}

func TestComplaintGetEnforcesOwnership(t *testing.T) {
	repo := newMemoryComplaintRepo()
	svc := newComplaintServiceForTest(repo, &recordingNotifier{})

	created, err := svc.Submit(context.Background(), 5, dto.ComplaintCreateRequest{
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "the total on the front page is wrong",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, 6, false)
	require.ErrorIs(t, err, ErrComplaintNotOwned)

	// Staff can read any complaint.
	fetched, err := svc.Get(context.Background(), created.ID, 0, true)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)

	_, err = svc.Get(context.Background(), 999, 5, false)
	require.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestComplaintReviewLifecycle(t *testing.T) {
	repo := newMemoryComplaintRepo()
	notifier := &recordingNotifier{}
	svc := newComplaintServiceForTest(repo, notifier)

	created, err := svc.Submit(context.Background(), 3, dto.ComplaintCreateRequest{
		Subject:       "Chemistry",
		Exam:          "Midterm",
		ComplaintText: "marks were deducted for question 2 even though my method is correct",
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), created.ID, 11, dto.ComplaintReviewRequest{
		Resolve: true,
		Remark:  "Re-evaluated, two marks added.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ComplaintStatusResolved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	require.Equal(t, uint(11), *reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	// Second review of the same complaint is refused.
	_, err = svc.Review(context.Background(), created.ID, 11, dto.ComplaintReviewRequest{
		Resolve: false,
		Remark:  "changing my mind",
	})
	require.ErrorIs(t, err, ErrComplaintAlreadyClosed)

	// Submission plus review decision both notified the student.
	require.Len(t, notifier.published, 2)
	require.Equal(t, "student:3", notifier.published[1].UserID)
}

func TestComplaintReviewReject(t *testing.T) {
	repo := newMemoryComplaintRepo()
	svc := newComplaintServiceForTest(repo, &recordingNotifier{})

	created, err := svc.Submit(context.Background(), 4, dto.ComplaintCreateRequest{
		Subject:       "Maths",
		Exam:          "Final",
		ComplaintText: "I think I deserve more marks overall for this paper",
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), created.ID, 12, dto.ComplaintReviewRequest{
		Resolve: false,
		Remark:  "Marks awarded per the published scheme.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ComplaintStatusRejected, reviewed.Status)
}

func TestComplaintPendingQueueOrdering(t *testing.T) {
	repo := newMemoryComplaintRepo()
	svc := newComplaintServiceForTest(repo, &recordingNotifier{})

	first, err := svc.Submit(context.Background(), 1, dto.ComplaintCreateRequest{
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "question 1 was never checked by anyone",
	})
	require.NoError(t, err)

	// Backdate the first complaint so ordering is observable.
	stored := repo.complaints[first.ID]
	stored.CreatedAt = time.Now().Add(-time.Hour)
	repo.complaints[first.ID] = stored

	_, err = svc.Submit(context.Background(), 2, dto.ComplaintCreateRequest{
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "question 2 total does not add up",
	})
	require.NoError(t, err)

	queue, err := svc.PendingQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, first.ID, queue[0].ID)
}

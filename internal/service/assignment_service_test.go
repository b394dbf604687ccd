package service

import (
	"context"
	"io"
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

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (m *memoryAssignmentRepo) ListActive(_ context.Context, subject string) ([]models.Assignment, error) {
	var results []models.Assignment
	for _, assignment := range m.assignments {
		if !assignment.IsActive {
			continue
		}
		if subject != "" && assignment.Subject != subject {
			continue
		}
		results = append(results, assignment)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Deadline.Before(results[j].Deadline) })
	return results, nil
}

func (m *memoryAssignmentRepo) ListByFaculty(_ context.Context, facultyID uint) ([]models.Assignment, error) {
	var results []models.Assignment
	for _, assignment := range m.assignments {
		if assignment.CreatedBy == facultyID {
			results = append(results, assignment)
		}
	}
	return results, nil
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Deactivate(_ context.Context, id uint) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.IsActive = false
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if assignment.IsActive {
			count++
		}
	}
	return count, nil
}

type stubUploader struct {
	uploads int
}

func (s *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	s.uploads++
	return "https://cdn.example.com/" + name, nil
}

func newAssignmentServiceForTest(repo *memoryAssignmentRepo) AssignmentService {
	return NewAssignmentService(repo, validator.New(), &stubUploader{}, zerolog.Nop())
}

func validCreateRequest(deadline string) dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		Title:         "Extra credit worksheet",
		Description:   "Solve the attached problems before the deadline.",
		Subject:       "Maths",
		Deadline:      deadline,
		MaxBonusMarks: 5,
		RewardCurve:   "scaling",
	}
}

func TestAssignmentCreateParsesDeadlineLayouts(t *testing.T) {
	repo := newMemoryAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	future := time.Now().UTC().Add(72 * time.Hour)
	layouts := []string{
		future.Format(time.RFC3339),
		future.Format("2006-01-02T15:04"),
		future.Format("2006-01-02 15:04:05"),
		future.Format("2006-01-02 15:04"),
	}

	for _, raw := range layouts {
		response, err := svc.Create(context.Background(), 1, validCreateRequest(raw), nil)
		require.NoError(t, err, "deadline %q", raw)
		require.WithinDuration(t, future, response.Deadline, time.Minute)
		require.True(t, response.IsActive)
		require.Equal(t, "offline", response.SubmissionMode)
	}
}

func TestAssignmentCreateRejectsPastDeadline(t *testing.T) {
	svc := newAssignmentServiceForTest(newMemoryAssignmentRepo())

	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	_, err := svc.Create(context.Background(), 1, validCreateRequest(past), nil)
	require.ErrorIs(t, err, ErrDeadlineInPast)
}

func TestAssignmentCreateRejectsUnknownCurve(t *testing.T) {
	svc := newAssignmentServiceForTest(newMemoryAssignmentRepo())

	payload := validCreateRequest(time.Now().UTC().Add(time.Hour).Format(time.RFC3339))
	payload.RewardCurve = "exponential"
	_, err := svc.Create(context.Background(), 1, payload, nil)
	require.Error(t, err)
}

func TestAssignmentListActiveFiltersBySubject(t *testing.T) {
	repo := newMemoryAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	deadline := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	maths := validCreateRequest(deadline)
	physics := validCreateRequest(deadline)
	physics.Subject = "Physics"

	_, err := svc.Create(context.Background(), 1, maths, nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, physics, nil)
	require.NoError(t, err)

	all, err := svc.ListActive(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := svc.ListActive(context.Background(), "Physics")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "Physics", filtered[0].Subject)
}

func TestAssignmentDeactivateHidesFromActiveList(t *testing.T) {
	repo := newMemoryAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	deadline := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	created, err := svc.Create(context.Background(), 1, validCreateRequest(deadline), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	active, err := svc.ListActive(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, active)

	// Deactivated assignments remain fetchable for bookkeeping.
	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, fetched.IsActive)

	require.ErrorIs(t, svc.Deactivate(context.Background(), 999), ErrAssignmentNotFound)
}

func TestAssignmentUpdatePartial(t *testing.T) {
	repo := newMemoryAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	deadline := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	created, err := svc.Create(context.Background(), 1, validCreateRequest(deadline), nil)
	require.NoError(t, err)

	newTitle := "Revised worksheet"
	newCurve := "tier"
	updated, err := svc.Update(context.Background(), created.ID, dto.AssignmentUpdateRequest{
		Title:       &newTitle,
		RewardCurve: &newCurve,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, newTitle, updated.Title)
	require.Equal(t, "tier", updated.RewardCurve)
	require.Equal(t, created.Subject, updated.Subject)
}

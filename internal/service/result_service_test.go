package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/models"
)

type memoryMarkRepo struct {
	marks    map[uint]models.Mark
	statuses map[string]models.ResultStatus
	nextID   uint
}

func newMemoryMarkRepo() *memoryMarkRepo {
	return &memoryMarkRepo{
		marks:    make(map[uint]models.Mark),
		statuses: make(map[string]models.ResultStatus),
		nextID:   1,
	}
}

func (m *memoryMarkRepo) Create(_ context.Context, mark *models.Mark) error {
	mark.ID = m.nextID
	mark.CreatedAt = time.Now()
	m.marks[m.nextID] = *mark
	m.nextID++
	return nil
}

func (m *memoryMarkRepo) ListPublishedByStudentAndExam(_ context.Context, studentID uint, exam string) ([]models.Mark, error) {
	var results []models.Mark
	for _, mark := range m.marks {
		if mark.StudentID == studentID && mark.Exam == exam && mark.IsPublished {
			results = append(results, mark)
		}
	}
	return results, nil
}

func (m *memoryMarkRepo) ListByExam(_ context.Context, exam string) ([]models.Mark, error) {
	var results []models.Mark
	for _, mark := range m.marks {
		if mark.Exam == exam {
			results = append(results, mark)
		}
	}
	return results, nil
}

func (m *memoryMarkRepo) AverageForSubject(_ context.Context, subject string) (float64, error) {
	var sum, count float64
	for _, mark := range m.marks {
		if mark.Subject == subject {
			sum += float64(mark.Marks)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (m *memoryMarkRepo) AverageForStudent(_ context.Context, studentID uint) (float64, error) {
	var sum, count float64
	for _, mark := range m.marks {
		if mark.StudentID == studentID && mark.IsPublished {
			sum += float64(mark.Marks)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (m *memoryMarkRepo) SetPublishedByExam(_ context.Context, exam string, published bool) (int64, error) {
	var affected int64
	for id, mark := range m.marks {
		if mark.Exam == exam {
			mark.IsPublished = published
			m.marks[id] = mark
			affected++
		}
	}
	return affected, nil
}

func (m *memoryMarkRepo) GetResultStatus(_ context.Context, exam string) (models.ResultStatus, error) {
	status, ok := m.statuses[exam]
	if !ok {
		return models.ResultStatus{Exam: exam}, nil
	}
	return status, nil
}

func (m *memoryMarkRepo) UpsertResultStatus(_ context.Context, status *models.ResultStatus) error {
	m.statuses[status.Exam] = *status
	return nil
}

func (m *memoryMarkRepo) StudentIDsByExam(_ context.Context, exam string) ([]uint, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, mark := range m.marks {
		if mark.Exam == exam {
			if _, ok := seen[mark.StudentID]; !ok {
				seen[mark.StudentID] = struct{}{}
				ids = append(ids, mark.StudentID)
			}
		}
	}
	return ids, nil
}

type resultFixture struct {
	svc      ResultService
	marks    *memoryMarkRepo
	students *memoryStudentRepo
	notifier *recordingNotifier
}

func newResultFixture(t *testing.T) resultFixture {
	t.Helper()
	marks := newMemoryMarkRepo()
	students := newMemoryStudentRepo()
	notifier := &recordingNotifier{}

	students.students[1] = models.Student{ID: 1, Name: "Asha", Email: "asha@example.com"}
	students.students[2] = models.Student{ID: 2, Name: "Ravi", Email: "ravi@example.com"}

	svc := NewResultService(marks, students, validator.New(), notifier, zerolog.Nop())
	return resultFixture{svc: svc, marks: marks, students: students, notifier: notifier}
}

func TestResultAddMarkNotifiesStudent(t *testing.T) {
	f := newResultFixture(t)

	mark, err := f.svc.AddMark(context.Background(), 5, dto.MarkCreateRequest{
		StudentID: 1,
		Subject:   "Maths",
		Exam:      "Midterm",
		Marks:     72,
	})
	require.NoError(t, err)
	require.False(t, mark.IsPublished)

	require.Len(t, f.notifier.published, 1)
	require.Equal(t, models.NotificationMarksUploaded, f.notifier.published[0].Type)
	require.Equal(t, "student:1", f.notifier.published[0].UserID)
}

func TestResultAddMarkUnknownStudent(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.AddMark(context.Background(), 5, dto.MarkCreateRequest{
		StudentID: 99,
		Subject:   "Maths",
		Exam:      "Midterm",
		Marks:     50,
	})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestResultVisibilityGatedOnDeclaration(t *testing.T) {
	f := newResultFixture(t)

	for _, entry := range []struct {
		subject string
		marks   int
	}{{"Maths", 70}, {"Physics", 80}} {
		_, err := f.svc.AddMark(context.Background(), 5, dto.MarkCreateRequest{
			StudentID: 1, Subject: entry.subject, Exam: "Midterm", Marks: entry.marks,
		})
		require.NoError(t, err)
	}

	_, err := f.svc.StudentResults(context.Background(), 1, "Midterm")
	require.ErrorIs(t, err, ErrResultsNotDeclared)

	status, err := f.svc.Publish(context.Background(), "Midterm", 1)
	require.NoError(t, err)
	require.True(t, status.IsDeclared)
	require.NotNil(t, status.DeclaredBy)

	results, err := f.svc.StudentResults(context.Background(), 1, "Midterm")
	require.NoError(t, err)
	require.Len(t, results.Marks, 2)
	require.Equal(t, 150, results.Total)
	require.InDelta(t, 75.0, results.Average, 1e-9)
}

func TestResultPublishRequiresMarks(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.Publish(context.Background(), "Final", 1)
	require.ErrorIs(t, err, ErrNoMarksForExam)
}

func TestResultPublishIsIdempotentGuarded(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.AddMark(context.Background(), 5, dto.MarkCreateRequest{
		StudentID: 1, Subject: "Maths", Exam: "Midterm", Marks: 60,
	})
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), "Midterm", 1)
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), "Midterm", 1)
	require.ErrorIs(t, err, ErrResultsAlreadySet)
}

func TestResultPublishNotifiesEachStudentOnce(t *testing.T) {
	f := newResultFixture(t)

	entries := []dto.MarkCreateRequest{
		{StudentID: 1, Subject: "Maths", Exam: "Midterm", Marks: 60},
		{StudentID: 1, Subject: "Physics", Exam: "Midterm", Marks: 65},
		{StudentID: 2, Subject: "Maths", Exam: "Midterm", Marks: 70},
	}
	for _, entry := range entries {
		_, err := f.svc.AddMark(context.Background(), 5, entry)
		require.NoError(t, err)
	}

	before := len(f.notifier.published)
	_, err := f.svc.Publish(context.Background(), "Midterm", 1)
	require.NoError(t, err)

	declared := f.notifier.published[before:]
	require.Len(t, declared, 2)
	for _, notification := range declared {
		require.Equal(t, models.NotificationResultPublished, notification.Type)
	}
}

func TestResultUnpublishHidesMarks(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.AddMark(context.Background(), 5, dto.MarkCreateRequest{
		StudentID: 1, Subject: "Maths", Exam: "Midterm", Marks: 60,
	})
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), "Midterm", 1)
	require.NoError(t, err)

	status, err := f.svc.Unpublish(context.Background(), "Midterm", 1)
	require.NoError(t, err)
	require.False(t, status.IsDeclared)

	_, err = f.svc.StudentResults(context.Background(), 1, "Midterm")
	require.ErrorIs(t, err, ErrResultsNotDeclared)

	_, err = f.svc.Unpublish(context.Background(), "Midterm", 1)
	require.ErrorIs(t, err, ErrResultsAlreadySet)
}

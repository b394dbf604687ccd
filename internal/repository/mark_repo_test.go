package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

func TestMarkRepositoryPublishByExam(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkRepository(db)
	student := seedStudent(t, db, "marks@example.com")

	for _, subject := range []string{"Maths", "Physics"} {
		mark := models.Mark{StudentID: student.ID, Subject: subject, Exam: "Midterm", Marks: 70, FacultyID: 1}
		require.NoError(t, repo.Create(context.Background(), &mark))
	}
	other := models.Mark{StudentID: student.ID, Subject: "Maths", Exam: "Final", Marks: 80, FacultyID: 1}
	require.NoError(t, repo.Create(context.Background(), &other))

	// Nothing visible before publication.
	visible, err := repo.ListPublishedByStudentAndExam(context.Background(), student.ID, "Midterm")
	require.NoError(t, err)
	require.Empty(t, visible)

	affected, err := repo.SetPublishedByExam(context.Background(), "Midterm", true)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	visible, err = repo.ListPublishedByStudentAndExam(context.Background(), student.ID, "Midterm")
	require.NoError(t, err)
	require.Len(t, visible, 2)

	// The other exam stays unpublished.
	finals, err := repo.ListPublishedByStudentAndExam(context.Background(), student.ID, "Final")
	require.NoError(t, err)
	require.Empty(t, finals)
}

func TestMarkRepositoryResultStatusUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkRepository(db)

	// Missing status resolves to an undeclared default.
	status, err := repo.GetResultStatus(context.Background(), "Midterm")
	require.NoError(t, err)
	require.False(t, status.IsDeclared)
	require.Equal(t, "Midterm", status.Exam)

	adminID := uint(7)
	now := time.Now()
	declared := models.ResultStatus{Exam: "Midterm", IsDeclared: true, DeclaredBy: &adminID, DeclaredAt: &now}
	require.NoError(t, repo.UpsertResultStatus(context.Background(), &declared))

	status, err = repo.GetResultStatus(context.Background(), "Midterm")
	require.NoError(t, err)
	require.True(t, status.IsDeclared)

	// Upserting again flips the flag in place instead of duplicating the row.
	undeclared := models.ResultStatus{Exam: "Midterm", IsDeclared: false}
	require.NoError(t, repo.UpsertResultStatus(context.Background(), &undeclared))

	status, err = repo.GetResultStatus(context.Background(), "Midterm")
	require.NoError(t, err)
	require.False(t, status.IsDeclared)
}

func TestMarkRepositoryAverages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkRepository(db)
	student := seedStudent(t, db, "avg@example.com")

	scores := []int{60, 80}
	for _, score := range scores {
		mark := models.Mark{StudentID: student.ID, Subject: "Maths", Exam: "Midterm", Marks: score, FacultyID: 1, IsPublished: true}
		require.NoError(t, repo.Create(context.Background(), &mark))
	}

	subjectAvg, err := repo.AverageForSubject(context.Background(), "Maths")
	require.NoError(t, err)
	require.InDelta(t, 70.0, subjectAvg, 1e-9)

	studentAvg, err := repo.AverageForStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.InDelta(t, 70.0, studentAvg, 1e-9)

	// No marks at all yields zero, not an error.
	empty, err := repo.AverageForSubject(context.Background(), "History")
	require.NoError(t, err)
	require.Zero(t, empty)
}

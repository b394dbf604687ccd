package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Faculty{},
		&models.Complaint{},
		&models.Assignment{},
		&models.Submission{},
		&models.Mark{},
		&models.ResultStatus{},
		&models.Notification{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, email string) models.Student {
	t.Helper()
	student := models.Student{Name: "Test Student", Email: email, Department: "CSE", Semester: 4}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestComplaintRepositoryPendingQueueIsOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewComplaintRepository(db)
	student := seedStudent(t, db, "queue@example.com")

	older := models.Complaint{
		StudentID:     student.ID,
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "Q1 not checked",
		Status:        models.ComplaintStatusPending,
		CreatedAt:     time.Now().Add(-2 * time.Hour),
	}
	newer := models.Complaint{
		StudentID:     student.ID,
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "Q2 total is wrong",
		Status:        models.ComplaintStatusPending,
		CreatedAt:     time.Now().Add(-time.Hour),
	}
	resolved := models.Complaint{
		StudentID:     student.ID,
		Subject:       "Maths",
		Exam:          "Midterm",
		ComplaintText: "already handled",
		Status:        models.ComplaintStatusResolved,
	}
	require.NoError(t, repo.Create(context.Background(), &older))
	require.NoError(t, repo.Create(context.Background(), &newer))
	require.NoError(t, repo.Create(context.Background(), &resolved))

	pending, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, older.ID, pending[0].ID, "expected oldest pending complaint first")

	since, ok, err := repo.OldestPendingSince(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.WithinDuration(t, older.CreatedAt, since, time.Second)
}

func TestComplaintRepositoryCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewComplaintRepository(db)
	student := seedStudent(t, db, "counts@example.com")

	for _, status := range []string{models.ComplaintStatusPending, models.ComplaintStatusResolved, models.ComplaintStatusResolved} {
		complaint := models.Complaint{
			StudentID:     student.ID,
			Subject:       "Physics",
			Exam:          "Final",
			ComplaintText: "some complaint text",
			Status:        status,
		}
		require.NoError(t, repo.Create(context.Background(), &complaint))
	}

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	resolved, err := repo.CountByStatus(context.Background(), models.ComplaintStatusResolved)
	require.NoError(t, err)
	require.Equal(t, int64(2), resolved)
}

func TestComplaintRepositoryOldestPendingEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewComplaintRepository(db)

	_, ok, err := repo.OldestPendingSince(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

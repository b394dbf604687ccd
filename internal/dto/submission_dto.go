package dto

import (
	"time"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// SubmissionVerifyRequest carries a faculty verification decision. A manual
// bonus, when provided, overrides the computed bonus.
type SubmissionVerifyRequest struct {
	Approve     bool     `json:"approve"`
	ManualBonus *float64 `json:"manual_bonus" validate:"omitempty,gte=0,lte=100"`
	Notes       string   `json:"notes"`
}

// SubmissionBulkVerifyRequest approves a batch of submissions in one call.
type SubmissionBulkVerifyRequest struct {
	SubmissionIDs []uint `json:"submission_ids" validate:"required,min=1,dive,gt=0"`
}

// SubmissionResponse is the serialized representation returned to API clients.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	StudentID    uint       `json:"student_id"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	FileURL      string     `json:"file_url"`
	AIBonusMarks float64    `json:"ai_bonus_marks"`
	IsVerified   bool       `json:"is_verified"`
	FinalBonus   *float64   `json:"final_bonus,omitempty"`
	FacultyNotes string     `json:"faculty_notes,omitempty"`
	VerifiedBy   *uint      `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		SubmittedAt:  model.SubmittedAt,
		FileURL:      model.FileURL,
		AIBonusMarks: model.AIBonusMarks,
		IsVerified:   model.IsVerified,
		FinalBonus:   model.FinalBonus,
		FacultyNotes: model.FacultyNotes,
		VerifiedBy:   model.VerifiedBy,
		VerifiedAt:   model.VerifiedAt,
		CreatedAt:    model.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// BulkVerifyResponse reports how many submissions were verified.
type BulkVerifyResponse struct {
	Verified  int `json:"verified"`
	Requested int `json:"requested"`
}

// AssignmentStatsResponse aggregates submission activity for an assignment.
type AssignmentStatsResponse struct {
	AssignmentID         uint    `json:"assignment_id"`
	TotalSubmissions     int     `json:"total_submissions"`
	VerifiedSubmissions  int     `json:"verified_submissions"`
	PendingSubmissions   int     `json:"pending_submissions"`
	AverageBonus         float64 `json:"average_bonus"`
	TotalBonusAwarded    float64 `json:"total_bonus_awarded"`
	EarlySubmissions     int     `json:"early_submissions"`
	LateSubmissions      int     `json:"late_submissions"`
}

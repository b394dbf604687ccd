package dto

import (
	"time"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for publishing an assignment.
// The deadline is parsed at the service boundary; several common timestamp
// layouts are accepted.
type AssignmentCreateRequest struct {
	Title          string  `form:"title" json:"title" validate:"required,min=3"`
	Description    string  `form:"description" json:"description" validate:"required,min=10"`
	Subject        string  `form:"subject" json:"subject" validate:"required,min=2"`
	Deadline       string  `form:"deadline" json:"deadline" validate:"required"`
	MaxBonusMarks  float64 `form:"max_bonus_marks" json:"max_bonus_marks" validate:"gte=0,lte=100"`
	RewardCurve    string  `form:"reward_curve" json:"reward_curve" validate:"required,oneof=fixed tier scaling"`
	SubmissionMode string  `form:"submission_mode" json:"submission_mode" validate:"omitempty,oneof=online offline"`
}

// AssignmentUpdateRequest describes a partial assignment update.
type AssignmentUpdateRequest struct {
	Title         *string  `form:"title" json:"title" validate:"omitempty,min=3"`
	Description   *string  `form:"description" json:"description" validate:"omitempty,min=10"`
	Deadline      *string  `form:"deadline" json:"deadline"`
	MaxBonusMarks *float64 `form:"max_bonus_marks" json:"max_bonus_marks" validate:"omitempty,gte=0,lte=100"`
	RewardCurve   *string  `form:"reward_curve" json:"reward_curve" validate:"omitempty,oneof=fixed tier scaling"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Subject        string    `json:"subject"`
	Deadline       time.Time `json:"deadline"`
	MaxBonusMarks  float64   `json:"max_bonus_marks"`
	RewardCurve    string    `json:"reward_curve"`
	SubmissionMode string    `json:"submission_mode"`
	FileURL        string    `json:"file_url"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      uint      `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:             model.ID,
		Title:          model.Title,
		Description:    model.Description,
		Subject:        model.Subject,
		Deadline:       model.Deadline,
		MaxBonusMarks:  model.MaxBonusMarks,
		RewardCurve:    model.RewardCurve,
		SubmissionMode: model.SubmissionMode,
		FileURL:        model.FileURL,
		IsActive:       model.IsActive,
		CreatedBy:      model.CreatedBy,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

package dto

import (
	"time"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// ComplaintCreateRequest describes the payload for filing a grievance.
type ComplaintCreateRequest struct {
	Subject       string `form:"subject" json:"subject" validate:"required,min=2"`
	Exam          string `form:"exam" json:"exam" validate:"required,min=2"`
	ComplaintText string `form:"complaint_text" json:"complaint_text" validate:"required,min=10"`
}

// ComplaintReviewRequest describes the payload for a faculty review decision.
type ComplaintReviewRequest struct {
	Resolve bool   `json:"resolve"`
	Remark  string `json:"remark" validate:"required,min=5"`
}

// ComplaintResponse is the serialized representation returned to API clients.
type ComplaintResponse struct {
	ID                  uint       `json:"id"`
	StudentID           uint       `json:"student_id"`
	Subject             string     `json:"subject"`
	Exam                string     `json:"exam"`
	ComplaintText       string     `json:"complaint_text"`
	ExtractedQuestion   string     `json:"extracted_question"`
	IssueType           string     `json:"issue_type"`
	AISummary           string     `json:"ai_summary"`
	DetailedExplanation string     `json:"detailed_explanation"`
	ConfidenceScore     float64    `json:"confidence_score"`
	Status              string     `json:"status"`
	FacultyRemark       string     `json:"faculty_remark,omitempty"`
	ReviewedBy          *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewComplaintResponse converts a model into a DTO.
func NewComplaintResponse(model models.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:                  model.ID,
		StudentID:           model.StudentID,
		Subject:             model.Subject,
		Exam:                model.Exam,
		ComplaintText:       model.ComplaintText,
		ExtractedQuestion:   model.ExtractedQuestion,
		IssueType:           model.IssueType,
		AISummary:           model.AISummary,
		DetailedExplanation: model.DetailedExplanation,
		ConfidenceScore:     model.ConfidenceScore,
		Status:              model.Status,
		FacultyRemark:       model.FacultyRemark,
		ReviewedBy:          model.ReviewedBy,
		ReviewedAt:          model.ReviewedAt,
		CreatedAt:           model.CreatedAt,
	}
}

// NewComplaintResponseSlice converts a slice of models into DTOs.
func NewComplaintResponseSlice(complaints []models.Complaint) []ComplaintResponse {
	responses := make([]ComplaintResponse, 0, len(complaints))
	for _, complaint := range complaints {
		responses = append(responses, NewComplaintResponse(complaint))
	}

	return responses
}

package dto

import (
	"time"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// MarkCreateRequest describes the payload for a faculty entering a mark.
type MarkCreateRequest struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	Subject   string `json:"subject" validate:"required,min=2"`
	Exam      string `json:"exam" validate:"required,min=2"`
	Marks     int    `json:"marks" validate:"gte=0,lte=100"`
}

// MarkResponse is the serialized representation of a single mark.
type MarkResponse struct {
	ID          uint      `json:"id"`
	StudentID   uint      `json:"student_id"`
	Subject     string    `json:"subject"`
	Exam        string    `json:"exam"`
	Marks       int       `json:"marks"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMarkResponse converts a model into a DTO.
func NewMarkResponse(model models.Mark) MarkResponse {
	return MarkResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		Subject:     model.Subject,
		Exam:        model.Exam,
		Marks:       model.Marks,
		IsPublished: model.IsPublished,
		CreatedAt:   model.CreatedAt,
	}
}

// StudentResultsResponse groups the published marks of one exam for a student.
type StudentResultsResponse struct {
	Exam       string         `json:"exam"`
	IsDeclared bool           `json:"is_declared"`
	Marks      []MarkResponse `json:"marks"`
	Total      int            `json:"total"`
	Average    float64        `json:"average"`
}

// ResultStatusResponse reports the publication state of an exam.
type ResultStatusResponse struct {
	Exam       string     `json:"exam"`
	IsDeclared bool       `json:"is_declared"`
	DeclaredBy *uint      `json:"declared_by,omitempty"`
	DeclaredAt *time.Time `json:"declared_at,omitempty"`
}

// NewResultStatusResponse converts a model into a DTO.
func NewResultStatusResponse(model models.ResultStatus) ResultStatusResponse {
	return ResultStatusResponse{
		Exam:       model.Exam,
		IsDeclared: model.IsDeclared,
		DeclaredBy: model.DeclaredBy,
		DeclaredAt: model.DeclaredAt,
	}
}

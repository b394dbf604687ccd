package models

import "time"

// Complaint statuses follow the faculty review lifecycle.
const (
	ComplaintStatusPending  = "Pending Review"
	ComplaintStatusResolved = "Resolved"
	ComplaintStatusRejected = "Rejected"
)

// Complaint is a mark-related grievance raised by a student, enriched with
// the automated classification produced at submission time.
type Complaint struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	StudentID           uint      `gorm:"not null;index" json:"student_id"`
	Subject             string    `gorm:"size:128;not null" json:"subject"`
	Exam                string    `gorm:"size:128;not null" json:"exam"`
	ComplaintText       string    `gorm:"type:text;not null" json:"complaint_text"`
	ExtractedQuestion   string    `gorm:"size:32" json:"extracted_question"`
	IssueType           string    `gorm:"size:64" json:"issue_type"`
	AISummary           string    `gorm:"size:512" json:"ai_summary"`
	DetailedExplanation string    `gorm:"type:text" json:"detailed_explanation"`
	ConfidenceScore     float64   `json:"confidence_score"`
	Status              string    `gorm:"size:32;not null;default:'Pending Review'" json:"status"`
	FacultyRemark       string    `gorm:"type:text" json:"faculty_remark"`
	ReviewedBy          *uint     `json:"reviewed_by"`
	ReviewedAt          *time.Time `json:"reviewed_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Student             Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsPending reports whether the complaint still awaits faculty review.
func (c Complaint) IsPending() bool {
	return c.Status == ComplaintStatusPending
}

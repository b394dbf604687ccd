package models

import "time"

// Submission modes supported by an assignment.
const (
	SubmissionModeOnline  = "online"
	SubmissionModeOffline = "offline"
)

// Assignment is a bonus-bearing task published by a faculty member. The
// reward curve and max bonus drive the early-submission bonus calculation.
type Assignment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Subject        string    `gorm:"size:128;not null" json:"subject"`
	Deadline       time.Time `gorm:"not null" json:"deadline"`
	MaxBonusMarks  float64   `gorm:"not null;default:0" json:"max_bonus_marks"`
	RewardCurve    string    `gorm:"size:16;not null;default:'fixed'" json:"reward_curve"`
	SubmissionMode string    `gorm:"size:16;not null;default:'offline'" json:"submission_mode"`
	FileURL        string    `gorm:"size:512" json:"file_url"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedBy      uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Faculty        Faculty   `gorm:"foreignKey:CreatedBy" json:"faculty"`
	Submissions    []Submission `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.Deadline)
}

package models

import "time"

// Submission records a student handing in an assignment, together with the
// automatically computed bonus and its faculty verification state.
type Submission struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AssignmentID  uint       `gorm:"not null;index:idx_submission_unique,unique" json:"assignment_id"`
	StudentID     uint       `gorm:"not null;index:idx_submission_unique,unique" json:"student_id"`
	SubmittedAt   time.Time  `gorm:"not null" json:"submitted_at"`
	FileURL       string     `gorm:"size:512" json:"file_url"`
	AIBonusMarks  float64    `gorm:"not null;default:0" json:"ai_bonus_marks"`
	IsVerified    bool       `gorm:"not null;default:false" json:"is_verified"`
	FinalBonus    *float64   `json:"final_bonus"`
	FacultyNotes  string     `gorm:"type:text" json:"faculty_notes"`
	VerifiedBy    *uint      `json:"verified_by"`
	VerifiedAt    *time.Time `json:"verified_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Assignment    Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student       Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// AwardedBonus returns the bonus that counts towards internal marks: the
// faculty override when present, otherwise the computed bonus.
func (s Submission) AwardedBonus() float64 {
	if s.FinalBonus != nil {
		return *s.FinalBonus
	}
	return s.AIBonusMarks
}

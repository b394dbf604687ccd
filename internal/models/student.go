package models

import "time"

// Student represents a learner enrolled in the portal.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Department    string    `gorm:"size:128" json:"department"`
	Semester      int       `json:"semester"`
	InternalMarks float64   `gorm:"not null;default:0" json:"internal_marks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

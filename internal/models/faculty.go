package models

import "time"

// Faculty represents a staff member who reviews complaints and grades work.
type Faculty struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Subject    string    `gorm:"size:128;not null" json:"subject"`
	Department string    `gorm:"size:128" json:"department"`
	EmployeeID string    `gorm:"size:64;uniqueIndex" json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

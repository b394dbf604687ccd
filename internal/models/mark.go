package models

import "time"

// Mark is a per-subject exam score entered by faculty. Marks stay hidden from
// students until the exam's results are declared.
type Mark struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	Subject     string    `gorm:"size:128;not null" json:"subject"`
	Exam        string    `gorm:"size:128;not null;index" json:"exam"`
	Marks       int       `gorm:"not null" json:"marks"`
	FacultyID   uint      `gorm:"not null" json:"faculty_id"`
	IsPublished bool      `gorm:"not null;default:false" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Student     Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ResultStatus tracks whether an exam's results have been declared.
type ResultStatus struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Exam       string     `gorm:"size:128;uniqueIndex;not null" json:"exam"`
	IsDeclared bool       `gorm:"not null;default:false" json:"is_declared"`
	DeclaredBy *uint      `json:"declared_by"`
	DeclaredAt *time.Time `json:"declared_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

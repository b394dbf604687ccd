package models

import "time"

// Notice kinds published to the student body.
const (
	NoticeTypeTimetable = "timetable"
	NoticeTypeGeneral   = "general"
	NoticeTypeExam      = "exam"
	NoticeTypeEvent     = "event"
	NoticeTypeHoliday   = "holiday"
	NoticeTypeUrgent    = "urgent"
)

// Audience selectors for a notice.
const (
	NoticeTargetAll        = "all"
	NoticeTargetDepartment = "department"
	NoticeTargetSemester   = "semester"
	NoticeTargetClass      = "class"
)

// Notice is a board announcement, optionally carrying an attachment such as
// a timetable PDF. Visibility is scoped by target role plus the student's
// department and semester.
type Notice struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	FileURL       string     `gorm:"size:512" json:"file_url"`
	FileName      string     `gorm:"size:255" json:"file_name"`
	NoticeType    string     `gorm:"size:32;not null;index" json:"notice_type"`
	TargetRole    string     `gorm:"size:32;not null;default:all" json:"target_role"`
	Department    string     `gorm:"size:128" json:"department"`
	Semester      int        `json:"semester"`
	UploadedBy    uint       `gorm:"not null" json:"uploaded_by"`
	PublishAt     *time.Time `json:"publish_at"`
	IsPublished   bool       `gorm:"not null;default:true" json:"is_published"`
	DownloadCount int        `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// VisibleTo reports whether the notice targets the given student scope.
func (n Notice) VisibleTo(department string, semester int) bool {
	switch n.TargetRole {
	case NoticeTargetDepartment:
		return n.Department == department
	case NoticeTargetSemester:
		return n.Semester == semester
	case NoticeTargetClass:
		return n.Department == department && n.Semester == semester
	default:
		return true
	}
}

// NoticeRead tracks per-student read receipts for a notice.
type NoticeRead struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	NoticeID  uint       `gorm:"not null;uniqueIndex:idx_notice_student" json:"notice_id"`
	StudentID uint       `gorm:"not null;uniqueIndex:idx_notice_student" json:"student_id"`
	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification kinds emitted by the portal.
const (
	NotificationMarksUploaded   = "marks_uploaded"
	NotificationResultPublished = "result_published"
	NotificationGrievanceUpdate = "grievance_update"
	NotificationBonusAwarded    = "bonus_awarded"
	NotificationNoticePosted    = "notice_posted"
)

// Notification is a per-user message delivered through the realtime stream
// and listed in the notification centre.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"size:64;not null;index" json:"user_id"`
	Type      string         `gorm:"size:64;not null" json:"type"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Payload   datatypes.JSON `json:"payload"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

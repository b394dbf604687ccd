package dto

import (
	"time"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// NoticeCreateRequest describes the payload for posting a notice. An
// optional publish_at timestamp schedules the notice; it is parsed at the
// service boundary.
type NoticeCreateRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=3"`
	Description string `form:"description" json:"description"`
	NoticeType  string `form:"notice_type" json:"notice_type" validate:"required,oneof=timetable general exam event holiday urgent"`
	TargetRole  string `form:"target_role" json:"target_role" validate:"omitempty,oneof=all department semester class"`
	Department  string `form:"department" json:"department"`
	Semester    int    `form:"semester" json:"semester" validate:"gte=0,lte=12"`
	PublishAt   string `form:"publish_at" json:"publish_at"`
}

// NoticeUpdateRequest describes a partial notice update.
type NoticeUpdateRequest struct {
	Title       *string `form:"title" json:"title" validate:"omitempty,min=3"`
	Description *string `form:"description" json:"description"`
	TargetRole  *string `form:"target_role" json:"target_role" validate:"omitempty,oneof=all department semester class"`
	Department  *string `form:"department" json:"department"`
	Semester    *int    `form:"semester" json:"semester" validate:"omitempty,gte=0,lte=12"`
}

// NoticeResponse is the serialized representation returned to API clients.
// IsRead is only meaningful on student-facing listings.
type NoticeResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	FileURL       string     `json:"file_url,omitempty"`
	FileName      string     `json:"file_name,omitempty"`
	NoticeType    string     `json:"notice_type"`
	TargetRole    string     `json:"target_role"`
	Department    string     `json:"department,omitempty"`
	Semester      int        `json:"semester,omitempty"`
	UploadedBy    uint       `json:"uploaded_by"`
	PublishAt     *time.Time `json:"publish_at,omitempty"`
	IsPublished   bool       `json:"is_published"`
	DownloadCount int        `json:"download_count"`
	IsRead        bool       `json:"is_read"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewNoticeResponse converts a model into a DTO.
func NewNoticeResponse(model models.Notice) NoticeResponse {
	return NoticeResponse{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		FileURL:       model.FileURL,
		FileName:      model.FileName,
		NoticeType:    model.NoticeType,
		TargetRole:    model.TargetRole,
		Department:    model.Department,
		Semester:      model.Semester,
		UploadedBy:    model.UploadedBy,
		PublishAt:     model.PublishAt,
		IsPublished:   model.IsPublished,
		DownloadCount: model.DownloadCount,
		CreatedAt:     model.CreatedAt,
	}
}

// NewNoticeResponseSlice converts a slice of models into DTOs.
func NewNoticeResponseSlice(notices []models.Notice) []NoticeResponse {
	responses := make([]NoticeResponse, 0, len(notices))
	for _, notice := range notices {
		responses = append(responses, NewNoticeResponse(notice))
	}

	return responses
}

// NoticeStatsResponse summarises notice-board activity for the admin
// dashboard.
type NoticeStatsResponse struct {
	TotalNotices    int64            `json:"total_notices"`
	TotalTimetables int64            `json:"total_timetables"`
	TotalDownloads  int64            `json:"total_downloads"`
	ReadPercentage  float64          `json:"read_percentage"`
	RecentUploads   []NoticeResponse `json:"recent_uploads"`
}

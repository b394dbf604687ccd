package dto

import (
	"time"

	"github.com/noah-isme/grievance-go-api/internal/models"
)

// NotificationCreateRequest describes the payload for publishing a notification.
type NotificationCreateRequest struct {
	UserID  string            `json:"user_id" validate:"required"`
	Type    string            `json:"type" validate:"required"`
	Title   string            `json:"title" validate:"required,min=3"`
	Message string            `json:"message" validate:"required"`
	Payload map[string]string `json:"payload"`
}

// NotificationResponse is the serialized representation returned to clients
// and pushed through the realtime stream.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Payload   string    `json:"payload,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Payload:   string(model.Payload),
		IsRead:    model.IsRead,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}

	return responses
}

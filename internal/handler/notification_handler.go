package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// NotificationHandler wires the notification centre and its realtime stream.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register attaches notification endpoints including the websocket upgrade.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Post("/:id/read", h.markRead)

	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("stream_user_id", notificationUserID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.stream))
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(c.Context(), notificationUserID(c), limit, offset)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(c.Context(), notificationUserID(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "unread count retrieved", fiber.Map{"unread": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	notification, err := h.service.MarkRead(c.Context(), id, notificationUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notification read", notification)
}

func (h *NotificationHandler) stream(conn *websocket.Conn) {
	userID := streamUserID(conn)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	stream, cancel := h.service.Subscribe(userID)
	defer cancel()

	h.logger.Info().Str("user_id", userID).Msg("notification stream connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case notification, ok := <-stream:
			if !ok {
				h.logger.Info().Str("user_id", userID).Msg("notification stream closed")
				return
			}
			if err := conn.WriteJSON(notification); err != nil {
				h.logger.Debug().Err(err).Str("user_id", userID).Msg("notification stream write failed")
				return
			}
		case <-done:
			h.logger.Info().Str("user_id", userID).Msg("notification stream disconnected")
			return
		}
	}
}

func (h *NotificationHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func streamUserID(conn *websocket.Conn) string {
	if value := conn.Locals("stream_user_id"); value != nil {
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		case fmt.Stringer:
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

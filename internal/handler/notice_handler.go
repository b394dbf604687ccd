package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// NoticeHandler wires notice-board HTTP routes.
type NoticeHandler struct {
	service service.NoticeService
	logger  zerolog.Logger
}

// NewNoticeHandler constructs the handler.
func NewNoticeHandler(service service.NoticeService, logger zerolog.Logger) *NoticeHandler {
	return &NoticeHandler{
		service: service,
		logger:  logger.With().Str("component", "notice_handler").Logger(),
	}
}

// RegisterStudent attaches the student-facing notice endpoints.
func (h *NoticeHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.listForStudent)
	router.Get("/unread-count", h.unreadCount)
	router.Post("/:id/read", h.markRead)
	router.Get("/:id/download", h.download)
}

// RegisterAdmin attaches the notice management endpoints.
func (h *NoticeHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/all", h.listAll)
	router.Get("/stats", h.stats)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *NoticeHandler) listForStudent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	notices, err := h.service.ListForStudent(c.Context(), userIDFromContext(c), c.Query("type"), limit)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notices retrieved", notices)
}

func (h *NoticeHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(c.Context(), userIDFromContext(c), c.Query("type"))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "unread count retrieved", fiber.Map{"unread": count})
}

func (h *NoticeHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.MarkRead(c.Context(), id, userIDFromContext(c)); err != nil {
		if errors.Is(err, service.ErrNoticeNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notice not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notice marked read", fiber.Map{"id": id})
}

func (h *NoticeHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	url, err := h.service.Download(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoticeNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "notice not found")
		case errors.Is(err, service.ErrNoticeNoFile):
			return utils.SendError(c, fiber.StatusNotFound, "notice has no attachment")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "download link issued", fiber.Map{"url": url})
}

func (h *NoticeHandler) create(c *fiber.Ctx) error {
	payload := dto.NoticeCreateRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		NoticeType:  c.FormValue("notice_type"),
		TargetRole:  c.FormValue("target_role"),
		Department:  c.FormValue("department"),
		PublishAt:   c.FormValue("publish_at"),
	}

	if raw := c.FormValue("semester"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid semester")
		}
		payload.Semester = parsed
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	notice, err := h.service.Create(c.Context(), userIDFromContext(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notice created", notice)
}

func (h *NoticeHandler) listAll(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	notices, err := h.service.ListAll(c.Context(), c.Query("type"), limit)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notices retrieved", notices)
}

func (h *NoticeHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notice stats retrieved", stats)
}

func (h *NoticeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	notice, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNoticeNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notice not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notice retrieved", notice)
}

func (h *NoticeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.NoticeUpdateRequest{}
	if title := c.FormValue("title"); title != "" {
		payload.Title = &title
	}
	if description := c.FormValue("description"); description != "" {
		payload.Description = &description
	}
	if target := c.FormValue("target_role"); target != "" {
		payload.TargetRole = &target
	}
	if department := c.FormValue("department"); department != "" {
		payload.Department = &department
	}
	if raw := c.FormValue("semester"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid semester")
		}
		payload.Semester = &parsed
	}

	notice, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notice updated", notice)
}

func (h *NoticeHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrNoticeNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notice not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notice deleted", fiber.Map{"id": id})
}

func (h *NoticeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoticeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "notice not found")
	case errors.Is(err, service.ErrInvalidPublishTime),
		errors.Is(err, service.ErrNoticeTargetScope),
		errors.Is(err, service.ErrNoticeTitleRequired):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *NoticeHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// InsightHandler wires the per-role dashboard insight routes.
type InsightHandler struct {
	service service.InsightService
	logger  zerolog.Logger
}

// NewInsightHandler constructs the handler.
func NewInsightHandler(service service.InsightService, logger zerolog.Logger) *InsightHandler {
	return &InsightHandler{
		service: service,
		logger:  logger.With().Str("component", "insight_handler").Logger(),
	}
}

// RegisterStudent attaches the student dashboard endpoint.
func (h *InsightHandler) RegisterStudent(router fiber.Router) {
	router.Get("/insights", h.student)
}

// RegisterFaculty attaches the faculty dashboard endpoint.
func (h *InsightHandler) RegisterFaculty(router fiber.Router) {
	router.Get("/insights", h.faculty)
}

// RegisterAdmin attaches the admin dashboard endpoint.
func (h *InsightHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/insights", h.admin)
}

func (h *InsightHandler) student(c *fiber.Ctx) error {
	insights, err := h.service.StudentInsights(c.Context(), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "insights retrieved", insights)
}

func (h *InsightHandler) faculty(c *fiber.Ctx) error {
	insights, err := h.service.FacultyInsights(c.Context(), c.Query("subject"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "insights retrieved", insights)
}

func (h *InsightHandler) admin(c *fiber.Ctx) error {
	insights, err := h.service.AdminInsights(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "insights retrieved", insights)
}

func (h *InsightHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

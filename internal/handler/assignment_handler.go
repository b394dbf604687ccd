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

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// RegisterStudent attaches read-only assignment endpoints.
func (h *AssignmentHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.listActive)
	router.Get("/:id", h.get)
}

// RegisterFaculty attaches assignment management endpoints.
func (h *AssignmentHandler) RegisterFaculty(router fiber.Router) {
	router.Get("/mine", h.listMine)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.deactivate)
}

func (h *AssignmentHandler) listActive(c *fiber.Ctx) error {
	assignments, err := h.service.ListActive(c.Context(), c.Query("subject"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) listMine(c *fiber.Ctx) error {
	assignments, err := h.service.ListByFaculty(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	payload := dto.AssignmentCreateRequest{
		Title:          c.FormValue("title"),
		Description:    c.FormValue("description"),
		Subject:        c.FormValue("subject"),
		Deadline:       c.FormValue("deadline"),
		RewardCurve:    c.FormValue("reward_curve"),
		SubmissionMode: c.FormValue("submission_mode"),
	}

	if raw := c.FormValue("max_bonus_marks"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid max_bonus_marks")
		}
		payload.MaxBonusMarks = parsed
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Create(c.Context(), userIDFromContext(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AssignmentUpdateRequest{}
	if title := c.FormValue("title"); title != "" {
		payload.Title = &title
	}
	if description := c.FormValue("description"); description != "" {
		payload.Description = &description
	}
	if deadline := c.FormValue("deadline"); deadline != "" {
		payload.Deadline = &deadline
	}
	if curve := c.FormValue("reward_curve"); curve != "" {
		payload.RewardCurve = &curve
	}
	if raw := c.FormValue("max_bonus_marks"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid max_bonus_marks")
		}
		payload.MaxBonusMarks = &parsed
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Update(c.Context(), id, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) deactivate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Deactivate(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignment deactivated", fiber.Map{"id": id})
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrDeadlineInPast):
		return utils.SendError(c, fiber.StatusBadRequest, "deadline must be in the future")
	case errors.Is(err, service.ErrInvalidDeadline):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssignmentInactive):
		return utils.SendError(c, fiber.StatusConflict, "assignment is no longer active")
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

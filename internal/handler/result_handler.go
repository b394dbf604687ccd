package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// ResultHandler wires mark entry and result publication routes.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// RegisterStudent attaches student-facing result endpoints.
func (h *ResultHandler) RegisterStudent(router fiber.Router) {
	router.Get("/:exam", h.myResults)
	router.Get("/:exam/status", h.status)
}

// RegisterFaculty attaches mark entry endpoints.
func (h *ResultHandler) RegisterFaculty(router fiber.Router) {
	router.Post("/marks", h.addMark)
}

// RegisterAdmin attaches result publication endpoints.
func (h *ResultHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/:exam/publish", h.publish)
	router.Post("/:exam/unpublish", h.unpublish)
}

func (h *ResultHandler) addMark(c *fiber.Ctx) error {
	var payload dto.MarkCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	mark, err := h.service.AddMark(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mark recorded", mark)
}

func (h *ResultHandler) myResults(c *fiber.Ctx) error {
	exam, err := examParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.StudentResults(c.Context(), userIDFromContext(c), exam)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultHandler) status(c *fiber.Ctx) error {
	exam, err := examParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.service.Status(c.Context(), exam)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "result status retrieved", status)
}

func (h *ResultHandler) publish(c *fiber.Ctx) error {
	exam, err := examParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.service.Publish(c.Context(), exam, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results declared", status)
}

func (h *ResultHandler) unpublish(c *fiber.Ctx) error {
	exam, err := examParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.service.Unpublish(c.Context(), exam, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results withdrawn", status)
}

func (h *ResultHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrNoMarksForExam):
		return utils.SendError(c, fiber.StatusNotFound, "no marks recorded for exam")
	case errors.Is(err, service.ErrResultsNotDeclared):
		return utils.SendError(c, fiber.StatusForbidden, "results not declared yet")
	case errors.Is(err, service.ErrResultsAlreadySet):
		return utils.SendError(c, fiber.StatusConflict, "results already in requested state")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ResultHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func examParam(c *fiber.Ctx) (string, error) {
	exam := strings.TrimSpace(c.Params("exam"))
	if exam == "" {
		return "", errors.New("exam is required")
	}
	return exam, nil
}

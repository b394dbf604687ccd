package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// SubmissionHandler wires submission HTTP routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterStudent attaches student-facing submission endpoints.
func (h *SubmissionHandler) RegisterStudent(router fiber.Router) {
	router.Post("/:assignmentID/submit", h.submit)
	router.Get("/mine", h.listMine)
}

// RegisterFaculty attaches faculty-facing submission endpoints.
func (h *SubmissionHandler) RegisterFaculty(router fiber.Router) {
	router.Get("/assignment/:assignmentID", h.listByAssignment)
	router.Get("/assignment/:assignmentID/stats", h.stats)
	router.Post("/:id/verify", h.verify)
	router.Post("/bulk-verify", h.bulkVerify)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	submission, err := h.service.Submit(c.Context(), assignmentID, userIDFromContext(c), file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", submission)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	submissions, err := h.service.ListMine(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.Context(), assignmentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) stats(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.Stats(c.Context(), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission stats retrieved", stats)
}

func (h *SubmissionHandler) verify(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Verify(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission verified", submission)
}

func (h *SubmissionHandler) bulkVerify(c *fiber.Ctx) error {
	var payload dto.SubmissionBulkVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BulkVerify(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions verified", result)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrAssignmentInactive):
		return utils.SendError(c, fiber.StatusConflict, "assignment is no longer active")
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "assignment already submitted")
	case errors.Is(err, service.ErrAlreadyVerified):
		return utils.SendError(c, fiber.StatusConflict, "submission already verified")
	case errors.Is(err, service.ErrFileRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "online submissions require a file")
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/dto"
	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/internal/utils"
)

// ComplaintHandler wires grievance HTTP routes.
type ComplaintHandler struct {
	service service.ComplaintService
	logger  zerolog.Logger
}

// NewComplaintHandler constructs the handler.
func NewComplaintHandler(service service.ComplaintService, logger zerolog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		service: service,
		logger:  logger.With().Str("component", "complaint_handler").Logger(),
	}
}

// RegisterStudent attaches student-facing complaint endpoints.
func (h *ComplaintHandler) RegisterStudent(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.listMine)
	router.Get("/:id", h.get)
}

// RegisterFaculty attaches faculty-facing complaint endpoints.
func (h *ComplaintHandler) RegisterFaculty(router fiber.Router) {
	router.Get("/pending", h.pending)
	router.Post("/:id/review", h.review)
}

func (h *ComplaintHandler) submit(c *fiber.Ctx) error {
	var payload dto.ComplaintCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	complaint, err := h.service.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "complaint submitted", complaint)
}

func (h *ComplaintHandler) listMine(c *fiber.Ctx) error {
	complaints, err := h.service.ListMine(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "complaints retrieved", complaints)
}

func (h *ComplaintHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	isStaff := userRoleFromContext(c) != "student"
	complaint, err := h.service.Get(c.Context(), id, userIDFromContext(c), isStaff)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "complaint retrieved", complaint)
}

func (h *ComplaintHandler) pending(c *fiber.Ctx) error {
	complaints, err := h.service.PendingQueue(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "pending complaints retrieved", complaints)
}

func (h *ComplaintHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ComplaintReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	complaint, err := h.service.Review(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "complaint reviewed", complaint)
}

func (h *ComplaintHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrComplaintNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "complaint not found")
	case errors.Is(err, service.ErrComplaintNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "complaint belongs to another student")
	case errors.Is(err, service.ErrComplaintAlreadyClosed):
		return utils.SendError(c, fiber.StatusConflict, "complaint has already been reviewed")
	case errors.Is(err, service.ErrComplaintEmptyAfterSani):
		return utils.SendError(c, fiber.StatusBadRequest, "complaint text empty after sanitization")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ComplaintHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

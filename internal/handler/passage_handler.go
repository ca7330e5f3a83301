package handler

import (
	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PassageHandler handles reading-passage HTTP requests
type PassageHandler struct {
	service service.PassageService
}

// NewPassageHandler creates a new PassageHandler instance
func NewPassageHandler(service service.PassageService) *PassageHandler {
	return &PassageHandler{service: service}
}

// CreatePassage godoc
// @Summary Create a passage
// @Description Creates a reading passage to hang question groups off
// @Tags passages
// @Accept json
// @Produce json
// @Param body body dto.PassageRequest true "Passage to create"
// @Success 201 {object} dto.PassageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /passages [post]
func (h *PassageHandler) CreatePassage(c *fiber.Ctx) error {
	var req dto.PassageRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.service.CreatePassage(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetPassage godoc
// @Summary Get a passage
// @Tags passages
// @Produce json
// @Param passageId path string true "Passage ID"
// @Success 200 {object} dto.PassageResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /passages/{passageId} [get]
func (h *PassageHandler) GetPassage(c *fiber.Ctx) error {
	resp, err := h.service.GetPassage(c.Context(), c.Params("passageId"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListPassages godoc
// @Summary List passages
// @Tags passages
// @Produce json
// @Success 200 {array} dto.PassageResponse
// @Security BearerAuth
// @Router /passages [get]
func (h *PassageHandler) ListPassages(c *fiber.Ctx) error {
	passages, err := h.service.ListPassages(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(passages)
}

// UpdatePassage godoc
// @Summary Update a passage
// @Tags passages
// @Accept json
// @Produce json
// @Param passageId path string true "Passage ID"
// @Param body body dto.PassageRequest true "New passage content"
// @Success 200 {object} dto.PassageResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /passages/{passageId} [put]
func (h *PassageHandler) UpdatePassage(c *fiber.Ctx) error {
	var req dto.PassageRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.service.UpdatePassage(c.Context(), c.Params("passageId"), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

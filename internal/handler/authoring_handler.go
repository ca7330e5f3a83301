package handler

import (
	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/logger"
	"bandbooster-authoring/internal/middleware"
	"bandbooster-authoring/internal/port"
	"bandbooster-authoring/internal/service"
	"bandbooster-authoring/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthoringHandler handles the question-group editor's HTTP requests:
// the stateless structure operations and the group lifecycle.
type AuthoringHandler struct {
	service   service.AuthoringService
	uploader  port.Uploader
	validator *validation.Validator
}

// NewAuthoringHandler creates a new AuthoringHandler instance
func NewAuthoringHandler(service service.AuthoringService, uploader port.Uploader) *AuthoringHandler {
	return &AuthoringHandler{
		service:   service,
		uploader:  uploader,
		validator: validation.NewValidator(),
	}
}

// CountBlanks godoc
// @Summary Count blanks in a document
// @Description Returns the blank count and generation readiness for the submitted document structure
// @Tags authoring
// @Accept json
// @Produce json
// @Param body body dto.StructureRequest true "Document structure"
// @Success 200 {object} dto.BlankCountResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /authoring/count-blanks [post]
func (h *AuthoringHandler) CountBlanks(c *fiber.Ctx) error {
	var req dto.StructureRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateStructureRequest(req.GroupType, req.Structure); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.CountBlanks(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Derive godoc
// @Summary Derive questions from a document
// @Description Generates one question per blank marker in reading order
// @Tags authoring
// @Accept json
// @Produce json
// @Param body body dto.StructureRequest true "Document structure"
// @Success 200 {object} dto.DeriveResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /authoring/derive [post]
func (h *AuthoringHandler) Derive(c *fiber.Ctx) error {
	var req dto.StructureRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateStructureRequest(req.GroupType, req.Structure); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Derive(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Preview godoc
// @Summary Preview a document
// @Description Renders the student-facing view of a document with numbered blanks
// @Tags authoring
// @Accept json
// @Produce json
// @Param body body dto.StructureRequest true "Document structure"
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /authoring/preview [post]
func (h *AuthoringHandler) Preview(c *fiber.Ctx) error {
	var req dto.StructureRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateStructureRequest(req.GroupType, req.Structure); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Preview(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateGroup godoc
// @Summary Create a question group
// @Description Opens a new question group on a passage; the group type is fixed at creation
// @Tags groups
// @Accept json
// @Produce json
// @Param body body dto.CreateGroupRequest true "Group to create"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /groups [post]
func (h *AuthoringHandler) CreateGroup(c *fiber.Ctx) error {
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.service.CreateGroup(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetGroup godoc
// @Summary Get a question group
// @Description Returns a group with its structure and persisted questions
// @Tags groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /groups/{groupId} [get]
func (h *AuthoringHandler) GetGroup(c *fiber.Ctx) error {
	resp, err := h.service.GetGroup(c.Context(), c.Params("groupId"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SaveGroup godoc
// @Summary Save a question group
// @Description Persists structure and questions together; refused while any question lacks an answer
// @Tags groups
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param body body dto.SaveGroupRequest true "Structure and questions to save"
// @Success 200 {object} dto.GroupResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /groups/{groupId} [put]
func (h *AuthoringHandler) SaveGroup(c *fiber.Ctx) error {
	var req dto.SaveGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	staffID, _ := c.Locals(middleware.StaffIDKey).(string)
	resp, err := h.service.SaveGroup(c.Context(), c.Params("groupId"), staffID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteGroup godoc
// @Summary Delete a question group
// @Description Soft-deletes a group and its questions
// @Tags groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /groups/{groupId} [delete]
func (h *AuthoringHandler) DeleteGroup(c *fiber.Ctx) error {
	if err := h.service.DeleteGroup(c.Context(), c.Params("groupId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Question group deleted"})
}

// ListRevisions godoc
// @Summary List save revisions of a group
// @Description Returns the group's structure snapshots, newest first
// @Tags groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {array} dto.RevisionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /groups/{groupId}/revisions [get]
func (h *AuthoringHandler) ListRevisions(c *fiber.Ctx) error {
	revisions, err := h.service.ListRevisions(c.Context(), c.Params("groupId"))
	if err != nil {
		return err
	}
	return c.JSON(revisions)
}

// ListGroupsByPassage godoc
// @Summary List question groups of a passage
// @Description Returns group summaries without structure payloads, optionally filtered by group type
// @Tags groups
// @Produce json
// @Param passageId path string true "Passage ID"
// @Param group_type query string false "Filter by group type"
// @Success 200 {array} dto.GroupSummaryResponse
// @Security BearerAuth
// @Router /passages/{passageId}/groups [get]
func (h *AuthoringHandler) ListGroupsByPassage(c *fiber.Ctx) error {
	summaries, err := h.service.ListGroupsByPassage(c.Context(), c.Params("passageId"))
	if err != nil {
		return err
	}

	if groupType, ok := c.Locals("validated_group_type").(string); ok && groupType != "" {
		filtered := make([]dto.GroupSummaryResponse, 0, len(summaries))
		for _, s := range summaries {
			if s.GroupType == groupType {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}
	return c.JSON(summaries)
}

// UploadImage godoc
// @Summary Upload a diagram image
// @Description Stores an image for diagram labeling and returns its public URL
// @Tags authoring
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /authoring/uploads [post]
func (h *AuthoringHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return domain.NewUploadFailedError("No image file in request", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewUploadFailedError("Failed to read uploaded file", err)
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Context(), fileHeader.Filename, file)
	if err != nil {
		return err
	}

	logger.Get().Info("Diagram image uploaded",
		zap.String("filename", fileHeader.Filename),
		zap.String("url", url))

	return c.JSON(dto.UploadResponse{URL: url})
}

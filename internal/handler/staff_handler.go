package handler

import (
	"errors"

	"bandbooster-authoring/internal/logger"
	"bandbooster-authoring/internal/middleware"
	"bandbooster-authoring/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StaffHandler handles staff-account HTTP requests
type StaffHandler struct {
	staffService service.StaffService
}

// NewStaffHandler creates a new StaffHandler instance
func NewStaffHandler(staffService service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// GetMyProfile godoc
// @Summary Get my staff profile
// @Description Returns the authenticated staff member's profile.
// @Tags staff
// @Produce json
// @Success 200 {object} dto.StaffProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /staff/me [get]
func (h *StaffHandler) GetMyProfile(c *fiber.Ctx) error {
	staffID, ok := c.Locals(middleware.StaffIDKey).(string)
	if !ok || staffID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "Staff ID not found in token", Status: fiber.StatusUnauthorized,
		})
	}

	profile, err := h.staffService.GetStaffProfile(c.Context(), staffID)
	if err != nil {
		if errors.Is(err, service.ErrStaffProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(middleware.ErrorResponse{
				Code: "STAFF_NOT_FOUND", Message: "Staff account not found", Status: fiber.StatusNotFound,
			})
		}
		logger.Get().Error("Failed to get staff profile", zap.Error(err), zap.String("staffID", staffID))
		return c.Status(fiber.StatusInternalServerError).JSON(middleware.ErrorResponse{
			Code: "INTERNAL_ERROR", Message: "Failed to load staff profile", Status: fiber.StatusInternalServerError,
		})
	}

	return c.JSON(profile)
}

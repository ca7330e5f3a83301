package middleware

import (
	"bandbooster-authoring/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam validates a ULID path parameter and stores it in locals
// under "validated_"+param.
func (vm *ValidationMiddleware) ValidateIDParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params(param)

		if errors := vm.validator.ValidateID(param, id); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals("validated_"+param, id)
		return c.Next()
	}
}

// ValidateGroupTypeQuery validates an optional group_type query parameter.
func (vm *ValidationMiddleware) ValidateGroupTypeQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		groupType := c.Query("group_type")
		if groupType == "" {
			return c.Next()
		}

		if errors := vm.validator.ValidateGroupType(groupType); len(errors) > 0 {
			return errors
		}

		c.Locals("validated_group_type", groupType)
		return c.Next()
	}
}

package middleware

import (
	"quizbot/internal/domain"
	"quizbot/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedKindKey = "validated_kind"
	ValidatedIDKey   = "validated_id"
)

// ValidationMiddleware validates path parameters shared by the session and history routes.
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{validator: validation.NewValidator()}
}

// ValidateKind checks :kind and stores the parsed domain.SessionKind.
func (vm *ValidationMiddleware) ValidateKind() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, errs := vm.validator.ValidateKind(c.Params("kind"))
		if len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedKindKey, kind)
		return c.Next()
	}
}

// ValidateID checks :id and stores it as int64.
func (vm *ValidationMiddleware) ValidateID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := vm.validator.ValidateID("id", c.Params("id"))
		if len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedIDKey, id)
		return c.Next()
	}
}

func Kind(c *fiber.Ctx) domain.SessionKind {
	kind, _ := c.Locals(ValidatedKindKey).(domain.SessionKind)
	return kind
}

func ID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(ValidatedIDKey).(int64)
	return id
}

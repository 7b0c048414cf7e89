package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrDependencyUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error a handler returns. Domain errors keep
// their message and code; anything unrecognised becomes an opaque 500.
// "detail" repeats the message for clients that read that key.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var domainErr *services.Error
		if errors.As(err, &domainErr) {
			code := statusFor(domainErr)
			if code == fiber.StatusServiceUnavailable {
				log.Warn("dependency unavailable", "path", c.Path(), "method", c.Method(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"error":   domainErr.Code,
				"message": domainErr.Error(),
				"detail":  domainErr.Error(),
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"status":  "error",
				"code":    fe.Code,
				"message": fe.Message,
				"detail":  fe.Message,
			})
		}

		log.Error("request failed", "path", c.Path(), "method", c.Method(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"code":    fiber.StatusInternalServerError,
			"message": "Internal server error",
			"detail":  "Internal server error",
		})
	}
}

func validationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"code":    fiber.StatusBadRequest,
			"error":   services.CodeInvalidInput,
			"message": "Invalid input",
			"detail":  "Invalid input",
		})
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"code":    fiber.StatusBadRequest,
		"error":   services.CodeInvalidInput,
		"message": "Validation failed",
		"detail":  "Validation failed",
		"errors":  fields,
	})
}

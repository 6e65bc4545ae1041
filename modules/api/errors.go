package api

import (
	"errors"

	domain "github.com/example/task-manager/domain/task"
	"github.com/gofiber/fiber/v2"
)

// Messages returned to clients.
const (
	msgTaskNotFound   = "Task not found"
	msgInvalidBody    = "Invalid request body"
	msgServerError    = "Server Error"
	msgRouteNotFound  = "Route not found"
	msgTaskIDRequired = "Task ID is required"
)

// writeError maps a domain error onto its HTTP status and error body.
func (m *APIModule) writeError(c *fiber.Ctx, op string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   verr.Error(),
			Details: verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: msgTaskNotFound,
		})
	default:
		m.logger.Error("Task request failed",
			"op", op,
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: msgServerError,
		})
	}
}

// errorHandler handles errors that escape route handlers, including
// unknown routes and recovered panics.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := msgServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		if code == fiber.StatusNotFound {
			message = msgRouteNotFound
		}
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error: message,
	})
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/onlineworkerske/backend/internal/middleware"
	"github.com/onlineworkerske/backend/internal/mpesa"
	"github.com/onlineworkerske/backend/internal/services"
)

// respondError translates service errors to HTTP statuses. Gateway failures
// pass their message through; anything unrecognized becomes a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)

	status := fiber.StatusInternalServerError
	message := "internal error"

	var gwErr *mpesa.GatewayError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrInvalidState):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrInsufficientBalance):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.As(err, &gwErr):
		status = fiber.StatusInternalServerError
		message = gwErr.Error()
	}

	return c.Status(status).JSON(dto.ErrorResponse{Message: message, RequestID: reqID})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: message})
}

package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorResponse is the failure half of the {data, error} envelope.
type ErrorResponse struct {
	Data  any       `json:"data"`
	Error ErrorBody `json:"error"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code, errorCode, message := classify(err)
	traceID := uuid.New().String()[:8]

	if code >= fiber.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", traceID, c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Data: nil,
		Error: ErrorBody{
			Code:    errorCode,
			Message: message,
			TraceID: traceID,
		},
	})
}

func classify(err error) (int, string, string) {
	var backendErr *domain.BackendError
	var fiberErr *fiber.Error

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return fiber.StatusUnauthorized, "NOT_AUTHENTICATED", "Not authenticated"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error()
	case errors.As(err, &backendErr):
		return fiber.StatusBadGateway, "BACKEND_ERROR", backendErr.Error()
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErrorCode(fiberErr.Code), fiberErr.Message
	}

	return fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}

func fiberErrorCode(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	}
	return "INTERNAL_ERROR"
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

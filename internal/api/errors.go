package api

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func NotFoundError(kind, name string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("%s %s not found", kind, name),
	}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: 401, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Status: 403, Message: msg}
}

func ImportFailedError() *AppError {
	return &AppError{
		Code:    "IMPORT_FAILED",
		Status:  500,
		Message: "Import failed, see server log",
	}
}

// ErrorHandler renders AppErrors as JSON and hides everything else behind
// INTERNAL_ERROR.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
	}

	if code == fiber.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		return c.Status(code).JSON(ErrorResponse{
			Error: &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
		})
	}
	return c.Status(code).JSON(ErrorResponse{
		Error: &AppError{Code: "HTTP_ERROR", Message: fiberErr.Message},
	})
}

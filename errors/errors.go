package errors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrUnauthenticated  = fmt.Errorf("authentication required")
	ErrChatAccessDenied = fmt.Errorf("not a participant of this chat")
	ErrForbidden        = fmt.Errorf("no rights for this operation")
	ErrMessageNotFound  = fmt.Errorf("message not found")
	ErrChatNotFound     = fmt.Errorf("chat not found")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrEmptyMessage     = fmt.Errorf("message has no text and no files")
	ErrFileTooLarge     = fmt.Errorf("file too large")
	ErrInvalidFileType  = fmt.Errorf("unsupported file type")
	ErrUploadDisabled   = fmt.Errorf("upload is not supported on this channel")
)

// Status maps a messenger error to the HTTP status the REST surface
// answers with. Unknown errors are treated as transient store failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrChatAccessDenied), errors.Is(err, ErrForbidden), errors.Is(err, ErrUploadDisabled):
		return fiber.StatusForbidden
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrChatNotFound), errors.Is(err, ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrInvalidFileType):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	default:
		return fiber.StatusInternalServerError
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

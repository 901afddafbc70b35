package errors

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrUnauthenticated, fiber.StatusUnauthorized},
		{ErrChatAccessDenied, fiber.StatusForbidden},
		{ErrForbidden, fiber.StatusForbidden},
		{ErrUploadDisabled, fiber.StatusForbidden},
		{ErrMessageNotFound, fiber.StatusNotFound},
		{ErrChatNotFound, fiber.StatusNotFound},
		{ErrUserNotFound, fiber.StatusNotFound},
		{ErrEmptyMessage, fiber.StatusBadRequest},
		{ErrInvalidFileType, fiber.StatusBadRequest},
		{ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
		{fmt.Errorf("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		require.Equal(t, tc.status, Status(tc.err), "for %v", tc.err)
	}
}

func TestStatusSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading chat: %w", ErrChatNotFound)
	require.Equal(t, fiber.StatusNotFound, Status(wrapped))
	require.True(t, Is(wrapped, ErrChatNotFound))
}

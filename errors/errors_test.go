package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrTransport_FallbackMessage(t *testing.T) {
	err := ErrTransport(http.StatusInternalServerError, "  ")
	assert.Equal(t, FallbackMessage, err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
	assert.True(t, IsTransport(err))
	assert.False(t, IsNetwork(err))
}

func TestUserMessage_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("update meeting: %w", ErrTransport(http.StatusBadRequest, "Invalid id"))
	assert.Equal(t, "Invalid id", UserMessage(wrapped))
	assert.Equal(t, http.StatusBadRequest, Status(wrapped))
	assert.Equal(t, FallbackMessage, UserMessage(stdErrors.New("boom")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestErrValidation_Details(t *testing.T) {
	err := ErrValidation("invalid form", map[string]string{"email": "Email is required"})
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Email is required", err.Details["email"])
	assert.Equal(t, "[VALIDATION] invalid form", err.Error())
}

func TestErrNetwork_Unwrap(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := ErrNetwork(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsNetwork(err))
}

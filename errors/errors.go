package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// FallbackMessage is shown when the server did not provide a usable message
const FallbackMessage = "Something went wrong. Please try again."

// AppError is the error type shared by the data-access layer and the portal
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause
func (e *AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// ErrValidation is a local, field-level failure. It never reaches the network.
func ErrValidation(message string, fields map[string]string) *AppError {
	e := &AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_VALIDATION,
		Message:   message,
		Timestamp: time.Now(),
	}
	for k, v := range fields {
		e.WithDetail(k, v)
	}
	return e
}

// ErrTransport means the server answered with a non-2xx status.
// An empty message is replaced by FallbackMessage.
func ErrTransport(status int, message string) *AppError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = FallbackMessage
	}
	return &AppError{
		HTTPCode:  status,
		Code:      ErrorCode_TRANSPORT,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ErrNetwork means no response was obtained
func ErrNetwork(err error) *AppError {
	return &AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadGateway,
		Code:      ErrorCode_NETWORK,
		Message:   FallbackMessage,
		Timestamp: time.Now(),
	}
}

// ErrInternal wraps a local failure. Users only see the fallback message.
func ErrInternal(err error) *AppError {
	return &AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   FallbackMessage,
		Timestamp: time.Now(),
	}
}

func ErrNotFound(resource string) *AppError {
	return &AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOT_FOUND,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now(),
	}
}

// As extracts an *AppError from err
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func hasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func IsValidation(err error) bool { return hasCode(err, ErrorCode_VALIDATION) }

func IsTransport(err error) bool { return hasCode(err, ErrorCode_TRANSPORT) }

func IsNetwork(err error) bool { return hasCode(err, ErrorCode_NETWORK) }

// UserMessage returns the text a view should display for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return FallbackMessage
}

// Status returns the HTTP status carried by err, or 0 when unknown
func Status(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPCode
	}
	return 0
}

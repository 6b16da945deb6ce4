package entities

import "errors"

// Domain errors
var (
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrMissingToken      = errors.New("login response did not include a token")
	ErrMissingMeetingID  = errors.New("meeting id is required")
	ErrUnexpectedPayload = errors.New("unexpected response payload")
)

package auth

import (
	"context"

	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
)

// Service defines the interface for the authentication use case
type Service interface {
	// Register creates an account and returns the server's message
	Register(ctx context.Context, creds entities.Credentials) (string, error)

	// Login signs in a regular user
	Login(ctx context.Context, creds entities.Credentials) (session.Snapshot, error)

	// AdminLogin signs in through the admin endpoint. The session becomes
	// AuthenticatedAdmin only when the returned profile says so.
	AdminLogin(ctx context.Context, creds entities.Credentials) (session.Snapshot, error)

	// Logout tells the server and always clears the local session
	Logout(ctx context.Context) error
}

// Writer performs mutations through the query cache
type Writer interface {
	Write(ctx context.Context, name string, req api.Request) (any, error)
}

// Validator checks request structs
type Validator interface {
	Validate(i interface{}) error
}

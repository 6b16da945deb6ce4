package auth

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// AuthService handles sign-in flows against the meeting API
type AuthService struct {
	writer    Writer
	sessions  *session.Store
	validator Validator
	logger    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(writer Writer, sessions *session.Store, validator Validator, log *zap.Logger) *AuthService {
	return &AuthService{
		writer:    writer,
		sessions:  sessions,
		validator: validator,
		logger:    logger.OrNop(log),
	}
}

var _ Service = (*AuthService)(nil)

// Register creates an account
func (s *AuthService) Register(ctx context.Context, creds entities.Credentials) (string, error) {
	if err := s.validator.Validate(creds); err != nil {
		return "", err
	}

	data, err := s.writer.Write(ctx, api.Register, api.Request{Body: creds})
	if err != nil {
		return "", err
	}
	resp, ok := data.(entities.MessageResponse)
	if !ok {
		return "", unexpected(api.Register, data)
	}
	return resp.Message, nil
}

// Login signs in a regular user
func (s *AuthService) Login(ctx context.Context, creds entities.Credentials) (session.Snapshot, error) {
	if err := s.validator.Validate(creds); err != nil {
		return session.Snapshot{}, err
	}

	data, err := s.writer.Write(ctx, api.Login, api.Request{Body: creds})
	if err != nil {
		return session.Snapshot{}, err
	}
	resp, ok := data.(entities.LoginResponse)
	if !ok {
		return session.Snapshot{}, unexpected(api.Login, data)
	}
	if err := s.sessions.SetUser(ctx, resp.Token); err != nil {
		return session.Snapshot{}, err
	}

	s.logger.Info("user signed in")
	return s.sessions.Snapshot(), nil
}

// AdminLogin signs in through the admin endpoint
func (s *AuthService) AdminLogin(ctx context.Context, creds entities.Credentials) (session.Snapshot, error) {
	if err := s.validator.Validate(creds); err != nil {
		return session.Snapshot{}, err
	}

	data, err := s.writer.Write(ctx, api.AdminLogin, api.Request{Body: creds})
	if err != nil {
		return session.Snapshot{}, err
	}
	resp, ok := data.(entities.AdminLoginResponse)
	if !ok {
		return session.Snapshot{}, unexpected(api.AdminLogin, data)
	}
	// Without both a token and a profile the server did not sign anyone in.
	if resp.Token == "" || resp.User == nil {
		s.logger.Warn("admin login returned no session", zap.Bool("has_token", resp.Token != ""))
		return session.Snapshot{}, apperrors.ErrTransport(http.StatusUnauthorized, resp.Message)
	}

	if resp.User.IsAdmin {
		err = s.sessions.SetAdmin(ctx, resp.Token, resp.User.ID)
	} else {
		err = s.sessions.SetUser(ctx, resp.Token)
	}
	if err != nil {
		return session.Snapshot{}, err
	}

	snap := s.sessions.Snapshot()
	s.logger.Info("admin login completed", zap.Stringer("state", snap.State))
	return snap, nil
}

// Logout tells the server and always clears the local session. A failed
// remote call is logged, not returned.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.writer.Write(ctx, api.Logout, api.Request{}); err != nil {
		s.logger.Warn("remote logout failed, clearing local session anyway", zap.Error(err))
	}
	return s.sessions.Clear(ctx)
}

func unexpected(endpoint string, data any) error {
	return apperrors.ErrInternal(fmt.Errorf("%w from %s: %T", entities.ErrUnexpectedPayload, endpoint, data))
}

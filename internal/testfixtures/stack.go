package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/transport"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/config"
	"github.com/johnquangdev/meeting-portal/pkg/validator"
)

// Stack wires the client layers against a FakeAPI
type Stack struct {
	API       *FakeAPI
	Backend   *storage.MemoryStore
	Sessions  *session.Store
	Client    *transport.Client
	Cache     *cache.QueryCache
	Validator *validator.CustomValidator
}

// NewStack builds an anonymous client stack talking to a fresh FakeAPI
func NewStack(t testing.TB, opts ...Option) *Stack {
	t.Helper()

	log := zaptest.NewLogger(t)
	fake := NewFakeAPI(t, opts...)
	backend := storage.NewMemoryStore()

	sessions, err := session.NewStore(context.Background(), backend, log)
	require.NoError(t, err)

	client, err := transport.NewClient(config.APIConfig{
		BaseURL:    fake.BaseURL(),
		AuthScheme: transport.AuthBearer,
		Timeout:    5 * time.Second,
	}, sessions, log)
	require.NoError(t, err)

	qc := cache.New(api.DefaultRegistry(), client, time.Minute, log)
	t.Cleanup(qc.Close)

	return &Stack{
		API:       fake,
		Backend:   backend,
		Sessions:  sessions,
		Client:    client,
		Cache:     qc,
		Validator: validator.New(),
	}
}

// SignInAdmin stores an admin token the fake accepts
func (s *Stack) SignInAdmin(t testing.TB) {
	t.Helper()
	id := s.API.AddUser("admin@example.com", "secret", true)
	require.NoError(t, s.Sessions.SetAdmin(context.Background(), s.API.IssueToken(id, true), id))
}

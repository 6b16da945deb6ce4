package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-portal/pkg/jwt"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// Snapshot is an immutable view of the session
type Snapshot struct {
	State   entities.SessionState
	Token   string
	UserID  string
	IsAdmin bool
}

func snapshotOf(s entities.Session) Snapshot {
	return Snapshot{State: s.State(), Token: s.Token, UserID: s.UserID, IsAdmin: s.IsAdmin}
}

// Store is the process-wide session. Every reader observes the same value;
// listeners are told about each transition.
type Store struct {
	mu      sync.RWMutex
	current entities.Session
	backend storage.Store
	logger  *zap.Logger

	listenersMu sync.Mutex
	listeners   map[int]func(Snapshot)
	nextID      int
}

// Option customises a Store
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the time used to judge token expiry
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// NewStore loads the persisted session. A stored JWT that has already
// expired is cleared instead of being restored.
func NewStore(ctx context.Context, backend storage.Store, log *zap.Logger, opts ...Option) (*Store, error) {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		backend:   backend,
		logger:    logger.OrNop(log),
		listeners: make(map[int]func(Snapshot)),
	}

	token, _, err := backend.Get(ctx, storage.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load session token: %w", err)
	}
	if token == "" {
		return s, nil
	}

	if jwt.Expired(token, o.now()) {
		s.logger.Info("stored session token expired, clearing")
		if err := backend.Delete(ctx, storage.SessionKeys...); err != nil {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return s, nil
	}

	userID, _, err := backend.Get(ctx, storage.KeyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	rawAdmin, _, err := backend.Get(ctx, storage.KeyIsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to load session flag: %w", err)
	}
	isAdmin, _ := strconv.ParseBool(rawAdmin)

	s.current = entities.Session{Token: token, UserID: userID, IsAdmin: isAdmin}
	s.logger.Info("session restored", zap.Stringer("state", s.current.State()))
	return s, nil
}

// Snapshot returns the current session
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotOf(s.current)
}

// State returns the current session state
func (s *Store) State() entities.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.State()
}

// Token returns the session token, "" when anonymous
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// IsAdmin reports whether the session holds administrator privilege
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token != "" && s.current.IsAdmin
}

// SetUser stores a regular user token
func (s *Store) SetUser(ctx context.Context, token string) error {
	return s.establish(ctx, entities.Session{Token: token})
}

// SetAdmin stores an administrator token together with its profile id
func (s *Store) SetAdmin(ctx context.Context, token, userID string) error {
	return s.establish(ctx, entities.Session{Token: token, UserID: userID, IsAdmin: true})
}

// establish persists next and then swaps it in. If any key fails to persist
// the stored keys are put back to match the current in-memory session.
func (s *Store) establish(ctx context.Context, next entities.Session) error {
	if next.Token == "" {
		return apperrors.ErrInternal(entities.ErrMissingToken)
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.RLock()
		prev := s.current
		s.mu.RUnlock()
		s.rollback(ctx, prev)
		return apperrors.ErrInternal(err)
	}
	s.replace(next)
	return nil
}

func (s *Store) persist(ctx context.Context, sess entities.Session) error {
	if err := s.backend.Set(ctx, storage.KeyToken, sess.Token); err != nil {
		return err
	}
	if !sess.IsAdmin {
		return s.backend.Delete(ctx, storage.KeyUserID, storage.KeyIsAdmin)
	}
	if err := s.backend.Set(ctx, storage.KeyUserID, sess.UserID); err != nil {
		return err
	}
	return s.backend.Set(ctx, storage.KeyIsAdmin, "true")
}

func (s *Store) rollback(ctx context.Context, prev entities.Session) {
	err := s.backend.Delete(ctx, storage.SessionKeys...)
	if err == nil && prev.Token != "" {
		err = s.persist(ctx, prev)
	}
	if err != nil {
		s.logger.Error("failed to roll back persisted session", zap.Error(err))
	}
}

// Clear returns the session to Anonymous. The in-memory session is cleared
// even when removing the persisted keys fails; that error is still returned.
func (s *Store) Clear(ctx context.Context) error {
	s.replace(entities.Session{})
	if err := s.backend.Delete(ctx, storage.SessionKeys...); err != nil {
		s.logger.Error("failed to clear persisted session", zap.Error(err))
		return apperrors.ErrInternal(err)
	}
	return nil
}

// Subscribe registers fn for every later transition. Listeners run on the
// goroutine that changed the session and must not block.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) replace(next entities.Session) {
	s.mu.Lock()
	prev := s.current.State()
	s.current = next
	snap := snapshotOf(next)
	s.mu.Unlock()

	s.logger.Info("session changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", snap.State),
	)

	s.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

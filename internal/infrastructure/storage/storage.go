package storage

import (
	"context"
	"fmt"

	"github.com/johnquangdev/meeting-portal/pkg/config"
)

// Keys persisted for the session
const (
	KeyToken   = "token"
	KeyUserID  = "userId"
	KeyIsAdmin = "isAdmin"
)

// SessionKeys lists every key the session owns
var SessionKeys = []string{KeyToken, KeyUserID, KeyIsAdmin}

// Store is durable string key-value storage. Get reports ok=false for a
// missing key; Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Open builds the backend selected by SESSION_BACKEND. The returned close
// function releases any connection the backend holds.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Backend {
	case "memory":
		return NewMemoryStore(), noop, nil
	case "redis":
		rdb, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(rdb, cfg.Session.RedisPrefix), rdb.Close, nil
	case "file", "":
		fs, err := NewFileStore(cfg.Session.File)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

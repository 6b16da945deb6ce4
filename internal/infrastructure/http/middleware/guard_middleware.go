package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// SessionContextKey is the echo context key holding the session.Snapshot
// seen by the guard
const SessionContextKey = "session"

// SessionSource exposes the current session
type SessionSource interface {
	Snapshot() session.Snapshot
}

// EchoGuard returns an Echo middleware that evaluates the route guard before
// any handler runs and stores the session snapshot in the context.
func EchoGuard(sessions SessionSource, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := sessions.Snapshot()
			c.Set(SessionContextKey, snap)

			path := c.Request().URL.Path
			decision := session.Guard(snap.State, path)
			if decision.Allowed {
				return next(c)
			}

			log.Info("route guard redirect",
				zap.String("path", path),
				zap.Stringer("state", snap.State),
				zap.String("redirect_to", decision.RedirectTo),
			)
			return c.Redirect(http.StatusFound, decision.RedirectTo)
		}
	}
}

// GetSession retrieves the snapshot stored by EchoGuard
func GetSession(c echo.Context) session.Snapshot {
	snap, ok := c.Get(SessionContextKey).(session.Snapshot)
	if !ok {
		return session.Snapshot{State: entities.SessionAnonymous}
	}
	return snap
}

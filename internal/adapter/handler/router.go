package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-portal/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/config"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// CacheInspector reports the live cache entries
type CacheInspector interface {
	Entries() []cache.EntryInfo
}

// StateSource exposes the session state
type StateSource interface {
	Snapshot() session.Snapshot
}

// Router holds all handlers
type Router struct {
	cfg       *config.Config
	pages     *Pages
	dashboard *Dashboard
	sessions  StateSource
	cache     CacheInspector
	guard     echo.MiddlewareFunc
	logger    *zap.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	pages *Pages,
	dashboard *Dashboard,
	sessions StateSource,
	cache CacheInspector,
	guard echo.MiddlewareFunc,
	log *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		pages:     pages,
		dashboard: dashboard,
		sessions:  sessions,
		cache:     cache,
		guard:     guard,
		logger:    logger.OrNop(log),
	}
}

// Setup configures all portal routes. The guard is router-level middleware, so
// it also runs ahead of the not-found handler for unknown protected paths.
func (rt *Router) Setup(e *echo.Echo) error {
	templates, err := NewTemplates()
	if err != nil {
		return err
	}
	e.Renderer = templates
	e.HTTPErrorHandler = rt.errorHandler

	e.Use(rt.guard)

	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	rt.setupPublicRoutes(e)
	rt.setupDashboardRoutes(e)
	return nil
}

func (rt *Router) setupPublicRoutes(e *echo.Echo) {
	e.GET("/", rt.pages.Home)
	e.GET("/meeting", rt.pages.MeetingForm)
	e.POST("/meeting", rt.pages.SubmitMeeting)
	e.GET("/login", rt.pages.LoginForm)
	e.POST("/login", rt.pages.Login)
	e.GET("/register", rt.pages.RegisterForm)
	e.POST("/register", rt.pages.Register)
	e.GET("/admin/login", rt.pages.AdminLoginForm)
	e.POST("/admin/login", rt.pages.AdminLogin)
	e.POST("/logout", rt.pages.Logout)
}

func (rt *Router) setupDashboardRoutes(e *echo.Echo) {
	e.GET("/dashboard", rt.dashboard.List)
	e.GET("/dashboard/stream", rt.dashboard.Stream)
	e.GET("/dashboard/meetings/:id", rt.dashboard.Detail)
	e.POST("/dashboard/meetings/:id", rt.dashboard.Schedule)
	e.POST("/dashboard/meetings/:id/complete", rt.dashboard.Complete)

	// Older links used /adminDashboard.
	toDashboard := func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/dashboard")
	}
	e.GET("/adminDashboard", toDashboard)
	e.GET("/adminDashboard/*", toDashboard)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"environment":   rt.cfg.Server.Environment,
		"session":       rt.sessions.Snapshot().State.String(),
		"cache_entries": len(rt.cache.Entries()),
	})
}

// errorHandler renders the 404 and error views for anything a handler did
// not render itself
func (rt *Router) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	name := viewError
	title := "Error"
	if code == http.StatusNotFound {
		name = viewNotFound
		title = "Not found"
	} else {
		rt.logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", code),
			zap.Error(err),
		)
	}

	v := newView(c, title)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.Render(code, name, v)
	}
	if err != nil {
		rt.logger.Error("failed to render error view", zap.Error(err))
	}
}

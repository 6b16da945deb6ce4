package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	pkgvalidator "github.com/johnquangdev/meeting-portal/pkg/validator"

	"github.com/johnquangdev/meeting-portal/internal/adapter/handler"
	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/cache"
	httpmw "github.com/johnquangdev/meeting-portal/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/transport"
	"github.com/johnquangdev/meeting-portal/internal/usecase/auth"
	"github.com/johnquangdev/meeting-portal/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/config"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// Initialize session storage
	zlog.Info("📦 Opening session storage...", zap.String("backend", cfg.Session.Backend))
	backend, closeBackend, err := storage.Open(ctx, cfg)
	if err != nil {
		zlog.Fatal("Failed to open session storage", zap.Error(err))
	}
	defer closeBackend()

	sessions, err := session.NewStore(ctx, backend, zlog.Named("session"))
	if err != nil {
		zlog.Fatal("Failed to load session", zap.Error(err))
	}

	// Initialize API client and query cache
	zlog.Info("🔌 Initializing API client...",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("auth_scheme", cfg.API.AuthScheme),
	)
	client, err := transport.NewClient(cfg.API, sessions, zlog.Named("transport"))
	if err != nil {
		zlog.Fatal("Failed to initialize API client", zap.Error(err))
	}

	queryCache := cache.New(api.DefaultRegistry(), client, cfg.Cache.KeepUnusedFor, zlog.Named("cache"))
	defer queryCache.Close()

	// Initialize services
	validator := pkgvalidator.New()
	authService := auth.NewAuthService(queryCache, sessions, validator, zlog.Named("auth"))
	meetingService := meeting.NewMeetingService(queryCache, validator, zlog.Named("meeting"))

	// Initialize Echo instance
	e := echo.New()
	e.Validator = validator
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// Setup router with handlers
	zlog.Info("🛣️  Setting up routes...")
	router := handler.NewRouter(
		cfg,
		handler.NewPages(authService, meetingService, zlog.Named("pages")),
		handler.NewDashboard(meetingService, sessions, zlog.Named("dashboard")),
		sessions,
		queryCache,
		httpmw.EchoGuard(sessions, zlog.Named("guard")),
		zlog,
	)
	if err := router.Setup(e); err != nil {
		zlog.Fatal("Failed to set up routes", zap.Error(err))
	}

	// Start server
	go func() {
		addr := cfg.GetListenAddr()
		zlog.Info("🚀 Starting portal",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.Stringer("session", sessions.State()),
		)

		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zlog.Info("🛑 Shutting down portal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	zlog.Info("✅ Portal stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"board/internal/board"
	"board/internal/config"
	"board/internal/database"
	"board/internal/engine"
	"board/internal/handlers"
	"board/internal/logging"
	"board/internal/middleware"
	"board/internal/utils"
	"board/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the relational store
	store, err := database.NewSQLStore(cfg.Database.Driver(), cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	if err := store.InitializeTables(ctx); err != nil {
		return fmt.Errorf("failed to initialize tables: %w", err)
	}

	metrics := utils.NewMetricsCollector()

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	service := board.NewService(store, hub)

	// The audit log is optional; the board runs without MongoDB
	var audit *database.AuditLog
	if cfg.Audit.Enabled() {
		audit, err = database.NewAuditLog(cfg.Audit.MongoURI, cfg.Audit.Database)
		if err != nil {
			return err
		}
		defer audit.Close(context.Background())
		service.AddSink(audit)
	}

	if cfg.BootstrapModerator != "" {
		if err := service.EnsureModerator(ctx, cfg.BootstrapModerator); err != nil {
			return fmt.Errorf("failed to promote bootstrap moderator: %w", err)
		}
	}

	// Initialize actor system and the view tracker
	system := actor.NewActorSystem()
	viewEngine := engine.NewEngine(system, cfg.ViewWindow, metrics)
	defer viewEngine.Stop()

	auth := &middleware.Authenticator{
		Tokens: middleware.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Users:  service,
	}

	server := handlers.NewServer(service, viewEngine, auth, hub, metrics)
	server.Audit = audit
	server.CORS = middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	server.RequestTimeout = cfg.Server.RequestTimeout

	routes := server.Routes()
	if !cfg.Server.MetricsEnabled {
		routes = withoutMetrics(routes)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", httpServer.Addr, "db", cfg.Database.Type)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// withoutMetrics hides /metrics when METRICS_ENABLED=false.
func withoutMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

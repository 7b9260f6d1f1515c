// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jotter/internal/api"
	"github.com/starford/jotter/internal/auth"
	"github.com/starford/jotter/internal/configwatch"
	"github.com/starford/jotter/internal/store"
	"github.com/starford/jotter/internal/web"
	pkgconfig "github.com/starford/jotter/pkg/config"
)

// NewLogger returns the structured JSON logger used by every command. The
// MCP command logs to stderr because stdout carries the protocol.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.level == nil {
		app.level = new(slog.LevelVar)
	}

	cfg := app.config
	app.level.Set(cfg.App.LogLevel)

	logger := NewLogger(os.Stdout, app.level)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, err := cfg.Database.Open()
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	handler, err := NewHandler(cfg, st)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Config watcher: live log level.
	if app.configPath != "" {
		g.Go(func() error {
			err := configwatch.Watch(gCtx, app.configPath, logger, func() error {
				next, err := pkgconfig.Reload(app.configPath, NewDefaultConfig)
				if err != nil {
					return err
				}
				if next.App.LogLevel != app.level.Level() {
					logger.Info("log level changed", slog.String("log_level", next.App.LogLevel.String()))
					app.level.Set(next.App.LogLevel)
				}
				return nil
			})
			if err != nil {
				logger.Warn("config watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// NewHandler builds the root router: health checks, the JSON API under
// /api and the browser pages everywhere else.
func NewHandler(cfg *Config, st *store.Store) (http.Handler, error) {
	accounts := cfg.Auth.Accounts(st)

	pages, err := web.NewRouter(accounts, st, web.WithSecureCookies(cfg.Auth.CookieSecure))
	if err != nil {
		return nil, fmt.Errorf("init web: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := st.Ping(); err != nil {
			slog.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", api.NewRouter(accounts, st, time.Now))
	r.Mount("/", pages)

	return r, nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

// OpenAccounts opens the configured store for a one-shot command and
// returns it with the account service. The caller closes the store.
func OpenAccounts(cfg *Config) (*store.Store, *auth.Accounts, error) {
	st, err := cfg.Database.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	return st, cfg.Auth.Accounts(st), nil
}

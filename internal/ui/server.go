// Package ui serves the flowchart editor over HTTP.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/ui/features/editor"
	"github.com/leapstack-labs/leapflow/internal/ui/notifier"
	"github.com/leapstack-labs/leapflow/internal/ui/router"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"golang.org/x/sync/errgroup"
)

const watchDebounce = 100 * time.Millisecond

// Server is the editor server.
type Server struct {
	state        *editor.State
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	file         string
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the editor server.
type Config struct {
	Workspace     *workspace.Workspace
	Port          int
	Watch         bool
	// File is the document the workspace was loaded from. With Watch set,
	// edits to it on disk are re-imported.
	File          string
	SessionSecret string
	Dev           bool
	Logger        *slog.Logger
}

// NewServer creates a new editor server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	notify := notifier.New()
	return &Server{
		state:        editor.NewState(cfg.Workspace, notify),
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch && cfg.File != "",
		file:         cfg.File,
		dev:          cfg.Dev,
		logger:       logger,
		notifier:     notify,
	}
}

// Handler returns the router with middleware and every route mounted.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	if err := router.SetupRoutes(r, s.state, s.sessionStore, s.notifier, s.logger, s.dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting editor server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFile(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down editor server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// State returns the shared workspace state.
func (s *Server) State() *editor.State {
	return s.state
}

// watchFile re-imports the document whenever it changes on disk. The
// directory is watched rather than the file because editors and
// document.WriteFile replace files by rename.
func (s *Server) watchFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.file)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch document", "file", s.file, "error", err)
		return nil
	}

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				if err := s.Reload(); err != nil {
					s.logger.Error("reload failed", "file", s.file, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// Reload re-imports the watched document. An invalid file leaves the
// workspace untouched.
func (s *Server) Reload() error {
	doc, err := document.ReadFile(s.file)
	if err != nil {
		return err
	}
	s.logger.Debug("document changed, re-importing", "file", s.file)
	return s.state.Do(func(ws *workspace.Workspace) error {
		return ws.Import(doc)
	})
}

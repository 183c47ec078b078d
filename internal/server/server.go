// Package server wires the stores, services, and RPC handler together
// and runs the HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/queueoverflow/queueoverflow/internal/auth"
	"github.com/queueoverflow/queueoverflow/internal/config"
	"github.com/queueoverflow/queueoverflow/internal/handler"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/middleware"
	"github.com/queueoverflow/queueoverflow/internal/service"
	"github.com/queueoverflow/queueoverflow/internal/session"
)

// Server owns the router and the durable store. The store is closed
// during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	store  *kvstore.SQLiteStore
}

// New assembles the full dependency chain: durable sqlite store plus an
// in-memory scoped store, the session manager, every entity service, and
// the RPC dispatcher. All wiring happens here so main stays minimal.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := kvstore.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.TokenSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	scoped := kvstore.NewMemory()
	sessions := session.NewManager(s.store, scoped, tokens)
	if err := sessions.Restore(context.Background()); err != nil {
		s.logger.Warn("restoring session", slog.String("error", err.Error()))
	}

	data := service.NewData(s.store)
	passwords := auth.NewPasswordService()

	tags := service.NewTagService(data, s.logger)
	svcs := handler.Services{
		Users:     service.NewUserService(data, passwords, sessions, s.logger),
		Questions: service.NewQuestionService(data, tags, s.logger),
		Answers:   service.NewAnswerService(data, s.logger),
		Votes:     service.NewVoteService(data, s.logger),
		Tags:      tags,
		Comments:  service.NewCommentService(data, s.logger),
		Bookmarks: service.NewBookmarkService(data, s.logger),
		Prefs:     service.NewPrefsService(data),
		Sessions:  sessions,
	}

	rpc := handler.NewRPC(svcs, s.logger)
	s.router.Route("/api", func(r chi.Router) {
		rpc.Routes(r)
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests for up to 30s,
// and close the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.cfg.Addr),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

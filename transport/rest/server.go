package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
)

type roomReader interface {
	GetRoom(roomID string) (usecase.RoomSummary, error)
	RoomCount() int
}

type matchReader interface {
	GetByID(ctx context.Context, id string) (*entity.MatchResult, error)
}

type Server struct {
	logger  *slog.Logger
	rooms   roomReader
	matches matchReader
	router  *chi.Mux
}

// New builds the HTTP API. matches may be nil when no archive is configured.
func New(logger *slog.Logger, rooms roomReader, matches matchReader) *Server {
	server := &Server{
		logger:  logger,
		rooms:   rooms,
		matches: matches,
		router:  chi.NewRouter(),
	}

	server.router.Use(middleware.RequestID)
	server.router.Use(middleware.RealIP)
	server.router.Use(middleware.Recoverer)
	server.router.Use(middleware.Timeout(10 * time.Second))

	server.router.Get("/ping", server.ping)
	server.router.Get("/health", server.health)
	server.router.Get("/rooms/{roomID}", server.getRoom)
	server.router.Get("/matches/{matchID}", server.getMatch)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Package server exposes the game over JSON HTTP endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	timeout         time.Duration = 30 * time.Second
	shutdownTimeout time.Duration = 5 * time.Second
	maxBodyBytes    int64         = 1 << 20
)

// Game is the game service behind the endpoints.
type Game interface {
	Start(ctx context.Context) (*game.Response, error)
	Guess(ctx context.Context, req game.GuessRequest) (*game.Response, error)
	Plays(ctx context.Context, sessionID string) ([]store.Play, error)
	SearchArtists(ctx context.Context, names []string) ([]store.Artist, error)
	BulkCreateArtists(ctx context.Context, artists []store.Artist) (int64, error)
	ListArtists(ctx context.Context) ([]store.Artist, error)
}

// Config holds server settings.
type Config struct {
	Bind    string
	Port    int
	Prefix  string
	Profile bool
	TLSCert string
	TLSKey  string
	Version string

	// WriteTimeout bounds writing a response. Zero means the default.
	WriteTimeout time.Duration
}

func (c Config) writeTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	return timeout
}

func (c Config) scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

// Server serves the game API.
type Server struct {
	cfg    Config
	game   Game
	logger zerolog.Logger
	router *httprouter.Router
}

// New creates a Server and registers its routes.
func New(cfg Config, g Game, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		game:   g,
		logger: logger.With().Str("component", "server").Logger(),
		router: httprouter.New(),
	}

	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		s.logger.Error().
			Interface("panic", i).
			Str("path", r.URL.Path).
			Msg("Recovered from panic")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "An error has occurred. Please try again."})
	}
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"})
	})
	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	})

	s.routes()

	return s
}

func (s *Server) routes() {
	prefix := s.cfg.Prefix

	s.router.POST(prefix+"/play", s.servePlay)
	s.router.POST(prefix+"/searchArtistsByNames", s.serveSearchArtists)
	s.router.POST(prefix+"/bulkCreateArtists", s.serveBulkCreate)
	s.router.GET(prefix+"/getArtists", s.serveListArtists)
	s.router.GET(prefix+"/sessions/:id/plays", s.servePlays)

	s.router.GET(prefix+"/healthz", s.serveHealthCheck)
	s.router.GET(prefix+"/version", s.serveVersion)

	if s.cfg.Profile {
		registerProfileHandlers(prefix, s.router)
	}
}

// Handler returns the root handler, with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port)),
		Handler:           s.Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      s.cfg.writeTimeout(),
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("address", fmt.Sprintf("%s://%s%s/", s.cfg.scheme(), srv.Addr, s.cfg.Prefix)).
			Msg("Listening")

		var err error
		if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
			err = srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

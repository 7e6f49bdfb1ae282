// Package health serves the liveness endpoint the hosting platform polls.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/intakebot/core/logger"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 8080

// Handler answers GET / with 200 "OK". Every other path or method is 404.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.MethodNotAllowed(http.NotFound)
	r.NotFound(http.NotFound)
	return r
}

// Server is the liveness listener. It runs independently of the bot.
type Server struct {
	srv *http.Server
}

// NewServer binds the handler to 0.0.0.0:port.
func NewServer(port int) *Server {
	if port <= 0 {
		port = DefaultPort
	}
	return &Server{srv: &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", strconv.Itoa(port)),
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger.Health.Info("liveness listening",
		slog.String("event", "health.listen"),
		slog.String("listen", ln.Addr().String()),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	logger.Health.Info("liveness stopped", slog.String("event", "health.stop"))
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return err
}

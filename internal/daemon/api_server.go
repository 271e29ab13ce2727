package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"dirchurn/internal/api"
	"dirchurn/internal/config"
	"dirchurn/internal/logging"
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	limiter *rate.Limiter
	router  *chi.Mux

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}
	srv := &apiServer{
		bind:    bind,
		logger:  logger,
		daemon:  d,
		limiter: newControlLimiter(cfg.API.ControlRatePerMinute),
	}
	srv.router = srv.routes(strings.TrimSpace(cfg.Paths.APIToken))
	srv.server = &http.Server{
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// newControlLimiter allows perMinute control requests with a burst of the
// same size. A non-positive rate disables limiting.
func newControlLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func (s *apiServer) routes(token string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(authMiddleware(token))
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/files", s.handleFiles)
	r.Get("/api/journal", s.handleJournal)
	r.With(s.rateLimit).Post("/api/control", s.handleControl)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "60")
			s.writeError(w, http.StatusTooManyRequests, "control rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusPayload(s.daemon.Status()))
}

func (s *apiServer) handleFiles(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.FileListResponse{
		Dir:   s.daemon.Dir(),
		Files: s.daemon.CurrentFiles(),
	})
}

func (s *apiServer) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	entries, err := s.daemon.Journal(r.Context(), limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrJournalDisabled) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromJournalEntries(entries))
}

func (s *apiServer) handleControl(w http.ResponseWriter, r *http.Request) {
	var req api.ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		s.writeError(w, http.StatusBadRequest, "command required")
		return
	}
	message, err := s.daemon.Execute(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrIntervalOutOfRange), errors.Is(err, ErrPathRequired):
			status = http.StatusBadRequest
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		logging.WarnWithContext(s.log(), "control command failed", "api_control_failed",
			logging.String("command", req.Command),
			logging.String(logging.FieldErrorHint, "check the request payload and daemon logs"),
			logging.String(logging.FieldImpact, "command was not applied"),
			logging.Error(err),
		)
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.AckResponse{Status: "ack", Message: message})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

// Package api serves the account and practice-stats endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/stillwave/internal/logging"
	"github.com/iburimskiy/stillwave/internal/store"
)

// Store is the persistence the handlers need.
type Store interface {
	CreateUser(ctx context.Context, name, email string) (store.User, error)
	Stats(ctx context.Context) (store.Stats, error)
	RecordSession(ctx context.Context, minutes float64, breaths int) (store.Session, store.Stats, error)
}

type Server struct {
	db  Store
	log *zap.Logger
}

func NewServer(db Store, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	return &Server{db: db, log: log}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("POST /api/signup", s.signup)
	mux.HandleFunc("GET /api/stats", s.stats)
	mux.HandleFunc("POST /api/breathing/session", s.recordSession)
	return mux
}

// Handler is the mux wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.log, s.ServeMux())
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and duration.
func LoggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", lrw.statusCode),
			zap.Duration("took", time.Since(start)))
	})
}

// Serve runs the API on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("api listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "message": msg})
}

// decodeBody decodes a JSON body into v. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type signupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	user, err := s.db.CreateUser(r.Context(), req.Name, req.Email)
	switch {
	case errors.Is(err, store.ErrMissingField):
		s.writeJSONError(w, http.StatusBadRequest, "Name and email are required.")
		return
	case errors.Is(err, store.ErrUserExists):
		s.writeJSONError(w, http.StatusConflict, "Account already exists.")
		return
	case err != nil:
		s.log.Error("signup failed", zap.Error(err))
		s.writeJSONError(w, http.StatusInternalServerError, "Could not create account.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": user})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats(r.Context())
	if err != nil {
		s.log.Error("read stats failed", zap.Error(err))
		s.writeJSONError(w, http.StatusInternalServerError, "Could not read stats.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": stats})
}

type sessionRequest struct {
	DurationMinutes *float64 `json:"durationMinutes"`
	Breaths         *float64 `json:"breaths"`
}

func (s *Server) recordSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	minutes := float64(store.DefaultSessionMinutes)
	if req.DurationMinutes != nil {
		minutes = *req.DurationMinutes
	}
	breaths := store.DefaultSessionBreaths
	if req.Breaths != nil {
		breaths = int(math.Round(*req.Breaths))
	}

	session, stats, err := s.db.RecordSession(r.Context(), minutes, breaths)
	if err != nil {
		s.log.Error("record session failed", zap.Error(err))
		s.writeJSONError(w, http.StatusInternalServerError, "Could not record session.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "session": session, "stats": stats})
}

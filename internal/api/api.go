// Package api serves the devstack: a small Supabase-compatible REST, auth
// and functions surface backed by sqlite.
package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/kidandcat/fridge/internal/apperr"
	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/db"
	"github.com/kidandcat/fridge/internal/mail"
	"github.com/kidandcat/fridge/internal/ratelimit"
	"github.com/kidandcat/fridge/internal/validation"
)

type Deps struct {
	Config    config.Config
	Store     *db.Store
	Auth      *auth.Service
	Mailer    mail.Mailer
	Limiter   *ratelimit.KeyedRateLimiter
	Validator *validation.Validator
	Log       *slog.Logger
}

type server struct {
	Deps
}

// Prefixes lists the paths the devstack handler owns.
var Prefixes = []string{"/rest/v1/", "/auth/v1/", "/functions/v1/", "/healthz"}

// Handler returns the devstack API with CORS and request logging applied.
func Handler(d Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)

	c := cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "apikey", "Prefer", "X-Client-Info", "Accept-Profile", "Content-Profile"},
		ExposedHeaders:   []string{"Content-Range"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c(logRequests(d.Log, mux))
}

func RegisterRoutes(mux *http.ServeMux, d Deps) {
	s := &server{Deps: d}
	key := auth.APIKey(d.Config.AnonKey, d.Log)
	user := func(h http.HandlerFunc) http.Handler {
		return key(d.Auth.RequireUser(h))
	}

	// Storage
	mux.Handle("GET /rest/v1/notes", user(s.handleSelectNotes))
	mux.Handle("POST /rest/v1/notes", user(s.handleUpsertNotes))
	mux.Handle("DELETE /rest/v1/notes", user(s.handleDeleteNotes))

	// Identity
	mux.Handle("POST /auth/v1/signup", key(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /auth/v1/token", key(http.HandlerFunc(s.handleToken)))
	mux.Handle("GET /auth/v1/user", user(s.handleUser))
	mux.Handle("POST /auth/v1/logout", user(s.handleLogout))
	mux.HandleFunc("GET /auth/v1/verify", s.handleVerify)

	// Functions
	mux.Handle("POST /functions/v1/friend-note", user(s.handleFriendNote))

	mux.HandleFunc("GET /healthz", s.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	apperr.Write(w, s.Log, err)
}

// decode reads a JSON body of at most 1 MiB into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("invalid JSON")
	}
	return nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(); err != nil {
		s.Log.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/splax/placefinder/internal/repository"
	"github.com/splax/placefinder/internal/service/auth"
	"github.com/splax/placefinder/internal/service/search"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux    *chi.Mux
	logger *slog.Logger
	auth   auth.Service
	search search.Service
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, searchSvc search.Service) *Router {
	r := &Router{
		mux:    chi.NewRouter(),
		logger: logger,
		auth:   authSvc,
		search: searchSvc,
	}
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.Use(r.audit)
	r.mux.Get("/healthz", r.handleHealthz)
	r.mux.Route("/auth", func(g chi.Router) {
		g.Post("/login", r.handleLogin)
		g.With(r.requireAuth).Get("/profile", r.handleProfile)
	})
	r.mux.Route("/search", func(g chi.Router) {
		g.Post("/", r.handleSearch)
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	user, token, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		r.logger.Error("login failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user": map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

func (r *Router) handleProfile(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for profile", "path", req.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	user, err := r.auth.Profile(req.Context(), info.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		r.logger.Error("profile lookup failed", "error", err, "user_id", info.UserID)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	results, err := r.search.Search(req.Context(), payload.Query)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Enter text to search")
			return
		}
		r.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// audit logs every request with status, size and timing, and converts panics
// into bare 500s so no internal detail leaks.
func (r *Router) audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		requestID := strings.TrimSpace(req.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("handler panic", "panic", rec, "method", req.Method, "path", req.URL.Path, "request_id", requestID)
				if recorder.status == 0 {
					writeError(recorder, http.StatusInternalServerError, "internal server error")
				}
			}

			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"bytes", recorder.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestID,
			}
			if ip := clientIP(req); ip != "" {
				fields = append(fields, "ip", ip)
			}

			switch {
			case status >= http.StatusInternalServerError:
				r.logger.Error("http_request", fields...)
			case status >= http.StatusBadRequest:
				r.logger.Warn("http_request", fields...)
			default:
				r.logger.Info("http_request", fields...)
			}
		}()

		next.ServeHTTP(recorder, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}
	host := req.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

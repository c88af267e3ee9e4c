package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/obsidianstack/alertrelay/server/internal/metrics"
	"github.com/obsidianstack/alertrelay/server/internal/relay"
)

// maxBodyBytes bounds the webhook request body.
const maxBodyBytes = 1 << 20

// Handler serves the relay HTTP endpoints.
type Handler struct {
	svc     *relay.Service
	metrics *metrics.Registry
	router  chi.Router
}

// New creates a Handler for svc and registers all routes. reg and stream
// are optional; their routes are only mounted when non-nil.
func New(svc *relay.Service, reg *metrics.Registry, stream http.Handler) http.Handler {
	h := &Handler{svc: svc, metrics: reg, router: chi.NewRouter()}

	h.router.Use(recoverer)
	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.RealIP)
	h.router.Use(requestLogger)

	h.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})
	h.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	h.router.Post("/webhook", h.webhook)
	h.router.Get("/health", h.health)
	h.router.Get("/config", h.config)
	h.router.Get("/test", h.test)
	h.router.Post("/test", h.test)
	if reg != nil {
		h.router.Method(http.MethodGet, "/metrics", reg)
	}
	if stream != nil {
		h.router.Method(http.MethodGet, "/ws/stream", stream)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- middleware -------------------------------------------------------------

// recoverer turns a handler panic into an opaque 500. The panic value and
// stack are logged only.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				slog.Error("api: panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", middleware.GetReqID(r.Context()),
					"panic", fmt.Sprintf("%v", rvr),
					"stack", string(debug.Stack()),
				)
				jsonErr(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request. Request headers are never logged.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "api: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

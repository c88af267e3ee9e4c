package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/obsidianstack/alertrelay/server/internal/relay"
)

// --- route handlers ---------------------------------------------------------

// webhook handles POST /webhook: one Alertmanager batch.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	defer func() {
		if h.metrics != nil {
			h.metrics.WebhookRequest(code)
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
			jsonErr(w, code, "request body too large")
			return
		}
		code = http.StatusBadRequest
		jsonErr(w, code, "could not read request body")
		return
	}

	resp, err := h.svc.Intake(r.Context(), body)
	switch {
	case errors.Is(err, relay.ErrBadPayload):
		code = http.StatusBadRequest
		jsonErr(w, code, "invalid alert payload")
	case err != nil:
		code = http.StatusInternalServerError
		jsonErr(w, code, "internal error")
	default:
		jsonResp(w, code, resp)
	}
}

// health handles GET /health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.svc.Health())
}

// config handles GET /config: destinations and topic, without credentials.
func (h *Handler) config(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.svc.Introspect())
}

// test handles GET and POST /test: send the synthetic notification.
func (h *Handler) test(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Test(r.Context())
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := "success"
	switch {
	case rep.Sent == 0:
		status = "failed"
	case rep.Sent < rep.Total:
		status = "partial"
	}
	jsonResp(w, http.StatusOK, TestResponse{
		Status:   status,
		Message:  fmt.Sprintf("Test notification sent to %d/%d servers", rep.Sent, rep.Total),
		Sent:     rep.Sent,
		Total:    rep.Total,
		Outcomes: rep.Outcomes,
		Hints:    computeDiagnostics(*rep),
	})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("api: write response", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/obsidianstack/alertrelay/server/internal/alerts"
	"github.com/obsidianstack/alertrelay/server/internal/config"
	"github.com/obsidianstack/alertrelay/server/internal/dispatch"
	"github.com/obsidianstack/alertrelay/server/internal/metrics"
)

var (
	// ErrBadPayload marks intake input that is missing or not an alert batch.
	ErrBadPayload = errors.New("relay: invalid alert payload")

	// ErrInternal marks an unexpected fault. Its text is safe to return to
	// callers; the cause is only logged.
	ErrInternal = errors.New("relay: internal error")
)

// Dispatcher fans one notification out to every destination.
type Dispatcher interface {
	Dispatch(ctx context.Context, n alerts.Notification, cfg *config.Resolved) dispatch.Report
}

// Publisher receives delivery events for live subscribers.
type Publisher interface {
	Publish(event string, data any)
}

// Service is the boundary the HTTP layer and the CLI call into.
type Service struct {
	cfg        *config.Holder
	dispatcher Dispatcher
	metrics    *metrics.Registry
	events     Publisher
	now        func() time.Time
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records alerts and delivery outcomes in m.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEvents publishes a "delivery" event to p after every dispatch.
func WithEvents(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service that reads destinations from cfg on every call.
func New(cfg *config.Holder, d Dispatcher, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		dispatcher: d,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Intake decodes an alert batch and dispatches every alert in it.
// An empty batch succeeds with zero counts. A missing, null or non-object
// body wraps ErrBadPayload. Any panic is logged and returned as ErrInternal.
func (s *Service) Intake(ctx context.Context, body []byte) (resp *IntakeResponse, err error) {
	id := s.newID()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("relay: intake panicked",
				"request_id", id, "panic", r, "stack", string(debug.Stack()))
			resp, err = nil, ErrInternal
		}
	}()

	payload, err := decodePayload(body)
	if err != nil {
		slog.Warn("relay: rejected webhook", "request_id", id, "err", err)
		return nil, err
	}

	// One snapshot for the whole batch, even if a reload lands mid-request.
	cfg := s.cfg.Load()

	resp = &IntakeResponse{
		Status:          "success",
		RequestID:       id,
		AlertsProcessed: len(payload.Alerts),
		ServersTotal:    len(cfg.Destinations),
		Results:         make([]AlertResult, 0, len(payload.Alerts)),
	}
	for _, a := range payload.Alerts {
		status := alerts.ParseStatus(a.Status)
		if s.metrics != nil {
			s.metrics.AlertReceived(status.String())
		}

		rep := s.dispatch(ctx, id, a.Name(), status.String(), alerts.Format(a), cfg)
		resp.NotificationsSent += rep.Sent
		resp.Results = append(resp.Results, AlertResult{
			Alertname: a.Name(),
			Status:    status.String(),
			Sent:      rep.Sent,
			Total:     rep.Total,
			Outcomes:  rep.Outcomes,
		})
	}

	slog.Info("relay: webhook processed",
		"request_id", id,
		"alerts", resp.AlertsProcessed,
		"sent", resp.NotificationsSent,
		"servers", resp.ServersTotal,
	)
	return resp, nil
}

// Test sends the synthetic test notification through the same pipeline as
// real alerts.
func (s *Service) Test(ctx context.Context) (rep *dispatch.Report, err error) {
	id := s.newID()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("relay: test notification panicked",
				"request_id", id, "panic", r, "stack", string(debug.Stack()))
			rep, err = nil, ErrInternal
		}
	}()

	cfg := s.cfg.Load()
	r := s.dispatch(ctx, id, "test", "test", alerts.TestNotification(s.now()), cfg)
	slog.Info("relay: test notification sent", "request_id", id, "sent", r.Sent, "total", r.Total)
	return &r, nil
}

// Introspect reports the active destinations. Credentials are never included;
// URLs have any embedded password redacted.
func (s *Service) Introspect() Introspection {
	cfg := s.cfg.Load()
	out := Introspection{
		Topic:   cfg.Topic,
		Source:  cfg.Source,
		Servers: make([]ServerInfo, len(cfg.Destinations)),
	}
	for i, d := range cfg.Destinations {
		out.Servers[i] = ServerInfo{Name: d.Name, URL: d.DisplayURL(), HasAuth: d.HasAuth()}
	}
	return out
}

// Health reports the configured destinations and topic.
func (s *Service) Health() Health {
	cfg := s.cfg.Load()
	urls := make([]string, len(cfg.Destinations))
	for i, d := range cfg.Destinations {
		urls[i] = d.DisplayURL()
	}
	return Health{
		Status:       "healthy",
		ServersCount: len(urls),
		Servers:      urls,
		Topic:        cfg.Topic,
	}
}

// dispatch sends n and records the report in metrics and the live stream.
func (s *Service) dispatch(ctx context.Context, id, name, status string, n alerts.Notification, cfg *config.Resolved) dispatch.Report {
	rep := s.dispatcher.Dispatch(ctx, n, cfg)

	if s.metrics != nil {
		for _, o := range rep.Outcomes {
			s.metrics.Delivery(o.Destination, string(o.Status))
		}
	}
	if s.events != nil {
		s.events.Publish("delivery", DeliveryEvent{
			RequestID: id,
			Alertname: name,
			Status:    status,
			Sent:      rep.Sent,
			Total:     rep.Total,
			Outcomes:  rep.Outcomes,
			At:        s.now().UTC().Format(time.RFC3339),
		})
	}
	return rep
}

// decodePayload parses body as an alert batch. The top level must be a JSON
// object; a missing or null alerts key is an empty batch.
func decodePayload(body []byte) (*alerts.Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrBadPayload)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: body is null", ErrBadPayload)
	}

	p := &alerts.Payload{}
	if err := json.Unmarshal(body, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return p, nil
}

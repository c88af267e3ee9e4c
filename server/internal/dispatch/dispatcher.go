package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/obsidianstack/alertrelay/server/internal/alerts"
	"github.com/obsidianstack/alertrelay/server/internal/auth"
	"github.com/obsidianstack/alertrelay/server/internal/config"
)

const (
	// sendTimeout bounds each outbound call, connection through response.
	sendTimeout = 10 * time.Second

	// maxResponseDrain limits how much of a response body is read before
	// the connection is returned to the pool.
	maxResponseDrain = 4096
)

// Status classifies the result of one delivery attempt.
type Status string

const (
	// StatusSuccess means the server accepted the notification (2xx).
	StatusSuccess Status = "success"
	// StatusFailed means the transport, timeout, or HTTP status reported an error.
	StatusFailed Status = "failed"
	// StatusError means an unexpected fault occurred while handling the destination.
	StatusError Status = "error"
)

// Error details recorded on StatusError outcomes.
const (
	// DetailInvalidURL is recorded when the destination URL cannot form a
	// request. The parse error is not kept since it quotes the raw URL.
	DetailInvalidURL = "invalid destination url"
	// DetailFault prefixes the detail of a contained panic.
	DetailFault = "unexpected fault"
)

// Outcome is the result of delivering one notification to one destination.
type Outcome struct {
	Destination string `json:"server"`
	URL         string `json:"url"`
	Status      Status `json:"status"`
	Error       string `json:"error,omitempty"`
}

// Report collects the outcomes of one Dispatch call, in destination order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
	Sent     int       `json:"sent"`
	Total    int       `json:"total"`
}

// Dispatcher delivers notifications to every configured destination.
// Destinations are isolated from each other: a failure, panic, or timeout
// on one never affects the attempts on the others.
//
// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	client      *http.Client
	concurrency int
	timeout     time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency sets how many destinations are contacted in parallel.
// Values below 1 are treated as 1 (sequential).
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		d.concurrency = n
	}
}

// WithHTTPClient replaces the HTTP client used for outbound calls.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// New creates a Dispatcher. By default destinations are contacted one after
// another with a 10 second bound per call.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:      &http.Client{},
		concurrency: 1,
		timeout:     sendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends n to every destination in cfg and returns one Outcome per
// destination, in the same order as cfg.Destinations.
//
// Outbound calls are detached from ctx cancellation: an aborted inbound
// request does not cancel sends already issued. Each call is still bounded
// by the per-call timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, n alerts.Notification, cfg *config.Resolved) Report {
	ctx = context.WithoutCancel(ctx)

	base := baseHeaders(n)
	outcomes := make([]Outcome, len(cfg.Destinations))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, dest := range cfg.Destinations {
		i, dest := i, dest
		g.Go(func() error {
			outcomes[i] = d.send(ctx, dest, cfg.Topic, n.Body, base)
			// Never fail the group; every destination gets its attempt.
			return nil
		})
	}
	_ = g.Wait()

	r := Report{Outcomes: outcomes, Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			r.Sent++
		}
	}
	return r
}

// send performs the single delivery attempt for dest. It never panics.
func (d *Dispatcher) send(ctx context.Context, dest config.Destination, topic, body string, base http.Header) (out Outcome) {
	out = Outcome{Destination: dest.Name, URL: dest.DisplayURL()}

	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusError
			out.Error = fmt.Sprintf("%s: %v", DetailFault, r)
			slog.Error("dispatch: delivery panicked",
				"server", dest.Name, "url", out.URL, "panic", r)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, TargetURL(dest.URL, topic), strings.NewReader(body))
	if err != nil {
		out.Status = StatusError
		out.Error = DetailInvalidURL
		slog.Error("dispatch: delivery error", "server", dest.Name, "url", out.URL, "err", DetailInvalidURL)
		return out
	}
	req.Header = base.Clone()
	for k, v := range auth.Headers(dest.Auth) {
		req.Header[k] = v
	}

	if err := d.post(req); err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		slog.Warn("dispatch: delivery failed", "server", dest.Name, "url", out.URL, "err", err)
		return out
	}

	out.Status = StatusSuccess
	slog.Debug("dispatch: delivered", "server", dest.Name, "url", out.URL, "topic", topic)
	return out
}

// post executes req and treats any non-2xx response as an error.
func (d *Dispatcher) post(req *http.Request) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseDrain))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// baseHeaders returns the push metadata headers shared by every destination.
func baseHeaders(n alerts.Notification) http.Header {
	h := make(http.Header)
	h.Set("Title", alerts.SanitizeHeader(n.Title))
	h.Set("Priority", string(n.Priority))
	h.Set("Tags", alerts.HeaderTags(n.Tags))
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return h
}

// TargetURL joins a destination base URL and a topic.
func TargetURL(base, topic string) string {
	return strings.TrimRight(base, "/") + "/" + topic
}

package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	AlertsReceived  = "alertrelay_alerts_received_total"
	Deliveries      = "alertrelay_deliveries_total"
	WebhookRequests = "alertrelay_webhook_requests_total"
)

// Registry holds the relay's process counters on a private Prometheus
// registry. The zero value is not usable; call New.
type Registry struct {
	reg     *prometheus.Registry
	vecs    map[string]*prometheus.CounterVec
	labels  map[string][]string
	handler http.Handler
}

// New returns a Registry with every relay counter registered.
func New() *Registry {
	r := &Registry{
		reg:    prometheus.NewRegistry(),
		vecs:   map[string]*prometheus.CounterVec{},
		labels: map[string][]string{},
	}
	r.counter(AlertsReceived, "Alerts received on the webhook, by alert status.", "status")
	r.counter(Deliveries, "Delivery attempts to notification servers, by outcome.", "destination", "status")
	r.counter(WebhookRequests, "Webhook requests handled, by HTTP response code.", "code")
	r.handler = promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		ErrorLog:      promErrorLog{},
		ErrorHandling: promhttp.ContinueOnError,
	})
	return r
}

func (r *Registry) counter(name, help string, labels ...string) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	r.reg.MustRegister(vec)
	r.vecs[name] = vec
	r.labels[name] = labels
}

// AlertReceived counts one alert with the given status.
func (r *Registry) AlertReceived(status string) {
	r.add(AlertsReceived, status)
}

// Delivery counts one delivery attempt to destination.
func (r *Registry) Delivery(destination, status string) {
	r.add(Deliveries, destination, status)
}

// WebhookRequest counts one webhook response with the given HTTP code.
func (r *Registry) WebhookRequest(code int) {
	r.add(WebhookRequests, strconv.Itoa(code))
}

func (r *Registry) add(name string, labelValues ...string) {
	vec, ok := r.vecs[name]
	if !ok {
		slog.Error("metrics: unknown counter", "metric", name)
		return
	}
	c, err := vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		slog.Error("metrics: bad label values", "metric", name, "err", err)
		return
	}
	c.Inc()
}

// Value returns the current value of the named counter for the given label
// values, or 0 when that series has never been incremented.
func (r *Registry) Value(name string, labelValues ...string) float64 {
	names, ok := r.labels[name]
	if !ok || len(names) != len(labelValues) {
		return 0
	}
	want := make(map[string]string, len(names))
	for i, n := range names {
		want[n] = labelValues[i]
	}
	for _, mf := range r.Families() {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, want) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, want map[string]string) bool {
	if len(m.GetLabel()) != len(want) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if v, ok := want[lp.GetName()]; !ok || v != lp.GetValue() {
			return false
		}
	}
	return true
}

// Families snapshots the counters that have at least one series. Families are
// sorted by name and metrics by label values.
func (r *Registry) Families() []*dto.MetricFamily {
	mfs, err := r.reg.Gather()
	if err != nil {
		slog.Warn("metrics: gather", "err", err)
	}
	return mfs
}

// WriteText encodes every non-empty family in the Prometheus text exposition
// format.
func (r *Registry) WriteText(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range r.Families() {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// ServeHTTP serves GET /metrics.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// promErrorLog routes promhttp errors to slog.
type promErrorLog struct{}

func (promErrorLog) Println(v ...any) {
	slog.Warn("metrics: serve", "err", v)
}

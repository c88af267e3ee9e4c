package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

func parse(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse exposition: %v\n%s", err, text)
	}
	return mfs
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestRegistry_CountsAndRenders(t *testing.T) {
	r := New()
	r.AlertReceived("firing")
	r.AlertReceived("firing")
	r.AlertReceived("resolved")
	r.Delivery("primary", "success")
	r.Delivery("backup", "failed")
	r.WebhookRequest(http.StatusOK)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	mfs := parse(t, buf.String())

	alerts := mfs[AlertsReceived]
	if alerts == nil {
		t.Fatalf("%s missing", AlertsReceived)
	}
	if alerts.GetType() != dto.MetricType_COUNTER {
		t.Errorf("type: got %v, want COUNTER", alerts.GetType())
	}
	got := map[string]float64{}
	for _, m := range alerts.GetMetric() {
		got[labelsOf(m)["status"]] = m.GetCounter().GetValue()
	}
	if got["firing"] != 2 || got["resolved"] != 1 {
		t.Errorf("alerts received: got %v, want firing=2 resolved=1", got)
	}

	deliveries := mfs[Deliveries]
	if n := len(deliveries.GetMetric()); n != 2 {
		t.Fatalf("deliveries: got %d series, want 2", n)
	}
	first := labelsOf(deliveries.GetMetric()[0])
	if first["destination"] != "backup" || first["status"] != "failed" {
		t.Errorf("first delivery series: got %v, want backup/failed (sorted)", first)
	}

	if v := r.Value(WebhookRequests, "200"); v != 1 {
		t.Errorf("webhook 200: got %v, want 1", v)
	}
}

func TestRegistry_UntouchedCountersOmitted(t *testing.T) {
	if fams := New().Families(); len(fams) != 0 {
		t.Fatalf("families: got %d, want 0", len(fams))
	}
}

func TestRegistry_Deterministic(t *testing.T) {
	r := New()
	for _, d := range []string{"z", "a", "m"} {
		r.Delivery(d, "success")
	}
	var a, b bytes.Buffer
	r.WriteText(&a) //nolint:errcheck
	r.WriteText(&b) //nolint:errcheck
	if a.String() != b.String() {
		t.Errorf("output differs between calls:\n%s\n---\n%s", a.String(), b.String())
	}
}

func TestRegistry_WrongLabelCountIgnored(t *testing.T) {
	r := New()
	r.add(Deliveries, "only-one")
	r.add("alertrelay_unknown_total", "x")
	if fams := r.Families(); len(fams) != 0 {
		t.Errorf("families: got %d, want 0", len(fams))
	}
	if v := r.Value(Deliveries, "only-one"); v != 0 {
		t.Errorf("value: got %v, want 0", v)
	}
}

func TestRegistry_LabelValuesKeptDistinct(t *testing.T) {
	r := New()
	r.Delivery("a\x00b", "c")
	r.Delivery("a", "b\x00c")

	if v := r.Value(Deliveries, "a\x00b", "c"); v != 1 {
		t.Errorf("a\\x00b/c: got %v, want 1", v)
	}
	if v := r.Value(Deliveries, "a", "b\x00c"); v != 1 {
		t.Errorf("a/b\\x00c: got %v, want 1", v)
	}
	if n := len(r.Families()[0].GetMetric()); n != 2 {
		t.Errorf("deliveries: got %d series, want 2", n)
	}
}

func TestRegistry_ConcurrentIncrements(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Delivery("primary", "success")
		}()
	}
	wg.Wait()
	if v := r.Value(Deliveries, "primary", "success"); v != 50 {
		t.Errorf("got %v, want 50", v)
	}
}

func TestRegistry_ServeHTTP(t *testing.T) {
	r := New()
	r.WebhookRequest(http.StatusBadRequest)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q, want text/plain", ct)
	}
	if !strings.Contains(rr.Body.String(), `alertrelay_webhook_requests_total{code="400"} 1`) {
		t.Errorf("body missing 400 counter:\n%s", rr.Body.String())
	}
}

func TestRegistry_WriteTextSkipsEmptyFamilies(t *testing.T) {
	r := New()
	r.AlertReceived("firing")

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	mfs := parse(t, buf.String())
	if len(mfs) != 1 || mfs[AlertsReceived] == nil {
		t.Errorf("families: got %d, want only %s", len(mfs), AlertsReceived)
	}
}

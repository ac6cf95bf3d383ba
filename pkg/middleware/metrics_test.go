package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(WithRegistry(reg)), reg
}

func TestMetricsHandler_LabelsRouteAndStatus(t *testing.T) {
	m, _ := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	for _, method := range []string{http.MethodGet, http.MethodGet, http.MethodPost} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	tests := []struct {
		route, status string
		want          float64
	}{
		{"/", "200", 2},
		{"/", "422", 1},
		{"unmatched", "404", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(tt.route, tt.status)); got != tt.want {
			t.Errorf("requests_total{%s,%s} = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}
	if n := testutil.CollectAndCount(m.requestDuration); n != 2 {
		t.Errorf("request_duration series = %d, want 2", n)
	}
}

func TestMetrics_Recorders(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordEvent("input")
	m.RecordEvent("input")
	m.RecordEvent("submit")
	m.RecordValidationFailure("email")
	m.RecordSubmission(true)
	m.RecordSubmission(false)
	m.RecordSubmission(false)
	m.RecordLiveConnect()
	m.RecordLiveConnect()
	m.RecordLiveDisconnect()
	m.RecordReconnect()
	m.RecordWebSocketError("read")

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"events{input}", m.eventsTotal.WithLabelValues("input"), 2},
		{"events{submit}", m.eventsTotal.WithLabelValues("submit"), 1},
		{"validation_failures{email}", m.validationFailures.WithLabelValues("email"), 1},
		{"submissions{accepted}", m.submissionsTotal.WithLabelValues("accepted"), 1},
		{"submissions{rejected}", m.submissionsTotal.WithLabelValues("rejected"), 2},
		{"live_connections", m.liveConnections, 1},
		{"reconnects", m.reconnectsTotal, 1},
		{"websocket_errors{read}", m.wsErrors.WithLabelValues("read"), 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordEvent("input")
	m.RecordValidationFailure("email")
	m.RecordSubmission(true)
	m.RecordLiveConnect()
	m.RecordLiveDisconnect()
	m.RecordReconnect()
	m.RecordWebSocketError("read")

	called := false
	h := m.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("nil Metrics handler did not call next")
	}
}

func TestMetrics_NamespaceAndRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"), WithConstLabels(prometheus.Labels{"instance": "a"}))
	m.RecordSubmission(true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_submissions_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("test_submissions_total not registered")
	}
}

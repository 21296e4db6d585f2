package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBackendRecordsHistogram(t *testing.T) {
	m := New()
	m.ObserveBackend("list_tickets", OutcomeOK, 20*time.Millisecond)
	m.ObserveBackend("list_tickets", OutcomeUnavailable, time.Second)

	if got := testutil.CollectAndCount(m.backendDuration); got != 2 {
		t.Fatalf("collected series = %d, want 2", got)
	}
}

func TestInstrumentHandlerCountsResponses(t *testing.T) {
	m := New()
	handler := m.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tickets", nil))
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("get", "418")); got != 3 {
		t.Fatalf("http_requests_total{get,418} = %v, want 3", got)
	}
}

func TestHandlerExposesFamilies(t *testing.T) {
	m := New()
	m.ObserveBackend("login", OutcomeUnauthorized, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ticketdesk_backend_request_duration_seconds") {
		t.Fatal("expected backend histogram in exposition")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveBackend("login", OutcomeOK, time.Millisecond)
	next := http.NotFoundHandler()
	if m.InstrumentHandler(next) == nil {
		t.Fatal("expected passthrough handler")
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

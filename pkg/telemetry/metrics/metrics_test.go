package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"voygen/gateway/pkg/config"
)

func newTestCollector(enabled bool) *Collector {
	return NewCollector(&config.MetricsConfig{Enabled: enabled, Namespace: "voygen"}, prometheus.NewRegistry())
}

func TestCollector_RecordForwardCall(t *testing.T) {
	c := newTestCollector(true)

	c.RecordForwardCall("data", "ingest_hotels", StatusSuccess, 100*time.Millisecond)
	c.RecordForwardCall("data", "ingest_hotels", StatusSuccess, 200*time.Millisecond)
	c.RecordForwardCall("data", "ingest_hotels", StatusError, time.Second)

	if got := testutil.ToFloat64(c.forward.callsTotal.WithLabelValues("data", "ingest_hotels", StatusSuccess)); got != 2 {
		t.Errorf("success calls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.forward.callsTotal.WithLabelValues("data", "ingest_hotels", StatusError)); got != 1 {
		t.Errorf("error calls = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := newTestCollector(false)

	c.RecordHTTPRequest("GET", 200, time.Millisecond)
	c.RecordChatProxyError()
	c.RecordJournalDropped()

	if got := testutil.ToFloat64(c.chat.proxyErrors); got != 0 {
		t.Errorf("proxy errors = %v, want 0 when disabled", got)
	}
	if got := testutil.ToFloat64(c.journal.dropped); got != 0 {
		t.Errorf("dropped = %v, want 0 when disabled", got)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.RecordHTTPRequest("GET", 200, time.Millisecond)
	c.RecordForwardCall("data", "x", StatusSuccess, time.Millisecond)
	c.SetChatBackendUp(true)
	c.RecordChatBackendExit(1)
	c.RecordJournalPruned(3)
}

func TestCollector_ChatAndJournal(t *testing.T) {
	c := newTestCollector(true)

	c.SetChatBackendUp(true)
	if got := testutil.ToFloat64(c.chat.backendUp); got != 1 {
		t.Errorf("backend_up = %v, want 1", got)
	}
	c.SetChatBackendUp(false)
	if got := testutil.ToFloat64(c.chat.backendUp); got != 0 {
		t.Errorf("backend_up = %v, want 0", got)
	}

	c.RecordChatBackendExit(0)
	c.RecordChatBackendExit(137)
	if got := testutil.ToFloat64(c.chat.backendExits.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure exits = %v", got)
	}

	c.RecordJournalPruned(5)
	c.RecordJournalPruned(0)
	if got := testutil.ToFloat64(c.journal.pruned); got != 5 {
		t.Errorf("pruned = %v, want 5", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(true)
	c.RecordHTTPRequest("POST", 201, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `voygen_http_requests_total{code="201",method="POST"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}

package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/issues", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/api/issues", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/issues/:id", "GET", "NOT_FOUND")
	m.RecordSideEffectFailure("audit", "store")
	m.RecordSideEffectFailure("notification", "queue_full")
	m.RecordSideEffectFailure("notification", "publish")

	snap := m.Snapshot()
	if got := snap.Requests["/api/issues|GET|200"]; got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
	if got := snap.RequestDurationMs["/api/issues|GET|200"]; got != 10 {
		t.Errorf("expected 10ms, got %d", got)
	}
	if got := snap.Errors["/api/issues/:id|GET|NOT_FOUND"]; got != 1 {
		t.Errorf("expected 1 error, got %d", got)
	}
	if got := m.SideEffectFailures("notification"); got != 2 {
		t.Errorf("expected 2 notification failures, got %d", got)
	}
	if got := m.SideEffectFailures("audit"); got != 1 {
		t.Errorf("expected 1 audit failure, got %d", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordSideEffectFailure("audit", "x")
	if m.SideEffectFailures("audit") != 0 {
		t.Error("nil metrics should report zero")
	}
	if len(m.Snapshot().Requests) != 0 {
		t.Error("nil metrics snapshot should be empty")
	}
}

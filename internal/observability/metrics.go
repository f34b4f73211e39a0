package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu                 sync.Mutex
	requestCount       map[string]int64
	requestDurationSum map[string]time.Duration
	errorCount         map[string]int64
	sideEffectFailures map[string]int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests           map[string]int64 `json:"requests"`
	RequestDurationMs  map[string]int64 `json:"request_duration_ms"`
	Errors             map[string]int64 `json:"errors"`
	SideEffectFailures map[string]int64 `json:"side_effect_failures"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:       make(map[string]int64),
		requestDurationSum: make(map[string]time.Duration),
		errorCount:         make(map[string]int64),
		sideEffectFailures: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestDurationSum[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSideEffectFailure counts a swallowed audit or notification failure.
// kind is "audit" or "notification".
func (m *Metrics) RecordSideEffectFailure(kind, reason string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sideEffectFailures[kind+"|"+reason]++
}

// SideEffectFailures returns the total for kind across reasons.
func (m *Metrics) SideEffectFailures(kind string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	prefix := kind + "|"
	for key, n := range m.sideEffectFailures {
		if strings.HasPrefix(key, prefix) {
			total += n
		}
	}
	return total
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:           map[string]int64{},
		RequestDurationMs:  map[string]int64{},
		Errors:             map[string]int64{},
		SideEffectFailures: map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.requestDurationSum {
		snap.RequestDurationMs[k] = v.Milliseconds()
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.sideEffectFailures {
		snap.SideEffectFailures[k] = v
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}

// Package metrics records provider attempt events. Events flow to any
// number of sinks and into a bounded in-process ring buffer that the
// health surface can snapshot.
package metrics

import (
	"log/slog"
	"sync"
	"time"
)

// Outcome classifies how a provider attempt ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeError       Outcome = "error"
	OutcomeCircuitOpen Outcome = "circuit_open"
	OutcomeSkipped     Outcome = "skipped"
)

// IsValid checks if the outcome is valid
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeError, OutcomeCircuitOpen, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// AttemptEvent describes one call against one provider.
type AttemptEvent struct {
	RequestID  string    `json:"request_id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Operation  string    `json:"operation"`
	Outcome    Outcome   `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	RetryIndex int       `json:"retry_index"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink receives attempt events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Record(event AttemptEvent)
}

// SlogSink logs every attempt event at debug level, failures at warn.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to the given logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Record logs the event.
func (s *SlogSink) Record(event AttemptEvent) {
	attrs := []any{
		"request_id", event.RequestID,
		"provider", event.Provider,
		"model", event.Model,
		"operation", event.Operation,
		"outcome", event.Outcome,
		"latency_ms", event.LatencyMS,
		"retry_index", event.RetryIndex,
	}
	if event.ErrorKind != "" {
		attrs = append(attrs, "error_kind", event.ErrorKind)
	}
	if event.Outcome == OutcomeSuccess {
		s.logger.Debug("Provider attempt", attrs...)
	} else {
		s.logger.Warn("Provider attempt failed", attrs...)
	}
}

// DefaultRingCapacity bounds the in-process event history.
const DefaultRingCapacity = 1000

// Recorder fans events out to sinks and retains the most recent events
// in a fixed-size ring.
type Recorder struct {
	mu    sync.RWMutex
	ring  []AttemptEvent
	next  int
	total uint64
	sinks []Sink
}

// NewRecorder creates a recorder with the given ring capacity.
// A capacity below 1 falls back to DefaultRingCapacity.
func NewRecorder(capacity int, sinks ...Sink) *Recorder {
	if capacity < 1 {
		capacity = DefaultRingCapacity
	}
	return &Recorder{
		ring:  make([]AttemptEvent, 0, capacity),
		sinks: sinks,
	}
}

// Record stores the event and forwards it to every sink.
func (r *Recorder) Record(event AttemptEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	if len(r.ring) < cap(r.ring) {
		r.ring = append(r.ring, event)
	} else {
		r.ring[r.next] = event
	}
	r.next = (r.next + 1) % cap(r.ring)
	r.total++
	sinks := r.sinks
	r.mu.Unlock()

	for _, sink := range sinks {
		sink.Record(event)
	}
}

// Snapshot returns the retained events in insertion order, oldest first.
func (r *Recorder) Snapshot() []AttemptEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]AttemptEvent, 0, len(r.ring))
	if len(r.ring) < cap(r.ring) {
		out = append(out, r.ring...)
		return out
	}
	out = append(out, r.ring[r.next:]...)
	out = append(out, r.ring[:r.next]...)
	return out
}

// Total returns how many events have been recorded since startup,
// including those evicted from the ring.
func (r *Recorder) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

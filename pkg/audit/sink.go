// Package audit provides the append-only audit trail for impersonation
// lifecycle events and guarded effect calls.
package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Sink records audit entries. Record is fire-and-forget: implementations
// must not fail the business operation being audited. A persistence
// failure is surfaced on the operational error channel (slog) instead.
type Sink interface {
	Record(ctx context.Context, rec Record)
}

// LogSink writes audit records to the structured log. It is the default
// sink when no database is configured.
type LogSink struct{}

// NewLogSink creates a log-backed audit sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Record logs the audit record.
func (s *LogSink) Record(ctx context.Context, rec Record) {
	slog.InfoContext(ctx, "audit",
		"audit_id", rec.ID,
		"kind", rec.Kind,
		"service", rec.Service,
		"operation", rec.Operation,
		"mocked", rec.Mocked,
		"admin_id", rec.AdminID,
		"target_id", rec.TargetID,
		"timestamp", rec.Timestamp,
	)
}

// MemorySink keeps audit records in memory. Intended for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an in-memory audit sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends the record.
func (s *MemorySink) Record(ctx context.Context, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns a copy of all recorded entries.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// ByKind returns recorded entries of the given kind.
func (s *MemorySink) ByKind(kind Kind) []Record {
	var out []Record
	for _, rec := range s.Records() {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

// MultiSink fans a record out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that records to every given sink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Record forwards the record to all sinks.
func (s *MultiSink) Record(ctx context.Context, rec Record) {
	for _, sink := range s.sinks {
		sink.Record(ctx, rec)
	}
}

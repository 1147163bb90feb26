package workers

import (
	"alumnet/domain/event"
	"alumnet/repositories"
	"log/slog"
	"time"
)

// IndexerSink feeds the full-text message index from the event stream.
// Indexing lag or a dropped event only degrades search, never delivery.
type IndexerSink struct {
	index *repositories.MessageIndex
	log   *slog.Logger
}

func NewIndexerSink(index *repositories.MessageIndex, log *slog.Logger) *IndexerSink {
	return &IndexerSink{index: index, log: log}
}

func (s *IndexerSink) Consume(e event.DomainEvent) {
	sent, ok := e.(event.MessageSent)
	if !ok {
		return
	}
	if err := s.index.Index(sent.Message); err != nil {
		s.log.Error("message indexing failed", "message_id", sent.Message.ID, "error", err)
	}
}

// TelemetrySink logs event lead time and flags slow fan-out.
type TelemetrySink struct {
	log              *slog.Logger
	latencyThreshold time.Duration
}

func NewTelemetrySink(log *slog.Logger, latencyThreshold time.Duration) *TelemetrySink {
	return &TelemetrySink{log: log, latencyThreshold: latencyThreshold}
}

func (s *TelemetrySink) Consume(e event.DomainEvent) {
	leadTime := time.Since(e.OccurredAt())
	s.log.Debug("telemetry: event processed",
		"event_id", e.EventID(),
		"lead_time_ms", leadTime.Milliseconds(),
	)
	if leadTime > s.latencyThreshold {
		s.log.Warn("high fan-out latency detected", "lead_time", leadTime)
	}
}

package workers

import (
	"alumnet/contract"
	"alumnet/domain/event"
	"context"
	"log/slog"
)

// EventFanout broadcasts domain events to in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// Notification rows never ride this path; they are written synchronously
// inside the originating operation with event-id deduplication.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log    *slog.Logger
	events chan event.DomainEvent
	sinks  []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events chan event.DomainEvent) *EventFanout {
	return &EventFanout{log: log, events: events}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fan-out")
			return nil
		}
	}
}

// Fanout delivers one event to every sink.
func (w *EventFanout) Fanout(evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sink.Consume(evt)
	}
}

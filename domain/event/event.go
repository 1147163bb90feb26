package event

import (
	"alumnet/domain"
	"time"

	"github.com/google/uuid"
)

// eventSpace namespaces derived event IDs so that replaying the same
// transition always yields the same deduplication key.
var eventSpace = uuid.MustParse("8f3c1c62-5b0a-4f7e-9d14-2a6f0d9b7c41")

type DomainEvent interface {
	EventID() uuid.UUID
	OccurredAt() time.Time
}

// TransitionEventID derives a stable event ID for a connection transition.
// The same (connection, status) pair always maps to the same ID, which is
// what makes at-least-once fan-out safe to replay.
func TransitionEventID(connectionID uuid.UUID, status domain.ConnectionStatus) uuid.UUID {
	return uuid.NewSHA1(eventSpace, []byte(connectionID.String()+":"+string(status)))
}

// MessageEventID derives a stable event ID from a persisted message.
func MessageEventID(messageID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(eventSpace, []byte("msg:"+messageID.String()))
}

type ConnectionRequested struct {
	Connection domain.Connection
	At         time.Time
}

func (e ConnectionRequested) EventID() uuid.UUID {
	return TransitionEventID(e.Connection.ID, domain.ConnectionPending)
}

func (e ConnectionRequested) OccurredAt() time.Time { return e.At }

type ConnectionResponded struct {
	Connection domain.Connection
	Decision   domain.ConnectionDecision
	At         time.Time
}

func (e ConnectionResponded) EventID() uuid.UUID {
	return TransitionEventID(e.Connection.ID, e.Connection.Status)
}

func (e ConnectionResponded) OccurredAt() time.Time { return e.At }

type ConnectionCancelled struct {
	Connection domain.Connection
	ActorID    uuid.UUID
	At         time.Time
}

func (e ConnectionCancelled) EventID() uuid.UUID {
	return TransitionEventID(e.Connection.ID, domain.ConnectionCancelled)
}

func (e ConnectionCancelled) OccurredAt() time.Time { return e.At }

type MessageSent struct {
	Message domain.Message
	At      time.Time
}

func (e MessageSent) EventID() uuid.UUID { return MessageEventID(e.Message.ID) }

func (e MessageSent) OccurredAt() time.Time { return e.At }

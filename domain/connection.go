package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "PENDING"
	ConnectionAccepted  ConnectionStatus = "ACCEPTED"
	ConnectionRejected  ConnectionStatus = "REJECTED"
	ConnectionCancelled ConnectionStatus = "CANCELLED"
)

// Active statuses are the ones covered by the "one active connection per
// unordered pair" invariant.
func (s ConnectionStatus) Active() bool {
	return s == ConnectionPending || s == ConnectionAccepted
}

// Terminal statuses have no outgoing transition.
func (s ConnectionStatus) Terminal() bool {
	return s == ConnectionRejected || s == ConnectionCancelled
}

type Connection struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
	RecipientID uuid.UUID
	Status      ConnectionStatus
	Message     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Peer returns the other side of the connection, regardless of which side
// initiated. Returns uuid.Nil if the member is not a party.
func (c Connection) Peer(member uuid.UUID) uuid.UUID {
	switch member {
	case c.RequesterID:
		return c.RecipientID
	case c.RecipientID:
		return c.RequesterID
	default:
		return uuid.Nil
	}
}

func (c Connection) HasParty(member uuid.UUID) bool {
	return member == c.RequesterID || member == c.RecipientID
}

type ConnectionDecision string

const (
	DecisionAccept ConnectionDecision = "ACCEPT"
	DecisionReject ConnectionDecision = "REJECT"
)

// PairKey normalizes an unordered member pair into a canonical string,
// used as the uniqueness key for active connections.
func PairKey(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if strings.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	return lo + ":" + hi
}

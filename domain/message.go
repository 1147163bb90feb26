package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageText  MessageType = "TEXT"
	MessageImage MessageType = "IMAGE"
	MessageFile  MessageType = "FILE"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile:
		return true
	}
	return false
}

// Message is only legal while an ACCEPTED connection exists between the two
// members at send time. IsRead flips false to true exactly once.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
	Type        MessageType
	IsRead      bool
	CreatedAt   time.Time
}

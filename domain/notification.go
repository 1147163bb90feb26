package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifConnectionRequest  NotificationType = "CONNECTION_REQUEST"
	NotifConnectionAccepted NotificationType = "CONNECTION_ACCEPTED"
	NotifMessage            NotificationType = "MESSAGE"
	NotifCallRequest        NotificationType = "CALL_REQUEST"
	NotifCallAccepted       NotificationType = "CALL_ACCEPTED"
	NotifCallRejected       NotificationType = "CALL_REJECTED"
	NotifProfileView        NotificationType = "PROFILE_VIEW"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifConnectionRequest, NotifConnectionAccepted, NotifMessage,
		NotifCallRequest, NotifCallAccepted, NotifCallRejected, NotifProfileView:
		return true
	}
	return false
}

type Notification struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	Payload   map[string]string
	IsRead    bool
	CreatedAt time.Time
}

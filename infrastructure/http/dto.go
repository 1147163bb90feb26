package http

import (
	"alumnet/domain"
	"alumnet/services"
	"time"
)

type connectionDTO struct {
	ID          string `json:"id"`
	RequesterID string `json:"requesterId"`
	RecipientID string `json:"recipientId"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func fromConnection(c domain.Connection) connectionDTO {
	return connectionDTO{
		ID:          c.ID.String(),
		RequesterID: c.RequesterID.String(),
		RecipientID: c.RecipientID.String(),
		Status:      string(c.Status),
		Message:     c.Message,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339Nano),
	}
}

type connectionViewDTO struct {
	ID        string `json:"id"`
	PeerID    string `json:"peerId"`
	Initiator bool   `json:"initiator"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func fromConnectionView(v services.ConnectionView) connectionViewDTO {
	return connectionViewDTO{
		ID:        v.ID.String(),
		PeerID:    v.PeerID.String(),
		Initiator: v.Initiator,
		Status:    string(v.Status),
		Message:   v.Message,
		CreatedAt: v.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: v.UpdatedAt.Format(time.RFC3339Nano),
	}
}

type messageDTO struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	IsRead     bool   `json:"isRead"`
	CreatedAt  string `json:"createdAt"`
}

func fromMessage(m domain.Message) messageDTO {
	return messageDTO{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.RecipientID.String(),
		Content:    m.Content,
		Type:       string(m.Type),
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339Nano),
	}
}

type notificationDTO struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"ownerId"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	IsRead    bool              `json:"isRead"`
	CreatedAt string            `json:"createdAt"`
}

func fromNotification(n domain.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID.String(),
		OwnerID:   n.OwnerID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Payload:   n.Payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
	}
}

type paginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

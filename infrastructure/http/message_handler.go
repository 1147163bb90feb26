package http

import (
	"log/slog"
	"net/http"

	"alumnet/auth"
	"alumnet/domain"
	apperrors "alumnet/errors"
	"alumnet/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type MessageHandler struct {
	messages services.IMessageService
	log      *slog.Logger
}

func NewMessageHandler(messages services.IMessageService, log *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, log: log}
}

// History serves GET /messages?otherUserId=&cursor=&limit=, ascending by
// (createdAt, id). The legacy userId parameter is accepted but must match
// the authenticated caller.
func (h *MessageHandler) History(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}
	if asserted := c.Query("userId"); asserted != "" && asserted != actor.String() {
		writeError(c, h.log, apperrors.ErrActorMismatch)
		return
	}

	other, err := uuid.Parse(c.Query("otherUserId"))
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}
	limit := queryInt(c, "limit", 0)

	messages, next, err := h.messages.History(c.Request.Context(), actor, other, cursor, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response := gin.H{
		"messages": lo.Map(messages, func(m domain.Message, _ int) messageDTO {
			return fromMessage(m)
		}),
	}
	if next != nil {
		response["cursor"] = *next
	}
	c.JSON(http.StatusOK, response)
}

type sendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
	Type       string `json:"type"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	// The body sender id survives for wire compatibility only; the session
	// is the authority on who is sending.
	if req.SenderID != "" && req.SenderID != actor.String() {
		writeError(c, h.log, apperrors.ErrActorMismatch)
		return
	}
	receiver, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	message, err := h.messages.Send(c.Request.Context(), services.SendMessageCommand{
		SenderID:    actor,
		RecipientID: receiver,
		Content:     req.Content,
		Type:        domain.MessageType(req.Type),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fromMessage(message))
}

type markReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Malformed ids are skipped like unknown ones; markRead is
			// idempotent and never errors on individual entries.
			continue
		}
		ids = append(ids, id)
	}

	flipped, err := h.messages.MarkRead(c.Request.Context(), ids, actor)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": flipped})
}

func (h *MessageHandler) Search(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}
	other, err := uuid.Parse(c.Query("otherUserId"))
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	query := c.Query("q")
	if query == "" {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	messages, err := h.messages.Search(c.Request.Context(), actor, other, query, queryInt(c, "limit", 20))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(messages, func(m domain.Message, _ int) messageDTO {
			return fromMessage(m)
		}),
	})
}

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

type NotificationHandler struct {
	notifications services.INotificationService
	log           *slog.Logger
}

func NewNotificationHandler(notifications services.INotificationService, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}
	if asserted := c.Query("userId"); asserted != "" && asserted != actor.String() {
		writeError(c, h.log, apperrors.ErrActorMismatch)
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	unreadOnly := c.Query("unreadOnly") == "true"

	notifications, total, err := h.notifications.List(c.Request.Context(), actor, unreadOnly, page, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": lo.Map(notifications, func(n domain.Notification, _ int) notificationDTO {
			return fromNotification(n)
		}),
		"pagination": paginationDTO{Page: page, Limit: limit, Total: total},
	})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

type patchNotificationsRequest struct {
	NotificationID string `json:"notificationId"`
	MarkAllAsRead  bool   `json:"markAllAsRead"`
}

func (h *NotificationHandler) Patch(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}

	var req patchNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	if req.MarkAllAsRead {
		flipped, err := h.notifications.MarkAllRead(c.Request.Context(), actor)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": flipped})
		return
	}

	id, err := uuid.Parse(req.NotificationID)
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	flipped, err := h.notifications.MarkRead(c.Request.Context(), []uuid.UUID{id}, actor)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": flipped})
}

type notificationEventRequest struct {
	OwnerID string            `json:"ownerId" binding:"required"`
	Type    string            `json:"type" binding:"required"`
	Title   string            `json:"title" binding:"required"`
	Message string            `json:"message"`
	Payload map[string]string `json:"payload"`
	EventID string            `json:"eventId" binding:"required"`
}

// PostEvent lets external collaborators (call signalling, profile views)
// enter the fan-out with their own event id. Replays answer 200 with the
// original row instead of creating a duplicate.
func (h *NotificationHandler) PostEvent(c *gin.Context) {
	var req notificationEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	owner, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	notification, created, err := h.notifications.Notify(c.Request.Context(), services.NotifyCommand{
		OwnerID: owner,
		Type:    domain.NotificationType(req.Type),
		Title:   req.Title,
		Message: req.Message,
		Payload: req.Payload,
		EventID: eventID,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, fromNotification(notification))
}

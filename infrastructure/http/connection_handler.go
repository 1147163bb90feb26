package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"alumnet/auth"
	"alumnet/domain"
	apperrors "alumnet/errors"
	"alumnet/repositories"
	"alumnet/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ConnectionHandler struct {
	graph services.ISocialGraphService
	log   *slog.Logger
}

func NewConnectionHandler(graph services.ISocialGraphService, log *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{graph: graph, log: log}
}

type createConnectionRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Message     string `json:"message"`
}

func (h *ConnectionHandler) Create(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}

	var req createConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	recipient, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	connection, err := h.graph.SendRequest(c.Request.Context(), actor, recipient, req.Message)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, fromConnection(connection))
}

func (h *ConnectionHandler) List(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}

	filter := repositories.ConnectionFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = domain.ConnectionStatus(status)
	}
	switch c.Query("direction") {
	case "sent":
		filter.PendingSentOnly = true
	case "received":
		filter.PendingRecvOnly = true
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	views, total, err := h.graph.List(c.Request.Context(), actor, filter, page, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connections": lo.Map(views, func(v services.ConnectionView, _ int) connectionViewDTO {
			return fromConnectionView(v)
		}),
		"pagination": paginationDTO{Page: page, Limit: limit, Total: total},
	})
}

type updateConnectionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ConnectionHandler) Update(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, h.log, apperrors.ErrConnectionNotFound)
		return
	}

	var req updateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	var connection domain.Connection
	switch domain.ConnectionStatus(req.Status) {
	case domain.ConnectionAccepted:
		connection, err = h.graph.Respond(c.Request.Context(), connectionID, actor, domain.DecisionAccept)
	case domain.ConnectionRejected:
		connection, err = h.graph.Respond(c.Request.Context(), connectionID, actor, domain.DecisionReject)
	case domain.ConnectionCancelled:
		connection, err = h.graph.Cancel(c.Request.Context(), connectionID, actor)
	default:
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fromConnection(connection))
}

// Delete is the cancel alias: DELETE /connections/{id}.
func (h *ConnectionHandler) Delete(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		writeError(c, h.log, apperrors.ErrUnauthenticated)
		return
	}
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, h.log, apperrors.ErrConnectionNotFound)
		return
	}

	connection, err := h.graph.Cancel(c.Request.Context(), connectionID, actor)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fromConnection(connection))
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

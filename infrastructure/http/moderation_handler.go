package http

import (
	"log/slog"
	"net/http"

	apperrors "alumnet/errors"
	"alumnet/moderation"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	gate *moderation.Gate
	log  *slog.Logger
}

func NewModerationHandler(gate *moderation.Gate, log *slog.Logger) *ModerationHandler {
	return &ModerationHandler{gate: gate, log: log}
}

type previewRequest struct {
	Content string `json:"content" binding:"required"`
}

// Preview is the advisory client-side check. It carries no authority: the
// gate runs again inside every send.
func (h *ModerationHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, apperrors.ErrInvalidPayload)
		return
	}

	result, err := h.gate.Preview(c.Request.Context(), req.Content)
	if err != nil {
		writeError(c, h.log, apperrors.ErrModerationUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"label":    string(result.Label),
		"score":    result.Score,
		"feedback": result.Feedback,
	})
}

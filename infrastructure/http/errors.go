package http

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	apperrors "alumnet/errors"

	"github.com/gin-gonic/gin"
)

// writeError maps a service error to the wire taxonomy. Anything outside the
// known sentinels is a dependency failure: it gets logged with full detail
// and surfaced as a generic retryable message, never as raw store text.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case stderrors.Is(err, apperrors.ErrSelfConnection),
		stderrors.Is(err, apperrors.ErrSelfMessage),
		stderrors.Is(err, apperrors.ErrInvalidPayload),
		stderrors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case stderrors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case stderrors.Is(err, apperrors.ErrNotRecipient),
		stderrors.Is(err, apperrors.ErrNotParticipant),
		stderrors.Is(err, apperrors.ErrNotConnected),
		stderrors.Is(err, apperrors.ErrActorMismatch):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case stderrors.Is(err, apperrors.ErrConnectionNotFound),
		stderrors.Is(err, apperrors.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case stderrors.Is(err, apperrors.ErrConnectionExists):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case stderrors.Is(err, apperrors.ErrModerationRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case stderrors.Is(err, apperrors.ErrModerationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "moderation temporarily unavailable, retry later"})
	default:
		log.Error("unhandled service error", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "temporary failure, retry later"})
	}
}

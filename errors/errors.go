package errors

import "fmt"

var (
	ErrSelfConnection        = fmt.Errorf("requester and recipient are the same member")
	ErrConnectionExists      = fmt.Errorf("an active connection already exists for this pair")
	ErrConnectionNotFound    = fmt.Errorf("connection not found")
	ErrNotRecipient          = fmt.Errorf("only the recipient can respond to a request")
	ErrNotParticipant        = fmt.Errorf("member is not a party of this connection")
	ErrInvalidTransition     = fmt.Errorf("connection status does not allow this transition")
	ErrNotConnected          = fmt.Errorf("no accepted connection between sender and recipient")
	ErrSelfMessage           = fmt.Errorf("sender and recipient are the same member")
	ErrMessageNotFound       = fmt.Errorf("message not found")
	ErrModerationRejected    = fmt.Errorf("content rejected by moderation")
	ErrModerationUnavailable = fmt.Errorf("moderation classifier unavailable")
	ErrInvalidPayload        = fmt.Errorf("invalid payload")
	ErrUnauthenticated       = fmt.Errorf("missing or invalid session token")
	ErrActorMismatch         = fmt.Errorf("authenticated member does not match asserted actor")
	ErrWorkerPanic           = fmt.Errorf("worker panic")
)

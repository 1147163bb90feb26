//go:generate go run go.uber.org/mock/mockgen -source=social_graph_service.go -destination=../mocks/mock_social_graph_service.go -package=mocks
package services

import (
	"alumnet/domain"
	"alumnet/domain/event"
	apperrors "alumnet/errors"
	"alumnet/repositories"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type ISocialGraphService interface {
	SendRequest(ctx context.Context, requester, recipient uuid.UUID, message string) (domain.Connection, error)
	Respond(ctx context.Context, connectionID, actingMember uuid.UUID, decision domain.ConnectionDecision) (domain.Connection, error)
	Cancel(ctx context.Context, connectionID, actingMember uuid.UUID) (domain.Connection, error)
	List(ctx context.Context, owner uuid.UUID, filter repositories.ConnectionFilter, page, limit int) ([]ConnectionView, int, error)
	FindAccepted(ctx context.Context, a, b uuid.UUID) (domain.Connection, bool, error)
}

// ConnectionView is the symmetric row exposed to clients: whichever side
// initiated, PeerID is always "the other member".
type ConnectionView struct {
	ID        uuid.UUID
	PeerID    uuid.UUID
	Initiator bool
	Status    domain.ConnectionStatus
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SocialGraphService struct {
	connections repositories.IConnectionRepository
	notifier    INotificationService
	events      chan<- event.DomainEvent
	log         *slog.Logger
}

func NewSocialGraphService(connections repositories.IConnectionRepository,
	notifier INotificationService, events chan<- event.DomainEvent,
	log *slog.Logger) *SocialGraphService {
	return &SocialGraphService{
		connections: connections,
		notifier:    notifier,
		events:      events,
		log:         log,
	}
}

// SendRequest creates a PENDING connection. The repository serializes the
// "at most one active connection per pair" invariant; a concurrent duplicate
// surfaces as ErrConnectionExists.
func (s *SocialGraphService) SendRequest(ctx context.Context, requester, recipient uuid.UUID, message string) (domain.Connection, error) {
	if requester == recipient {
		return domain.Connection{}, apperrors.ErrSelfConnection
	}
	if requester == uuid.Nil || recipient == uuid.Nil {
		return domain.Connection{}, apperrors.ErrInvalidPayload
	}

	now := time.Now().UTC()
	connection := domain.Connection{
		ID:          uuid.New(),
		RequesterID: requester,
		RecipientID: recipient,
		Status:      domain.ConnectionPending,
		Message:     message,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.connections.Create(connection); err != nil {
		return domain.Connection{}, err
	}

	evt := event.ConnectionRequested{Connection: connection, At: now}
	s.fanout(ctx, evt, NotifyCommand{
		OwnerID: recipient,
		Type:    domain.NotifConnectionRequest,
		Title:   "New connection request",
		Message: message,
		Payload: map[string]string{
			"connectionId": connection.ID.String(),
			"requesterId":  requester.String(),
		},
		EventID: evt.EventID(),
	})
	return connection, nil
}

// Respond is legal only for the recipient of a PENDING request.
func (s *SocialGraphService) Respond(ctx context.Context, connectionID, actingMember uuid.UUID, decision domain.ConnectionDecision) (domain.Connection, error) {
	connection, err := s.connections.Get(connectionID)
	if err != nil {
		return domain.Connection{}, err
	}
	if actingMember != connection.RecipientID {
		return domain.Connection{}, apperrors.ErrNotRecipient
	}
	if connection.Status != domain.ConnectionPending {
		return domain.Connection{}, apperrors.ErrInvalidTransition
	}

	target := domain.ConnectionAccepted
	if decision == domain.DecisionReject {
		target = domain.ConnectionRejected
	} else if decision != domain.DecisionAccept {
		return domain.Connection{}, apperrors.ErrInvalidPayload
	}

	updated, err := s.connections.UpdateStatus(connectionID, target, time.Now().UTC())
	if err != nil {
		return domain.Connection{}, err
	}

	evt := event.ConnectionResponded{Connection: updated, Decision: decision, At: updated.UpdatedAt}
	if target == domain.ConnectionAccepted {
		s.fanout(ctx, evt, NotifyCommand{
			OwnerID: updated.RequesterID,
			Type:    domain.NotifConnectionAccepted,
			Title:   "Connection accepted",
			Payload: map[string]string{
				"connectionId": updated.ID.String(),
				"recipientId":  updated.RecipientID.String(),
			},
			EventID: evt.EventID(),
		})
	} else {
		// The notification taxonomy has no entry for a rejection; the
		// requester is deliberately not told. Telemetry still sees it.
		s.emit(evt)
	}
	return updated, nil
}

// Cancel moves a PENDING or ACCEPTED connection to CANCELLED. Either party
// may cancel; ACCEPTED to CANCELLED models a disconnect.
func (s *SocialGraphService) Cancel(ctx context.Context, connectionID, actingMember uuid.UUID) (domain.Connection, error) {
	connection, err := s.connections.Get(connectionID)
	if err != nil {
		return domain.Connection{}, err
	}
	if !connection.HasParty(actingMember) {
		return domain.Connection{}, apperrors.ErrNotParticipant
	}
	if !connection.Status.Active() {
		return domain.Connection{}, apperrors.ErrInvalidTransition
	}

	updated, err := s.connections.UpdateStatus(connectionID, domain.ConnectionCancelled, time.Now().UTC())
	if err != nil {
		return domain.Connection{}, err
	}
	s.emit(event.ConnectionCancelled{Connection: updated, ActorID: actingMember, At: updated.UpdatedAt})
	return updated, nil
}

func (s *SocialGraphService) List(_ context.Context, owner uuid.UUID, filter repositories.ConnectionFilter, page, limit int) ([]ConnectionView, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	connections, total, err := s.connections.ListByMember(owner, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]ConnectionView, 0, len(connections))
	for _, c := range connections {
		views = append(views, ConnectionView{
			ID:        c.ID,
			PeerID:    c.Peer(owner),
			Initiator: c.RequesterID == owner,
			Status:    c.Status,
			Message:   c.Message,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return views, total, nil
}

// FindAccepted reports whether an ACCEPTED connection currently exists for
// the unordered pair. Used by the message service as its authorization check.
func (s *SocialGraphService) FindAccepted(_ context.Context, a, b uuid.UUID) (domain.Connection, bool, error) {
	connection, found, err := s.connections.FindActiveByPair(a, b)
	if err != nil || !found {
		return domain.Connection{}, false, err
	}
	if connection.Status != domain.ConnectionAccepted {
		return domain.Connection{}, false, nil
	}
	return connection, true, nil
}

// fanout delivers the notification synchronously, inside the originating
// operation, then hands the event to the best-effort telemetry stream. A
// notification failure is returned to nobody: the transition already
// committed, and the stable event ID makes a later replay safe.
func (s *SocialGraphService) fanout(ctx context.Context, evt event.DomainEvent, cmd NotifyCommand) {
	if _, _, err := s.notifier.Notify(ctx, cmd); err != nil {
		s.log.Error("notification fan-out failed",
			"event_id", evt.EventID(),
			"error", err,
		)
	}
	s.emit(evt)
}

func (s *SocialGraphService) emit(evt event.DomainEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- evt:
	default:
		s.log.Debug("telemetry event dropped", "event_id", evt.EventID())
	}
}

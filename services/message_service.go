//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"alumnet/domain"
	"alumnet/domain/event"
	apperrors "alumnet/errors"
	"alumnet/moderation"
	"alumnet/repositories"
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

type IMessageService interface {
	Send(ctx context.Context, cmd SendMessageCommand) (domain.Message, error)
	History(ctx context.Context, memberA, memberB uuid.UUID, cursor *string, limit int) ([]domain.Message, *string, error)
	MarkRead(ctx context.Context, ids []uuid.UUID, actingMember uuid.UUID) (int, error)
	Search(ctx context.Context, member, peer uuid.UUID, query string, limit int) ([]domain.Message, error)
}

type SendMessageCommand struct {
	SenderID    uuid.UUID `validate:"required"`
	RecipientID uuid.UUID `validate:"required"`
	Content     string    `validate:"required,max=4096"`
	Type        domain.MessageType
}

type MessageService struct {
	messages repositories.IMessageRepository
	graph    ISocialGraphService
	gate     *moderation.Gate
	notifier INotificationService
	index    *repositories.MessageIndex
	events   chan<- event.DomainEvent
	log      *slog.Logger
}

func NewMessageService(messages repositories.IMessageRepository,
	graph ISocialGraphService, gate *moderation.Gate,
	notifier INotificationService, index *repositories.MessageIndex,
	events chan<- event.DomainEvent, log *slog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		graph:    graph,
		gate:     gate,
		notifier: notifier,
		index:    index,
		events:   events,
		log:      log,
	}
}

// Send persists a message between two connected members. The checks run in
// order: shape, accepted connection, moderation. Moderation runs here, at
// the authoritative write boundary, and fails closed: a classifier outage
// blocks the send exactly like a toxic verdict.
func (s *MessageService) Send(ctx context.Context, cmd SendMessageCommand) (domain.Message, error) {
	if cmd.SenderID == cmd.RecipientID {
		return domain.Message{}, apperrors.ErrSelfMessage
	}
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, apperrors.ErrInvalidPayload
	}
	if cmd.Type == "" {
		cmd.Type = domain.MessageText
	}
	if !cmd.Type.Valid() {
		return domain.Message{}, apperrors.ErrInvalidPayload
	}

	if _, connected, err := s.graph.FindAccepted(ctx, cmd.SenderID, cmd.RecipientID); err != nil {
		return domain.Message{}, err
	} else if !connected {
		return domain.Message{}, apperrors.ErrNotConnected
	}

	if err := s.gate.Check(ctx, cmd.Content); err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    cmd.SenderID,
		RecipientID: cmd.RecipientID,
		Content:     cmd.Content,
		Type:        cmd.Type,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, err
	}

	evt := event.MessageSent{Message: message, At: message.CreatedAt}
	if _, _, err := s.notifier.Notify(ctx, NotifyCommand{
		OwnerID: cmd.RecipientID,
		Type:    domain.NotifMessage,
		Title:   "New message",
		Payload: map[string]string{
			"messageId": message.ID.String(),
			"senderId":  cmd.SenderID.String(),
		},
		EventID: evt.EventID(),
	}); err != nil {
		s.log.Error("notification fan-out failed", "event_id", evt.EventID(), "error", err)
	}
	s.emit(evt)
	return message, nil
}

// History is the replayable conversation read: ascending (createdAt, id),
// identical between calls with no intervening Send, resumable via the
// opaque cursor.
func (s *MessageService) History(_ context.Context, memberA, memberB uuid.UUID, cursor *string, limit int) ([]domain.Message, *string, error) {
	if limit < 1 {
		limit = 0 // full window
	}
	return s.messages.History(memberA, memberB, cursor, limit)
}

func (s *MessageService) MarkRead(_ context.Context, ids []uuid.UUID, actingMember uuid.UUID) (int, error) {
	return s.messages.MarkRead(ids, actingMember)
}

// Search queries the full-text index for the pair's conversation and
// re-reads each hit from the store. The index trails the store by a fan-out
// hop, so a message sent a moment ago may not surface yet.
func (s *MessageService) Search(ctx context.Context, member, peer uuid.UUID, query string, limit int) ([]domain.Message, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	ids, err := s.index.Search(ctx, member, peer, query, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.messages.Get(id)
		if err != nil {
			s.log.Warn("indexed message missing from store", "message_id", id)
			continue
		}
		messages = append(messages, message)
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID.String() < messages[j].ID.String()
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (s *MessageService) emit(evt event.DomainEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- evt:
	default:
		s.log.Debug("telemetry event dropped", "event_id", evt.EventID())
	}
}

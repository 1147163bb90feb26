//go:generate go run go.uber.org/mock/mockgen -source=notification_service.go -destination=../mocks/mock_notification_service.go -package=mocks
package services

import (
	"alumnet/domain"
	apperrors "alumnet/errors"
	"alumnet/repositories"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type INotificationService interface {
	Notify(ctx context.Context, cmd NotifyCommand) (domain.Notification, bool, error)
	List(ctx context.Context, owner uuid.UUID, unreadOnly bool, page, limit int) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, ids []uuid.UUID, owner uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, owner uuid.UUID) (int, error)
	UnreadCount(ctx context.Context, owner uuid.UUID) (int, error)
}

type NotifyCommand struct {
	OwnerID uuid.UUID               `validate:"required"`
	Type    domain.NotificationType `validate:"required"`
	Title   string                  `validate:"required,max=256"`
	Message string                  `validate:"max=1024"`
	Payload map[string]string
	EventID uuid.UUID `validate:"required"`
}

type NotificationService struct {
	repository repositories.INotificationRepository
	log        *slog.Logger
}

func NewNotificationService(repository repositories.INotificationRepository, log *slog.Logger) *NotificationService {
	return &NotificationService{repository: repository, log: log}
}

// Notify appends a notification row, idempotent per event ID. The bool
// result reports whether a new row was created; a replay returns the
// original row and false.
func (s *NotificationService) Notify(_ context.Context, cmd NotifyCommand) (domain.Notification, bool, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Notification{}, false, apperrors.ErrInvalidPayload
	}
	if !cmd.Type.Valid() {
		return domain.Notification{}, false, apperrors.ErrInvalidPayload
	}

	notification := domain.Notification{
		ID:        uuid.New(),
		OwnerID:   cmd.OwnerID,
		Type:      cmd.Type,
		Title:     cmd.Title,
		Message:   cmd.Message,
		Payload:   cmd.Payload,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}

	stored, created, err := s.repository.Append(notification, cmd.EventID)
	if err != nil {
		return domain.Notification{}, false, err
	}
	if !created {
		s.log.Debug("notification replay suppressed", "event_id", cmd.EventID)
	}
	return stored, created, nil
}

func (s *NotificationService) List(_ context.Context, owner uuid.UUID, unreadOnly bool, page, limit int) ([]domain.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	return s.repository.List(owner, unreadOnly, page, limit)
}

func (s *NotificationService) MarkRead(_ context.Context, ids []uuid.UUID, owner uuid.UUID) (int, error) {
	return s.repository.MarkRead(ids, owner)
}

func (s *NotificationService) MarkAllRead(_ context.Context, owner uuid.UUID) (int, error) {
	return s.repository.MarkAllRead(owner)
}

func (s *NotificationService) UnreadCount(_ context.Context, owner uuid.UUID) (int, error) {
	return s.repository.UnreadCount(owner)
}

package repositories

import (
	"log/slog"
	"testing"
	"time"

	"alumnet/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func messageNotification(owner uuid.UUID, at time.Time) domain.Notification {
	return domain.Notification{
		ID:        uuid.New(),
		OwnerID:   owner,
		Type:      domain.NotifMessage,
		Title:     "New message",
		Message:   "You have a new message",
		Payload:   map[string]string{"senderId": uuid.NewString()},
		CreatedAt: at,
	}
}

func Test_Append_Dedups_On_EventID(t *testing.T) {
	req := require.New(t)
	repository := NewNotificationRepository(openTestDB(t), slog.Default())

	owner := uuid.New()
	eventID := uuid.New()
	original := messageNotification(owner, time.Now().UTC())

	stored, created, err := repository.Append(original, eventID)
	req.NoError(err)
	req.True(created)
	req.Equal(original.ID, stored.ID)

	// Replaying the same event with a fresh row returns the original row
	// and writes nothing.
	replay := messageNotification(owner, time.Now().UTC())
	stored, created, err = repository.Append(replay, eventID)
	req.NoError(err)
	req.False(created)
	req.Equal(original.ID, stored.ID)

	_, total, err := repository.List(owner, false, 1, 10)
	req.NoError(err)
	req.Equal(1, total)
}

func Test_List_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewNotificationRepository(openTestDB(t), slog.Default())

	owner := uuid.New()
	base := time.Now().UTC()
	oldest := messageNotification(owner, base)
	middle := messageNotification(owner, base.Add(time.Second))
	newest := messageNotification(owner, base.Add(2*time.Second))
	for _, n := range []domain.Notification{middle, newest, oldest} {
		_, _, err := repository.Append(n, uuid.New())
		req.NoError(err)
	}

	rows, total, err := repository.List(owner, false, 1, 10)
	req.NoError(err)
	req.Equal(3, total)
	req.Equal(newest.ID, rows[0].ID)
	req.Equal(middle.ID, rows[1].ID)
	req.Equal(oldest.ID, rows[2].ID)

	// Page 2 of size 2.
	rows, _, err = repository.List(owner, false, 2, 2)
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal(oldest.ID, rows[0].ID)
}

func Test_List_Unread_Only(t *testing.T) {
	req := require.New(t)
	repository := NewNotificationRepository(openTestDB(t), slog.Default())

	owner := uuid.New()
	seen := messageNotification(owner, time.Now().UTC())
	fresh := messageNotification(owner, time.Now().UTC().Add(time.Second))
	for _, n := range []domain.Notification{seen, fresh} {
		_, _, err := repository.Append(n, uuid.New())
		req.NoError(err)
	}
	_, err := repository.MarkRead([]uuid.UUID{seen.ID}, owner)
	req.NoError(err)

	rows, total, err := repository.List(owner, true, 1, 10)
	req.NoError(err)
	req.Equal(1, total)
	req.Equal(fresh.ID, rows[0].ID)
}

func Test_MarkRead_Skips_Foreign_Rows(t *testing.T) {
	req := require.New(t)
	repository := NewNotificationRepository(openTestDB(t), slog.Default())

	owner, stranger := uuid.New(), uuid.New()
	mine := messageNotification(owner, time.Now().UTC())
	_, _, err := repository.Append(mine, uuid.New())
	req.NoError(err)

	flipped, err := repository.MarkRead([]uuid.UUID{mine.ID, uuid.New()}, stranger)
	req.NoError(err)
	req.Equal(0, flipped)

	count, err := repository.UnreadCount(owner)
	req.NoError(err)
	req.Equal(1, count)
}

func Test_MarkAllRead_And_UnreadCount(t *testing.T) {
	req := require.New(t)
	repository := NewNotificationRepository(openTestDB(t), slog.Default())

	owner := uuid.New()
	base := time.Now().UTC()
	for i := 0; i < 4; i++ {
		_, _, err := repository.Append(messageNotification(owner, base.Add(time.Duration(i)*time.Second)), uuid.New())
		req.NoError(err)
	}

	count, err := repository.UnreadCount(owner)
	req.NoError(err)
	req.Equal(4, count)

	flipped, err := repository.MarkAllRead(owner)
	req.NoError(err)
	req.Equal(4, flipped)

	count, err = repository.UnreadCount(owner)
	req.NoError(err)
	req.Equal(0, count)

	// Idempotent.
	flipped, err = repository.MarkAllRead(owner)
	req.NoError(err)
	req.Equal(0, flipped)
}

//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"alumnet/domain"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type INotificationRepository interface {
	Append(notification domain.Notification, eventID uuid.UUID) (domain.Notification, bool, error)
	List(owner uuid.UUID, unreadOnly bool, page, limit int) ([]domain.Notification, int, error)
	MarkRead(ids []uuid.UUID, owner uuid.UUID) (int, error)
	MarkAllRead(owner uuid.UUID) (int, error)
	UnreadCount(owner uuid.UUID) (int, error)
}

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) NotificationRepository {
	return NotificationRepository{db: db, log: log}
}

type notificationRecord struct {
	ID        string
	OwnerID   string
	Type      string
	Title     string
	Message   string
	Payload   map[string]string
	IsRead    bool
	CreatedAt int64
}

// ntfKey inverts the timestamp so a forward prefix scan yields rows newest
// first, which is the contract of the notification feed.
func ntfKey(n domain.Notification) []byte {
	return []byte(fmt.Sprintf("ntf:%s:%019d:%s",
		n.OwnerID,
		math.MaxInt64-n.CreatedAt.UnixNano(),
		n.ID,
	))
}

func ntfIDKey(id uuid.UUID) []byte {
	return []byte("ntfid:" + id.String())
}

func ntfEventKey(eventID uuid.UUID) []byte {
	return []byte("ntfevent:" + eventID.String())
}

// Append writes the row unless the event ID was already consumed. Replaying
// an event returns the original row with created=false and no side effect:
// the dedup key and the row are committed in the same transaction, so there
// is no window where one exists without the other.
func (r NotificationRepository) Append(notification domain.Notification, eventID uuid.UUID) (domain.Notification, bool, error) {
	created := false
	result := notification

	apply := func() error {
		created = false
		result = notification
		return r.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(ntfEventKey(eventID))
			if err == nil {
				var primary []byte
				if err := item.Value(func(val []byte) error {
					primary = append([]byte{}, val...)
					return nil
				}); err != nil {
					return err
				}
				existing, err := r.read(txn, primary)
				if err != nil {
					return err
				}
				result = existing
				return nil
			}
			if err != badger.ErrKeyNotFound {
				return err
			}

			data, err := cbor.Marshal(fromNotification(notification))
			if err != nil {
				return fmt.Errorf("marshal failed: %w", err)
			}
			primary := ntfKey(notification)
			if err := txn.Set(ntfEventKey(eventID), primary); err != nil {
				return err
			}
			if err := txn.Set(ntfIDKey(notification.ID), primary); err != nil {
				return err
			}
			if err := txn.Set(primary, data); err != nil {
				return err
			}
			created = true
			return nil
		})
	}

	err := apply()
	for attempt := 0; err == badger.ErrConflict && attempt < 3; attempt++ {
		err = apply()
	}
	if err != nil {
		return domain.Notification{}, false, err
	}
	return result, created, nil
}

func (r NotificationRepository) List(owner uuid.UUID, unreadOnly bool, page, limit int) ([]domain.Notification, int, error) {
	var matching []domain.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("ntf:" + owner.String() + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record notificationRecord
			if err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			if unreadOnly && record.IsRead {
				continue
			}
			notification, err := toNotification(record)
			if err != nil {
				return err
			}
			matching = append(matching, notification)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	total := len(matching)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Notification{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matching[start:end], total, nil
}

// MarkRead flips rows owned by the caller; foreign and unknown ids are
// skipped silently.
func (r NotificationRepository) MarkRead(ids []uuid.UUID, owner uuid.UUID) (int, error) {
	flipped := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(ntfIDKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var primary []byte
			if err := item.Value(func(val []byte) error {
				primary = append([]byte{}, val...)
				return nil
			}); err != nil {
				return err
			}
			n, err := r.flip(txn, primary, owner)
			if err != nil {
				return err
			}
			flipped += n
		}
		return nil
	})
	return flipped, err
}

func (r NotificationRepository) MarkAllRead(owner uuid.UUID) (int, error) {
	flipped := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		prefix := []byte("ntf:" + owner.String() + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			n, err := r.flip(txn, key, owner)
			if err != nil {
				return err
			}
			flipped += n
		}
		return nil
	})
	return flipped, err
}

func (r NotificationRepository) UnreadCount(owner uuid.UUID) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("ntf:" + owner.String() + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record notificationRecord
			if err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			if !record.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r NotificationRepository) flip(txn *badger.Txn, primary []byte, owner uuid.UUID) (int, error) {
	record, err := r.readRecord(txn, primary)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if record.OwnerID != owner.String() || record.IsRead {
		return 0, nil
	}
	record.IsRead = true
	data, err := cbor.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("marshal failed: %w", err)
	}
	if err := txn.Set(primary, data); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r NotificationRepository) read(txn *badger.Txn, primary []byte) (domain.Notification, error) {
	record, err := r.readRecord(txn, primary)
	if err != nil {
		return domain.Notification{}, err
	}
	return toNotification(record)
}

func (r NotificationRepository) readRecord(txn *badger.Txn, primary []byte) (notificationRecord, error) {
	item, err := txn.Get(primary)
	if err != nil {
		return notificationRecord{}, err
	}
	var record notificationRecord
	if err := item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &record)
	}); err != nil {
		return notificationRecord{}, err
	}
	return record, nil
}

func fromNotification(n domain.Notification) notificationRecord {
	return notificationRecord{
		ID:        n.ID.String(),
		OwnerID:   n.OwnerID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Payload:   n.Payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UnixNano(),
	}
}

func toNotification(record notificationRecord) (domain.Notification, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Notification{}, err
	}
	ownerID, err := uuid.Parse(record.OwnerID)
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{
		ID:        id,
		OwnerID:   ownerID,
		Type:      domain.NotificationType(record.Type),
		Title:     record.Title,
		Message:   record.Message,
		Payload:   record.Payload,
		IsRead:    record.IsRead,
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}

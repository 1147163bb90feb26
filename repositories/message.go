//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"alumnet/domain"
	apperrors "alumnet/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	History(a, b uuid.UUID, cursor *string, limit int) ([]domain.Message, *string, error)
	MarkRead(ids []uuid.UUID, actingMember uuid.UUID) (int, error)
	Get(id uuid.UUID) (domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type messageRecord struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string
	Type        string
	IsRead      bool
	CreatedAt   int64
}

// msgKey is "msg:{pair}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes lexicographical order equal to
//     chronological order within a pair.
//  2. The UUID suffix breaks ties between the two independent senders when
//     writes land on the same nanosecond, giving the (createdAt, id) order.
func msgKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%s", domain.PairKey(m.SenderID, m.RecipientID), msgKeySuffix(m)))
}

func msgKeySuffix(m domain.Message) string {
	return fmt.Sprintf("%019d:%s", m.CreatedAt.UnixNano(), m.ID)
}

func msgIDKey(id uuid.UUID) []byte {
	return []byte("msgid:" + id.String())
}

// Store persists the message row plus an id lookup key pointing back at the
// primary key, both in one transaction.
func (r MessageRepository) Store(message domain.Message) error {
	data, err := cbor.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	primary := msgKey(message)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(msgIDKey(message.ID), primary); err != nil {
			return err
		}
		return txn.Set(primary, data)
	})
}

// History returns messages for the unordered pair ascending by
// (createdAt, id), thanks to the padded key layout. The returned cursor is
// the key suffix of the last row; passing it back resumes strictly after
// that row, so two calls with no intervening Store see identical sequences.
func (r MessageRepository) History(a, b uuid.UUID, cursor *string, limit int) ([]domain.Message, *string, error) {
	var records []messageRecord
	var lastSuffix string

	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", domain.PairKey(a, b))
		prefix := []byte(prefixStr)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if cursor != nil {
			seekKey = append([]byte{}, prefix...)
			seekKey = append(seekKey, []byte(*cursor)...)
		}
		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				break
			}
			item := it.Item()
			lastSuffix = string(item.Key()[len(prefixStr):])
			var record messageRecord
			if err := item.Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(records))
	for _, record := range records {
		message, err := toMessage(record)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	if lastSuffix == "" {
		return messages, cursor, nil
	}
	return messages, &lastSuffix, nil
}

// MarkRead flips isRead for rows whose recipient is the acting member.
// Foreign ids, unknown ids and already-read rows are skipped silently; the
// flag only ever moves false to true. Returns the number of rows flipped.
func (r MessageRepository) MarkRead(ids []uuid.UUID, actingMember uuid.UUID) (int, error) {
	flipped := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			primary, record, err := r.load(txn, id)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			if record.RecipientID != actingMember.String() || record.IsRead {
				continue
			}
			record.IsRead = true
			data, err := cbor.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal failed: %w", err)
			}
			if err := txn.Set(primary, data); err != nil {
				return err
			}
			flipped++
		}
		return nil
	})
	return flipped, err
}

func (r MessageRepository) Get(id uuid.UUID) (domain.Message, error) {
	var record messageRecord
	err := r.db.View(func(txn *badger.Txn) error {
		_, loaded, err := r.load(txn, id)
		if err == badger.ErrKeyNotFound {
			return apperrors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		record = loaded
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(record)
}

func (r MessageRepository) load(txn *badger.Txn, id uuid.UUID) ([]byte, messageRecord, error) {
	item, err := txn.Get(msgIDKey(id))
	if err != nil {
		return nil, messageRecord{}, err
	}
	var primary []byte
	if err := item.Value(func(val []byte) error {
		primary = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, messageRecord{}, err
	}
	item, err = txn.Get(primary)
	if err != nil {
		return nil, messageRecord{}, err
	}
	var record messageRecord
	if err := item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &record)
	}); err != nil {
		return nil, messageRecord{}, err
	}
	return primary, record, nil
}

func fromMessage(m domain.Message) messageRecord {
	return messageRecord{
		ID:          m.ID.String(),
		SenderID:    m.SenderID.String(),
		RecipientID: m.RecipientID.String(),
		Content:     m.Content,
		Type:        string(m.Type),
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt.UnixNano(),
	}
}

func toMessage(record messageRecord) (domain.Message, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	senderID, err := uuid.Parse(record.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	recipientID, err := uuid.Parse(record.RecipientID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     record.Content,
		Type:        domain.MessageType(record.Type),
		IsRead:      record.IsRead,
		CreatedAt:   time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}

//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../mocks/mock_connection_repository.go -package=mocks
package repositories

import (
	"alumnet/domain"
	apperrors "alumnet/errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IConnectionRepository interface {
	Create(connection domain.Connection) error
	Get(id uuid.UUID) (domain.Connection, error)
	UpdateStatus(id uuid.UUID, status domain.ConnectionStatus, at time.Time) (domain.Connection, error)
	FindActiveByPair(a, b uuid.UUID) (domain.Connection, bool, error)
	ListByMember(member uuid.UUID, filter ConnectionFilter, page, limit int) ([]domain.Connection, int, error)
}

// ConnectionFilter selects which rows of a member's graph are visible.
// The default view returns every non-terminal row; pending rows can be
// narrowed by direction because a member's own outgoing requests and the
// requests waiting on them are different screens.
type ConnectionFilter struct {
	Status          domain.ConnectionStatus
	PendingSentOnly bool
	PendingRecvOnly bool
}

type ConnectionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConnectionRepository(db *badger.DB, log *slog.Logger) ConnectionRepository {
	return ConnectionRepository{db: db, log: log}
}

// connectionRecord is the CBOR shape persisted in Badger.
type connectionRecord struct {
	ID          string
	RequesterID string
	RecipientID string
	Status      string
	Message     string
	CreatedAt   int64
	UpdatedAt   int64
}

func connKey(id uuid.UUID) []byte {
	return []byte("conn:" + id.String())
}

func pairKey(a, b uuid.UUID) []byte {
	return []byte("connpair:" + domain.PairKey(a, b))
}

func memberIdxKey(member, conn uuid.UUID) []byte {
	return []byte(fmt.Sprintf("connidx:%s:%s", member, conn))
}

// Create inserts a PENDING connection. The active-pair key is checked and
// written inside the same Badger transaction, so two concurrent requests for
// the same unordered pair serialize on the store: exactly one wins, the other
// gets ErrConnectionExists.
func (r ConnectionRepository) Create(connection domain.Connection) error {
	data, err := cbor.Marshal(fromConnection(connection))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	insert := func() error {
		return r.db.Update(func(txn *badger.Txn) error {
			pk := pairKey(connection.RequesterID, connection.RecipientID)
			if _, err := txn.Get(pk); err == nil {
				return apperrors.ErrConnectionExists
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Set(pk, []byte(connection.ID.String())); err != nil {
				return err
			}
			if err := txn.Set(memberIdxKey(connection.RequesterID, connection.ID), nil); err != nil {
				return err
			}
			if err := txn.Set(memberIdxKey(connection.RecipientID, connection.ID), nil); err != nil {
				return err
			}
			return txn.Set(connKey(connection.ID), data)
		})
	}

	// Badger detects the read-write race on the pair key and aborts one of
	// two concurrent inserts with ErrConflict. Retrying re-reads the key, so
	// the loser now observes the winner's row and gets ErrConnectionExists.
	err = insert()
	for attempt := 0; err == badger.ErrConflict && attempt < 3; attempt++ {
		err = insert()
	}
	return err
}

func (r ConnectionRepository) Get(id uuid.UUID) (domain.Connection, error) {
	var record connectionRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(connKey(id))
		if err == badger.ErrKeyNotFound {
			return apperrors.ErrConnectionNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.Connection{}, err
	}
	return toConnection(record)
}

// UpdateStatus rewrites the row with the new status and releases the
// active-pair key when the transition is terminal. Row load and rewrite share
// one transaction.
func (r ConnectionRepository) UpdateStatus(id uuid.UUID, status domain.ConnectionStatus, at time.Time) (domain.Connection, error) {
	var updated domain.Connection
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(connKey(id))
		if err == badger.ErrKeyNotFound {
			return apperrors.ErrConnectionNotFound
		}
		if err != nil {
			return err
		}
		var record connectionRecord
		if err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		current, err := toConnection(record)
		if err != nil {
			return err
		}

		current.Status = status
		current.UpdatedAt = at
		data, err := cbor.Marshal(fromConnection(current))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		if err := txn.Set(connKey(id), data); err != nil {
			return err
		}

		if status.Terminal() {
			pk := pairKey(current.RequesterID, current.RecipientID)
			// Only release the pair key if it still points at this row.
			item, err := txn.Get(pk)
			if err == nil {
				var owner string
				if err := item.Value(func(val []byte) error {
					owner = string(val)
					return nil
				}); err != nil {
					return err
				}
				if owner == id.String() {
					if err := txn.Delete(pk); err != nil {
						return err
					}
				}
			} else if err != badger.ErrKeyNotFound {
				return err
			}
		}
		updated = current
		return nil
	})
	return updated, err
}

// FindActiveByPair resolves the unordered pair key to its connection, if any.
func (r ConnectionRepository) FindActiveByPair(a, b uuid.UUID) (domain.Connection, bool, error) {
	var connID string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(a, b))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			connID = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Connection{}, false, nil
	}
	if err != nil {
		return domain.Connection{}, false, err
	}

	id, err := uuid.Parse(connID)
	if err != nil {
		return domain.Connection{}, false, err
	}
	connection, err := r.Get(id)
	if err != nil {
		return domain.Connection{}, false, err
	}
	return connection, true, nil
}

// ListByMember scans the member index, loads each row and applies the filter.
// Rows are returned newest first; page starts at 1.
func (r ConnectionRepository) ListByMember(member uuid.UUID, filter ConnectionFilter, page, limit int) ([]domain.Connection, int, error) {
	var connections []domain.Connection
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("connidx:" + member.String() + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			connID := string(it.Item().Key()[len(prefix):])
			id, err := uuid.Parse(connID)
			if err != nil {
				r.log.Warn("skipping malformed index key", "key", connID)
				continue
			}
			item, err := txn.Get(connKey(id))
			if err != nil {
				return err
			}
			var record connectionRecord
			if err := item.Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			connection, err := toConnection(record)
			if err != nil {
				return err
			}
			if matchesFilter(connection, member, filter) {
				connections = append(connections, connection)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(connections, func(i, j int) bool {
		if connections[i].CreatedAt.Equal(connections[j].CreatedAt) {
			return connections[i].ID.String() > connections[j].ID.String()
		}
		return connections[i].CreatedAt.After(connections[j].CreatedAt)
	})

	total := len(connections)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Connection{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return connections[start:end], total, nil
}

func matchesFilter(c domain.Connection, member uuid.UUID, filter ConnectionFilter) bool {
	if filter.Status == "" {
		return c.Status.Active()
	}
	if c.Status != filter.Status {
		return false
	}
	if filter.PendingSentOnly && c.RequesterID != member {
		return false
	}
	if filter.PendingRecvOnly && c.RecipientID != member {
		return false
	}
	return true
}

func fromConnection(c domain.Connection) connectionRecord {
	return connectionRecord{
		ID:          c.ID.String(),
		RequesterID: c.RequesterID.String(),
		RecipientID: c.RecipientID.String(),
		Status:      string(c.Status),
		Message:     c.Message,
		CreatedAt:   c.CreatedAt.UnixNano(),
		UpdatedAt:   c.UpdatedAt.UnixNano(),
	}
}

func toConnection(record connectionRecord) (domain.Connection, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Connection{}, err
	}
	requesterID, err := uuid.Parse(record.RequesterID)
	if err != nil {
		return domain.Connection{}, err
	}
	recipientID, err := uuid.Parse(record.RecipientID)
	if err != nil {
		return domain.Connection{}, err
	}
	return domain.Connection{
		ID:          id,
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      domain.ConnectionStatus(record.Status),
		Message:     record.Message,
		CreatedAt:   time.Unix(0, record.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, record.UpdatedAt).UTC(),
	}, nil
}

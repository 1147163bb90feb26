package repositories

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"alumnet/domain"
	apperrors "alumnet/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pendingConnection(requester, recipient uuid.UUID) domain.Connection {
	now := time.Now().UTC()
	return domain.Connection{
		ID:          uuid.New(),
		RequesterID: requester,
		RecipientID: recipient,
		Status:      domain.ConnectionPending,
		Message:     "Hi",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func Test_Create_And_Get_Connection(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	connection := pendingConnection(uuid.New(), uuid.New())
	req.NoError(repository.Create(connection))

	fetched, err := repository.Get(connection.ID)
	req.NoError(err)
	req.Equal(connection.ID, fetched.ID)
	req.Equal(domain.ConnectionPending, fetched.Status)
	req.Equal("Hi", fetched.Message)
}

func Test_Create_Rejects_Second_Active_Connection_For_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	alice, bob := uuid.New(), uuid.New()
	req.NoError(repository.Create(pendingConnection(alice, bob)))

	// Same pair, opposite direction: still one unordered pair.
	err := repository.Create(pendingConnection(bob, alice))
	req.ErrorIs(err, apperrors.ErrConnectionExists)
}

func Test_Create_Concurrent_Same_Pair_Exactly_One_Wins(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	alice, bob := uuid.New(), uuid.New()
	const attempts = 16
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repository.Create(pendingConnection(alice, bob))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			req.ErrorIs(err, apperrors.ErrConnectionExists)
		}
	}
	req.Equal(1, winners)
}

func Test_Terminal_Transition_Frees_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	alice, bob := uuid.New(), uuid.New()
	first := pendingConnection(alice, bob)
	req.NoError(repository.Create(first))

	updated, err := repository.UpdateStatus(first.ID, domain.ConnectionCancelled, time.Now().UTC())
	req.NoError(err)
	req.Equal(domain.ConnectionCancelled, updated.Status)

	// The pair is free again, so a fresh request succeeds.
	req.NoError(repository.Create(pendingConnection(bob, alice)))
}

func Test_Accepted_Keeps_Pair_Occupied(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	alice, bob := uuid.New(), uuid.New()
	first := pendingConnection(alice, bob)
	req.NoError(repository.Create(first))

	_, err := repository.UpdateStatus(first.ID, domain.ConnectionAccepted, time.Now().UTC())
	req.NoError(err)

	err = repository.Create(pendingConnection(alice, bob))
	req.ErrorIs(err, apperrors.ErrConnectionExists)

	connection, found, err := repository.FindActiveByPair(bob, alice)
	req.NoError(err)
	req.True(found)
	req.Equal(domain.ConnectionAccepted, connection.Status)
}

func Test_Get_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	_, err := repository.Get(uuid.New())
	req.ErrorIs(err, apperrors.ErrConnectionNotFound)
}

func Test_ListByMember_Filters_And_Pagination(t *testing.T) {
	req := require.New(t)
	repository := NewConnectionRepository(openTestDB(t), slog.Default())

	owner := uuid.New()
	accepted := pendingConnection(owner, uuid.New())
	req.NoError(repository.Create(accepted))
	_, err := repository.UpdateStatus(accepted.ID, domain.ConnectionAccepted, time.Now().UTC())
	req.NoError(err)

	sent := pendingConnection(owner, uuid.New())
	sent.CreatedAt = sent.CreatedAt.Add(time.Second)
	req.NoError(repository.Create(sent))

	received := pendingConnection(uuid.New(), owner)
	received.CreatedAt = received.CreatedAt.Add(2 * time.Second)
	req.NoError(repository.Create(received))

	rejected := pendingConnection(owner, uuid.New())
	req.NoError(repository.Create(rejected))
	_, err = repository.UpdateStatus(rejected.ID, domain.ConnectionRejected, time.Now().UTC())
	req.NoError(err)

	// Default view: active rows only, newest first.
	rows, total, err := repository.ListByMember(owner, ConnectionFilter{}, 1, 10)
	req.NoError(err)
	req.Equal(3, total)
	req.Len(rows, 3)
	req.Equal(received.ID, rows[0].ID)

	// Pending sent only.
	rows, _, err = repository.ListByMember(owner, ConnectionFilter{
		Status:          domain.ConnectionPending,
		PendingSentOnly: true,
	}, 1, 10)
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal(sent.ID, rows[0].ID)

	// Pending received only.
	rows, _, err = repository.ListByMember(owner, ConnectionFilter{
		Status:          domain.ConnectionPending,
		PendingRecvOnly: true,
	}, 1, 10)
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal(received.ID, rows[0].ID)

	// Pagination: page 2 of size 2 holds the oldest active row.
	rows, total, err = repository.ListByMember(owner, ConnectionFilter{}, 2, 2)
	req.NoError(err)
	req.Equal(3, total)
	req.Len(rows, 1)
	req.Equal(accepted.ID, rows[0].ID)
}

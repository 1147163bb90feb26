package services

import (
	"context"
	"log/slog"
	"testing"

	"alumnet/domain"
	"alumnet/domain/event"
	apperrors "alumnet/errors"
	"alumnet/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type graphFixture struct {
	graph         *SocialGraphService
	notifications *NotificationService
	events        chan event.DomainEvent
}

func newGraphFixture(t *testing.T) graphFixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	events := make(chan event.DomainEvent, 16)
	notifications := NewNotificationService(repositories.NewNotificationRepository(db, log), log)
	graph := NewSocialGraphService(repositories.NewConnectionRepository(db, log), notifications, events, log)
	return graphFixture{graph: graph, notifications: notifications, events: events}
}

func Test_SendRequest_Creates_Pending_And_Notifies_Recipient(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	connection, err := fx.graph.SendRequest(ctx, alice, bob, "We met at the reunion")
	req.NoError(err)
	req.Equal(domain.ConnectionPending, connection.Status)

	rows, total, err := fx.notifications.List(ctx, bob, false, 1, 10)
	req.NoError(err)
	req.Equal(1, total)
	req.Equal(domain.NotifConnectionRequest, rows[0].Type)
	req.Equal(connection.ID.String(), rows[0].Payload["connectionId"])

	// The requester gets nothing.
	_, total, err = fx.notifications.List(ctx, alice, false, 1, 10)
	req.NoError(err)
	req.Equal(0, total)
}

func Test_SendRequest_Rejects_Self(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)

	member := uuid.New()
	_, err := fx.graph.SendRequest(context.Background(), member, member, "")
	req.ErrorIs(err, apperrors.ErrSelfConnection)
}

func Test_SendRequest_Duplicate_Pair(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	_, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)

	_, err = fx.graph.SendRequest(ctx, bob, alice, "")
	req.ErrorIs(err, apperrors.ErrConnectionExists)
}

func Test_Respond_Accept_Notifies_Requester(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	connection, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)

	accepted, err := fx.graph.Respond(ctx, connection.ID, bob, domain.DecisionAccept)
	req.NoError(err)
	req.Equal(domain.ConnectionAccepted, accepted.Status)

	rows, total, err := fx.notifications.List(ctx, alice, false, 1, 10)
	req.NoError(err)
	req.Equal(1, total)
	req.Equal(domain.NotifConnectionAccepted, rows[0].Type)

	_, found, err := fx.graph.FindAccepted(ctx, bob, alice)
	req.NoError(err)
	req.True(found)
}

func Test_Respond_Only_Recipient_May_Decide(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	connection, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)

	// Neither the requester nor a stranger can respond.
	_, err = fx.graph.Respond(ctx, connection.ID, alice, domain.DecisionAccept)
	req.ErrorIs(err, apperrors.ErrNotRecipient)

	_, err = fx.graph.Respond(ctx, connection.ID, uuid.New(), domain.DecisionAccept)
	req.ErrorIs(err, apperrors.ErrNotRecipient)
}

func Test_Respond_Reject_Is_Terminal_And_Silent(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	connection, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)

	rejected, err := fx.graph.Respond(ctx, connection.ID, bob, domain.DecisionReject)
	req.NoError(err)
	req.Equal(domain.ConnectionRejected, rejected.Status)

	// No notification reaches the requester about the rejection.
	rows, _, err := fx.notifications.List(ctx, alice, false, 1, 10)
	req.NoError(err)
	req.Empty(rows)

	// REJECTED has no outgoing transition.
	_, err = fx.graph.Respond(ctx, connection.ID, bob, domain.DecisionAccept)
	req.ErrorIs(err, apperrors.ErrInvalidTransition)
	_, err = fx.graph.Cancel(ctx, connection.ID, alice)
	req.ErrorIs(err, apperrors.ErrInvalidTransition)

	// The pair is free for a fresh request.
	_, err = fx.graph.SendRequest(ctx, alice, bob, "second try")
	req.NoError(err)
}

func Test_Cancel_By_Either_Party(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()

	// Requester withdraws a pending request.
	pending, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)
	cancelled, err := fx.graph.Cancel(ctx, pending.ID, alice)
	req.NoError(err)
	req.Equal(domain.ConnectionCancelled, cancelled.Status)

	// Recipient disconnects an accepted connection.
	connection, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)
	_, err = fx.graph.Respond(ctx, connection.ID, bob, domain.DecisionAccept)
	req.NoError(err)
	_, err = fx.graph.Cancel(ctx, connection.ID, bob)
	req.NoError(err)

	_, found, err := fx.graph.FindAccepted(ctx, alice, bob)
	req.NoError(err)
	req.False(found)

	// A stranger cannot cancel.
	third, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)
	_, err = fx.graph.Cancel(ctx, third.ID, uuid.New())
	req.ErrorIs(err, apperrors.ErrNotParticipant)
}

func Test_List_Exposes_Symmetric_Views(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	connection, err := fx.graph.SendRequest(ctx, alice, bob, "hello")
	req.NoError(err)

	mine, _, err := fx.graph.List(ctx, alice, repositories.ConnectionFilter{}, 1, 10)
	req.NoError(err)
	req.Len(mine, 1)
	req.Equal(bob, mine[0].PeerID)
	req.True(mine[0].Initiator)

	theirs, _, err := fx.graph.List(ctx, bob, repositories.ConnectionFilter{}, 1, 10)
	req.NoError(err)
	req.Len(theirs, 1)
	req.Equal(alice, theirs[0].PeerID)
	req.False(theirs[0].Initiator)
	req.Equal(connection.ID, theirs[0].ID)
}

func Test_FindAccepted_Ignores_Pending(t *testing.T) {
	req := require.New(t)
	fx := newGraphFixture(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	_, err := fx.graph.SendRequest(ctx, alice, bob, "")
	req.NoError(err)

	_, found, err := fx.graph.FindAccepted(ctx, alice, bob)
	req.NoError(err)
	req.False(found)
}

package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_PairKey_Is_Order_Independent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, uuid.New()))
}

func Test_Connection_Peer(t *testing.T) {
	c := Connection{RequesterID: uuid.New(), RecipientID: uuid.New()}
	assert.Equal(t, c.RecipientID, c.Peer(c.RequesterID))
	assert.Equal(t, c.RequesterID, c.Peer(c.RecipientID))
	assert.Equal(t, uuid.Nil, c.Peer(uuid.New()))

	assert.True(t, c.HasParty(c.RequesterID))
	assert.False(t, c.HasParty(uuid.New()))
}

func Test_Status_Classes(t *testing.T) {
	assert.True(t, ConnectionPending.Active())
	assert.True(t, ConnectionAccepted.Active())
	assert.False(t, ConnectionRejected.Active())
	assert.False(t, ConnectionCancelled.Active())

	assert.True(t, ConnectionRejected.Terminal())
	assert.True(t, ConnectionCancelled.Terminal())
	assert.False(t, ConnectionPending.Terminal())
}

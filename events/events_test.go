package events

import (
	"testing"
	"time"

	"github.com/mezonai/pohledger/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusSubscribePublish(t *testing.T) {
	bus := NewEventBus()
	id, ch := bus.Subscribe()
	require.True(t, bus.HasSubscriber(id))
	assert.Equal(t, 1, bus.GetTotalSubscriptions())

	tx := transaction.Transaction{From: "a", To: "b", Amount: 1, Signature: "sig"}
	bus.Publish(NewTransactionAdmitted(tx))

	select {
	case ev := <-ch:
		assert.Equal(t, EventTransactionAdmitted, ev.Type())
		assert.Equal(t, "sig", ev.Key())
		assert.False(t, ev.Timestamp().IsZero())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	assert.Equal(t, 0, bus.GetTotalSubscriptions())
	_, open := <-ch
	assert.False(t, open)
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewEventBus()
	_, ch := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultSubscriberBuffer+10; i++ {
			bus.Publish(NewSlotClosed(uint64(i), 1, 0))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
	assert.Len(t, ch, DefaultSubscriberBuffer)
}

func TestEventKeys(t *testing.T) {
	assert.Equal(t, "slot-3", NewSlotClosed(3, 2, 1).Key())
	assert.Equal(t, "slot-9", NewSlotsIngested(9, 4, 2, "ab").Key())
	assert.Equal(t, "acct", NewAirdropRecorded("acct", 5).Key())
	assert.Equal(t, EventEntryClosed, NewEntryClosed(0, 4, "dd", 0).Type())
}

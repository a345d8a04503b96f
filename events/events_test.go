package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	eventBus := NewEventBus()

	id, eventChan := eventBus.Subscribe()
	assert.Equal(t, 1, eventBus.GetTotalSubscriptions())
	assert.True(t, eventBus.HasSubscriber(id))

	event := NewTransactionProcessed("tx-1", 4, []uint8{3}, time.Now())
	eventBus.Publish(event)

	select {
	case received := <-eventChan:
		assert.Equal(t, EventTransactionProcessed, received.Type())
		assert.Equal(t, "tx-1", received.TxID())
		processed, ok := received.(*TransactionProcessed)
		require.True(t, ok)
		assert.Equal(t, uint64(4), processed.Sequence())
		assert.Equal(t, []uint8{3}, processed.Opcodes())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	assert.True(t, eventBus.Unsubscribe(id))
	assert.False(t, eventBus.Unsubscribe(id))
	assert.Equal(t, 0, eventBus.GetTotalSubscriptions())

	_, open := <-eventChan
	assert.False(t, open, "channel must be closed on unsubscribe")
}

func TestTransactionFailedEvent(t *testing.T) {
	at := time.Unix(100, 0)
	e := NewTransactionFailed("tx-2", "too_early", "voting still open", at)
	assert.Equal(t, EventTransactionFailed, e.Type())
	assert.Equal(t, "too_early", e.ErrorCode())
	assert.Equal(t, "voting still open", e.ErrorMessage())
	assert.Equal(t, at, e.Timestamp())
}

func TestMultipleSubscribers(t *testing.T) {
	eventBus := NewEventBus()
	id1, ch1 := eventBus.Subscribe()
	id2, ch2 := eventBus.Subscribe()
	assert.NotEqual(t, id1, id2)

	eventBus.Publish(NewTransactionFailed("tx-3", "expired", "", time.Now()))

	for i, ch := range []<-chan LedgerEvent{ch1, ch2} {
		select {
		case e := <-ch:
			assert.Equal(t, "tx-3", e.TxID())
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for event on channel %d", i+1)
		}
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	eventBus := NewEventBus()
	_, ch := eventBus.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			eventBus.Publish(NewTransactionFailed(fmt.Sprintf("tx-%d", i), "", "", time.Now()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mezonai/multisig/logx"
)

const subscriberBuffer = 50

type SubscriberID string

type Subscriber struct {
	ID      SubscriberID
	Channel chan LedgerEvent
}

// EventBus fans ledger events out to subscribers without blocking the
// publisher; a subscriber with a full buffer misses the event.
type EventBus struct {
	subscribers map[SubscriberID]*Subscriber
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[SubscriberID]*Subscriber),
	}
}

func (eb *EventBus) generateUUIDID() SubscriberID {
	id := uuid.Must(uuid.NewV7())
	return SubscriberID(id.String())
}

func (eb *EventBus) Subscribe() (SubscriberID, <-chan LedgerEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.generateUUIDID()
	ch := make(chan LedgerEvent, subscriberBuffer)
	eb.subscribers[id] = &Subscriber{ID: id, Channel: ch}

	logx.Info("EVENTBUS", fmt.Sprintf("Subscribed to ledger events | subscriber_id=%s | total_subscribers=%d", id, len(eb.subscribers)))
	return id, ch
}

// Unsubscribe removes a subscription by ID and closes its channel
func (eb *EventBus) Unsubscribe(id SubscriberID) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subscriber, exists := eb.subscribers[id]
	if !exists {
		logx.Warn("EVENTBUS", fmt.Sprintf("Attempted to unsubscribe non-existent subscriber | subscriber_id=%s", id))
		return false
	}

	delete(eb.subscribers, id)
	close(subscriber.Channel)

	logx.Info("EVENTBUS", fmt.Sprintf("Unsubscribed from ledger events | subscriber_id=%s | remaining_subscribers=%d", id, len(eb.subscribers)))
	return true
}

// Publish publishes an event to all subscribers
func (eb *EventBus) Publish(event LedgerEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if len(eb.subscribers) == 0 {
		logx.Debug("EVENTBUS", fmt.Sprintf("No subscribers for event | event_type=%s | tx_id=%s", event.Type(), event.TxID()))
		return
	}

	for id, subscriber := range eb.subscribers {
		select {
		case subscriber.Channel <- event:
		default:
			logx.Warn("EVENTBUS", fmt.Sprintf("Subscriber channel full | subscriber_id=%s | tx_id=%s", id, event.TxID()))
		}
	}
}

// GetTotalSubscriptions returns the total number of active subscriptions
func (eb *EventBus) GetTotalSubscriptions() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.subscribers)
}

// HasSubscriber checks if a subscriber with the given ID exists
func (eb *EventBus) HasSubscriber(id SubscriberID) bool {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	_, exists := eb.subscribers[id]
	return exists
}

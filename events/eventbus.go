package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"provault/logx"
	"provault/monitoring"
)

const defaultSubscriberBuffer = 50

type SubscriberID string

type Subscriber struct {
	ID      SubscriberID
	Channel chan LedgerEvent
}

type EventBus struct {
	subscribers map[SubscriberID]*Subscriber
	bufferSize  int
	mu          sync.RWMutex
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &EventBus{
		subscribers: make(map[SubscriberID]*Subscriber),
		bufferSize:  bufferSize,
	}
}

func (eb *EventBus) generateUUIDID() SubscriberID {
	id := uuid.Must(uuid.NewV7())
	return SubscriberID(id.String())
}

func (eb *EventBus) Subscribe() (SubscriberID, chan LedgerEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.generateUUIDID()

	ch := make(chan LedgerEvent, eb.bufferSize)
	subscriber := &Subscriber{
		ID:      id,
		Channel: ch,
	}

	eb.subscribers[id] = subscriber
	monitoring.SetEventSubscribers(len(eb.subscribers))

	logx.Info("EVENTBUS", fmt.Sprintf("Client subscribed to ledger events | subscriber_id=%s | total_subscribers=%d", id, len(eb.subscribers)))

	return id, ch
}

// Unsubscribe removes a subscription by ID
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
	monitoring.SetEventSubscribers(len(eb.subscribers))

	logx.Info("EVENTBUS", fmt.Sprintf("Client unsubscribed from events | subscriber_id=%s | remaining_subscribers=%d", id, len(eb.subscribers)))
	return true
}

// Publish publishes an event to all subscribers. Sends never block; a
// subscriber with a full channel misses the event and is expected to resync
// from the persisted records.
func (eb *EventBus) Publish(event LedgerEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if len(eb.subscribers) == 0 {
		logx.Debug("EVENTBUS", fmt.Sprintf("No subscribers for event | event_type=%s | holder=%s", event.Type(), event.Holder()))
		return
	}

	logx.Info("EVENTBUS", fmt.Sprintf("Publishing event | event_type=%s | holder=%s | amount=%d | subscribers=%d", event.Type(), event.Holder(), event.Amount(), len(eb.subscribers)))

	for id, subscriber := range eb.subscribers {
		select {
		case subscriber.Channel <- event:
			// Event sent successfully
		default:
			// Channel is full, skip this subscriber
			logx.Warn("EVENTBUS", fmt.Sprintf("Subscriber channel full, event dropped | subscriber_id=%s | event_type=%s", id, event.Type()))
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

package events

import (
	"fmt"
)

// EventStore is the persisted, replayable view of emitted events
type EventStore interface {
	GetRange(fromSeq uint64, limit int) ([]*Record, error)
	NextSeq() (uint64, error)
}

// EventRouter bridges committed event records to live subscribers and serves
// replay queries from the persisted store. Records are published only after
// the owning batch has committed, so subscribers never observe an event whose
// balance mutation was rolled back.
type EventRouter struct {
	eventBus   *EventBus
	eventStore EventStore
}

// NewEventRouter creates a new EventRouter instance
func NewEventRouter(eventBus *EventBus, eventStore EventStore) *EventRouter {
	return &EventRouter{
		eventBus:   eventBus,
		eventStore: eventStore,
	}
}

// PublishRecord publishes a committed event record to all live subscribers
func (er *EventRouter) PublishRecord(rec *Record) {
	er.eventBus.Publish(rec.Event())
}

// GetEvents returns up to limit persisted records starting at fromSeq
func (er *EventRouter) GetEvents(fromSeq uint64, limit int) ([]*Record, error) {
	records, err := er.eventStore.GetRange(fromSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read event records: %w", err)
	}
	return records, nil
}

// NextSeq returns the sequence number the next committed event will carry
func (er *EventRouter) NextSeq() (uint64, error) {
	return er.eventStore.NextSeq()
}

// Subscribe subscribes to live ledger events
func (er *EventRouter) Subscribe() (SubscriberID, chan LedgerEvent) {
	return er.eventBus.Subscribe()
}

// Unsubscribe removes a live subscription
func (er *EventRouter) Unsubscribe(id SubscriberID) bool {
	return er.eventBus.Unsubscribe(id)
}

package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"provault/db"
	"provault/events"
	"provault/jsonx"
)

// EventStore persists emitted event records under dense big-endian sequence
// keys, so prefix iteration yields them in emission order.
type EventStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewEventStore(dbProvider db.DatabaseProvider) (*EventStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &EventStore{
		dbProvider: dbProvider,
	}, nil
}

// NextSeq returns the sequence number the next event will be assigned
func (es *EventStore) NextSeq() (uint64, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	data, err := es.dbProvider.Get([]byte(EventMetaKeyNextSeq))
	if err != nil {
		return 0, fmt.Errorf("could not get next event seq from db: %w", err)
	}
	if data == nil {
		return 1, nil // sequence starts at 1
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt next event seq value")
	}
	return binary.BigEndian.Uint64(data), nil
}

// Stage adds the event record and the advanced sequence counter to a shared
// batch. Both land atomically with the balance mutation that produced them.
func (es *EventStore) Stage(batch db.DatabaseBatch, rec *events.Record) error {
	data, err := jsonx.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event record: %w", err)
	}
	batch.Put(es.getDbKey(rec.Seq), data)

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, rec.Seq+1)
	batch.Put([]byte(EventMetaKeyNextSeq), next)
	return nil
}

// GetRange returns up to limit records starting at fromSeq in sequence order
func (es *EventStore) GetRange(fromSeq uint64, limit int) ([]*events.Record, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if limit <= 0 {
		return nil, nil
	}
	if fromSeq == 0 {
		fromSeq = 1
	}

	records := make([]*events.Record, 0, limit)
	for seq := fromSeq; len(records) < limit; seq++ {
		data, err := es.dbProvider.Get(es.getDbKey(seq))
		if err != nil {
			return nil, fmt.Errorf("could not get event %d from db: %w", seq, err)
		}
		if data == nil {
			break // end of the log
		}
		var rec events.Record
		if err := jsonx.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event %d: %w", seq, err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

func (es *EventStore) getDbKey(seq uint64) []byte {
	key := make([]byte, len(PrefixEvent)+8)
	copy(key, PrefixEvent)
	binary.BigEndian.PutUint64(key[len(PrefixEvent):], seq)
	return key
}

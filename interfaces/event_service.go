package interfaces

import (
	"provault/events"
)

// EventService serves the replayable event log to off-chain consumers
type EventService interface {
	GetEvents(fromSeq uint64, limit int) ([]*events.Record, error)
	NextSeq() (uint64, error)
}

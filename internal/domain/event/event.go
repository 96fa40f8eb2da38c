package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Event is a change in a bill's lifecycle
type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Bill      entity.Bill `json:"bill"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent snapshots bill; later changes to the caller's copy do not
// affect the event.
func NewEvent(eventType Type, bill entity.Bill, actor string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Bill:      bill,
		Actor:     actor,
		Timestamp: time.Now(),
	}
}

// BillID returns the identifier of the bill the event is about
func (e *Event) BillID() string {
	return e.Bill.ID
}

package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// ExpenseEvent announces that an owner's expense changed. It carries only
// identifiers; the worker re-reads the owner's rows from the database, so a
// lost or reordered event can never corrupt a snapshot.
type ExpenseEvent struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewExpenseEvent creates an event stamped with the current time.
func NewExpenseEvent(id, ownerID, action string) *ExpenseEvent {
	return &ExpenseEvent{
		ID:         id,
		OwnerID:    ownerID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

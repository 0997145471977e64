package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderCreated is raised once per order, alongside its first ledger entry.
type OrderCreated struct {
	BaseEvent
	OrderID     string
	MerchantRef string
}

// EventName returns the event type identifier.
func (e OrderCreated) EventName() string {
	return "orders.created"
}

// OrderStatusChanged is raised after a transition has been committed.
type OrderStatusChanged struct {
	BaseEvent
	OrderID    string
	FromStatus Status
	ToStatus   Status
	Source     string
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.status_changed"
}

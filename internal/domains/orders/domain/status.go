package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status enumerates the shipment lifecycle.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// transitions lists the only edges the lifecycle allows. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusCreated:   {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
}

// AllStatuses returns the closed set in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusCreated, StatusPickedUp, StatusInTransit, StatusDelivered, StatusCancelled}
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// IsValid reports whether s belongs to the closed status set.
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusPickedUp, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) String() string { return string(s) }

// TransitionError describes a rejected edge.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// Is lets callers match any TransitionError against ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Transition validates moving from current to requested and returns the new status.
func Transition(current, requested Status) (Status, error) {
	for _, next := range transitions[current] {
		if next == requested {
			return requested, nil
		}
	}
	return "", &TransitionError{From: current, To: requested}
}

// AllowedTransitions lists the statuses reachable from s in one step.
func AllowedTransitions(s Status) []Status {
	next := transitions[s]
	if len(next) == 0 {
		return []Status{}
	}
	return append([]Status(nil), next...)
}

package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyID              = errors.New("order id is required")
	ErrEmptyCustomerName    = errors.New("customer name is required")
	ErrEmptyCustomerContact = errors.New("customer contact is required")
	ErrEmptyMerchantRef     = errors.New("merchant reference is required")
)

// Order models a trackable shipment.
type Order struct {
	ID              string
	CustomerName    string
	CustomerContact string
	MerchantRef     string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder validates the immutable fields and builds an order in the created state.
func NewOrder(id, customerName, customerContact, merchantRef string, now time.Time) (*Order, error) {
	o := &Order{
		ID:              strings.TrimSpace(id),
		CustomerName:    strings.TrimSpace(customerName),
		CustomerContact: strings.TrimSpace(customerContact),
		MerchantRef:     strings.TrimSpace(merchantRef),
		Status:          StatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	switch {
	case o.ID == "":
		return ErrEmptyID
	case o.CustomerName == "":
		return ErrEmptyCustomerName
	case o.CustomerContact == "":
		return ErrEmptyCustomerContact
	case o.MerchantRef == "":
		return ErrEmptyMerchantRef
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// ApplyTransition runs the status machine and moves the order on success.
// The previous status is returned so callers can describe the change.
func (o *Order) ApplyTransition(requested Status, now time.Time) (Status, error) {
	previous := o.Status
	next, err := Transition(previous, requested)
	if err != nil {
		return previous, err
	}
	o.Status = next
	o.UpdatedAt = now
	return previous, nil
}

// Clone returns a copy that shares no state with o.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

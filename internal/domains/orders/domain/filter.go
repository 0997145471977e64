package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFilter signals criteria that can never be satisfied by a valid order.
var ErrInvalidFilter = errors.New("order filter is invalid")

// Filter holds optional list criteria. A nil field places no constraint on that attribute.
type Filter struct {
	Status        *Status
	Merchant      *string
	Customer      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Normalize drops blank substring criteria so they behave as absent.
func (f Filter) Normalize() Filter {
	f.Merchant = nonBlank(f.Merchant)
	f.Customer = nonBlank(f.Customer)
	return f
}

// Validate rejects unknown status values.
func (f Filter) Validate() error {
	if f.Status != nil && !f.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, string(*f.Status))
	}
	return nil
}

// IsEmpty reports whether the filter matches every order.
func (f Filter) IsEmpty() bool {
	f = f.Normalize()
	return f.Status == nil && f.Merchant == nil && f.Customer == nil && f.CreatedAfter == nil && f.CreatedBefore == nil
}

// Matches applies all supplied criteria with AND semantics.
func (f Filter) Matches(o *Order) bool {
	if o == nil {
		return false
	}
	f = f.Normalize()
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.Merchant != nil && !containsFold(o.MerchantRef, *f.Merchant) {
		return false
	}
	if f.Customer != nil && !containsFold(o.CustomerContact, *f.Customer) {
		return false
	}
	if f.CreatedAfter != nil && o.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && o.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

// Apply returns the orders that match, preserving input order.
func (f Filter) Apply(orders []*Order) []*Order {
	out := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func nonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

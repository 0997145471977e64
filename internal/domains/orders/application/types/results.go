package types

import "github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"

// StatusUpdateResult is returned by a committed transition.
type StatusUpdateResult struct {
	Order        *domain.Order
	FromStatus   domain.Status
	Notification Notification
}

// Notification is the opaque side-channel payload echoed back to the operator.
// Only "status" and "to" are interpreted; everything else passes through untouched.
type Notification map[string]any

// Status returns the delivery outcome, or an empty string when absent.
func (n Notification) Status() string {
	if v, ok := n["status"].(string); ok {
		return v
	}
	return ""
}

// Recipients returns the recipient list, tolerating the shapes JSON decoding produces.
func (n Notification) Recipients() []string {
	switch v := n["to"].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

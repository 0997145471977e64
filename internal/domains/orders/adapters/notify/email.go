// Package notify composes and delivers the customer status email.
package notify

import (
	"fmt"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

// DefaultFrom is the sender used when none is configured.
const DefaultFrom = "noreply@logistics.com"

const previewLength = 50

// Email is a plain-text message addressed to the customer contact.
type Email struct {
	OrderID string   `json:"order_id"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// ComposeStatusEmail builds the message sent after a committed transition.
func ComposeStatusEmail(notice ports.StatusNotice, from string) Email {
	if from == "" {
		from = DefaultFrom
	}
	order := notice.Order
	return Email{
		OrderID: order.ID,
		From:    from,
		To:      []string{order.CustomerContact},
		Subject: fmt.Sprintf("Order Update: %s", order.ID),
		Body: fmt.Sprintf("Hello %s,\n\nYour order status has changed from %s to %s.\n\nThank you.",
			order.CustomerName, notice.FromStatus, notice.ToStatus),
	}
}

// Preview returns the first 50 bytes of the body followed by an ellipsis.
func (e Email) Preview() string {
	body := e.Body
	if len(body) > previewLength {
		body = body[:previewLength]
	}
	return body + "..."
}

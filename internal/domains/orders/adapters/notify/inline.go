package notify

import (
	"context"
	"errors"

	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

var _ ports.Notifier = (*InlineNotifier)(nil)

// InlineNotifier sends the status email synchronously within the update request.
type InlineNotifier struct {
	mailer Mailer
	from   string
}

func NewInlineNotifier(mailer Mailer, from string) *InlineNotifier {
	return &InlineNotifier{mailer: mailer, from: from}
}

// NotifyStatusChange delivers the email and echoes what was sent. A delivery failure
// is reported in the echo's status rather than as an error.
func (n *InlineNotifier) NotifyStatusChange(ctx context.Context, notice ports.StatusNotice) (ordertypes.Notification, error) {
	if n == nil || n.mailer == nil {
		return nil, errors.New("inline notifier not configured")
	}
	if notice.Order == nil {
		return nil, errors.New("status notice has no order")
	}
	email := ComposeStatusEmail(notice, n.from)
	status := "sent"
	if err := n.mailer.Send(ctx, email); err != nil {
		status = "failed: " + err.Error()
	}
	return ordertypes.Notification{
		"status":          status,
		"to":              email.To,
		"subject":         email.Subject,
		"message_preview": email.Preview(),
	}, nil
}

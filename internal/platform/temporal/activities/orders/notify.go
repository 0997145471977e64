package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
)

// SendStatusEmailActivityName delivers one customer status email.
const SendStatusEmailActivityName = "orders.activities.SendStatusEmail"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	mailer notify.Mailer
}

// NewActivities wires the mail transport into the Temporal activities bundle.
func NewActivities(mailer notify.Mailer) *Activities {
	return &Activities{mailer: mailer}
}

// SendStatusEmail hands the composed email to the mailer. Retries are driven by the
// workflow's retry policy.
func (a *Activities) SendStatusEmail(ctx context.Context, email notify.Email) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.mailer == nil {
		logger.Error("status email activity not initialized", "orderId", email.OrderID)
		return errors.New("status email activity not initialized")
	}
	logger.Info("SendStatusEmail activity started", "orderId", email.OrderID, "attempt", activity.GetInfo(ctx).Attempt)
	if err := a.mailer.Send(ctx, email); err != nil {
		logger.Error("SendStatusEmail activity failed", "orderId", email.OrderID, "error", err)
		return err
	}
	logger.Info("SendStatusEmail activity completed", "orderId", email.OrderID)
	return nil
}

package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	orderactivities "github.com/Apurer/go-shipment-tracker/internal/platform/temporal/activities/orders"
)

// RunStatusNotificationSequence delivers the status email with a bounded retry policy.
func RunStatusNotificationSequence(ctx workflow.Context, email notify.Email) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("status notification sequence started", "orderId", email.OrderID)
	sendOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, sendOptions), orderactivities.SendStatusEmailActivityName, email).Get(ctx, nil)
	if err != nil {
		logger.Error("status notification sequence failed", "orderId", email.OrderID, "error", err)
		return err
	}
	logger.Info("status notification sequence delivered", "orderId", email.OrderID)
	return nil
}

package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	"github.com/Apurer/go-shipment-tracker/internal/platform/temporal/sequences"
)

const (
	// StatusNotificationWorkflowName is the public identifier for registering the workflow.
	StatusNotificationWorkflowName = "orders.workflows.StatusNotification"
	// StatusNotificationTaskQueue is the queue consumed by the worker sending status emails.
	StatusNotificationTaskQueue = "ORDER_NOTIFICATIONS"
)

// StatusNotificationWorkflowInput carries the composed email and the originating trace.
type StatusNotificationWorkflowInput struct {
	Email   notify.Email
	TraceID string
}

// StatusNotificationWorkflow delivers the customer email for one committed transition.
func StatusNotificationWorkflow(ctx workflow.Context, input StatusNotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Email.OrderID
	logger.Info("StatusNotificationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	if err := sequences.RunStatusNotificationSequence(ctx, input.Email); err != nil {
		logger.Error("StatusNotificationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("StatusNotificationWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}

package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/go-shipment-tracker/internal/platform/temporal/workflows/orders"
)

var _ ports.Notifier = (*TemporalNotifier)(nil)

// WorkflowStarter is the slice of the Temporal client the notifier needs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalNotifier hands the status email to a durable workflow and returns without
// waiting for delivery.
type TemporalNotifier struct {
	client    WorkflowStarter
	taskQueue string
	from      string
}

// NewTemporalNotifier wires a Temporal client into the notifier.
func NewTemporalNotifier(c WorkflowStarter, from string) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: orderworkflows.StatusNotificationTaskQueue, from: from}
}

// NotifyStatusChange starts the StatusNotification workflow and echoes the queued email.
func (n *TemporalNotifier) NotifyStatusChange(ctx context.Context, notice ports.StatusNotice) (ordertypes.Notification, error) {
	if n == nil || n.client == nil {
		return nil, errors.New("temporal notifier not configured")
	}
	if notice.Order == nil {
		return nil, errors.New("status notice has no order")
	}
	email := notify.ComposeStatusEmail(notice, n.from)
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        buildNotificationWorkflowID(notice, traceComponent),
		TaskQueue: n.taskQueue,
	}
	run, err := n.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.StatusNotificationWorkflowName,
		orderworkflows.StatusNotificationWorkflowInput{Email: email, TraceID: traceComponent},
	)
	if err != nil {
		// The same transition within one trace was already handed off.
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return queuedEcho(email, options.ID), nil
		}
		return nil, err
	}
	return queuedEcho(email, run.GetID()), nil
}

func queuedEcho(email notify.Email, workflowID string) ordertypes.Notification {
	return ordertypes.Notification{
		"status":          "queued",
		"to":              email.To,
		"subject":         email.Subject,
		"message_preview": email.Preview(),
		"workflow_id":     workflowID,
	}
}

func buildNotificationWorkflowID(notice ports.StatusNotice, traceComponent string) string {
	return fmt.Sprintf("order-notification-%s-%s-%s", notice.Order.ID, notice.ToStatus, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

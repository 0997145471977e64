package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	orderactivities "github.com/Apurer/go-shipment-tracker/internal/platform/temporal/activities/orders"
)

type flakyMailer struct {
	mu       sync.Mutex
	failures int
	sent     []notify.Email
}

func (m *flakyMailer) Send(_ context.Context, email notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("relay busy")
	}
	m.sent = append(m.sent, email)
	return nil
}

func runWorkflow(t *testing.T, mailer notify.Mailer) error {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(StatusNotificationWorkflow, workflow.RegisterOptions{Name: StatusNotificationWorkflowName})
	acts := orderactivities.NewActivities(mailer)
	env.RegisterActivityWithOptions(acts.SendStatusEmail, activity.RegisterOptions{Name: orderactivities.SendStatusEmailActivityName})

	env.ExecuteWorkflow(StatusNotificationWorkflowName, StatusNotificationWorkflowInput{
		Email: notify.Email{OrderID: "order-1", To: []string{"555-0100"}, Subject: "Order Update: order-1", Body: "hi"},
	})
	require.True(t, env.IsWorkflowCompleted())
	return env.GetWorkflowError()
}

func TestStatusNotificationWorkflow_RetriesUntilDelivered(t *testing.T) {
	mailer := &flakyMailer{failures: 2}
	require.NoError(t, runWorkflow(t, mailer))
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "order-1", mailer.sent[0].OrderID)
}

func TestStatusNotificationWorkflow_GivesUpAfterMaxAttempts(t *testing.T) {
	mailer := &flakyMailer{failures: 100}
	require.Error(t, runWorkflow(t, mailer))
	require.Empty(t, mailer.sent)
}

package watch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ordermemory "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	orderapp "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T) (*orderapp.Service, *domain.Order) {
	t.Helper()
	svc := orderapp.NewService(ordermemory.NewRepository(),
		orderapp.WithNotifier(notify.NewInlineNotifier(notify.NewLogMailer(quietLogger()), "")),
	)
	order, err := svc.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerName: "Jane", CustomerContact: "555-0100", MerchantRef: "M-1",
	})
	require.NoError(t, err)
	return svc, order
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig_Flags(t *testing.T) {
	chdirTemp(t)
	t.Setenv("TRACKER_API_URL", "http://tracker:8080")
	cfg, err := LoadConfig([]string{"--status", "in_transit", "--merchant", "ACME", "--list-interval", "2s"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "http://tracker:8080", cfg.APIURL)
	require.Equal(t, 2*time.Second, cfg.ListInterval)
	require.Equal(t, 3*time.Second, cfg.DetailInterval)
	require.Equal(t, domain.StatusInTransit, *cfg.Filter.Status)
	require.Equal(t, "ACME", *cfg.Filter.Merchant)
	require.Equal(t, "operator", cfg.Source)
}

func TestLoadConfig_Rejects(t *testing.T) {
	chdirTemp(t)
	_, err := LoadConfig([]string{"--set-status", "picked_up"}, io.Discard)
	require.Error(t, err)

	_, err = LoadConfig([]string{"--status", "lost"}, io.Discard)
	require.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, err = LoadConfig([]string{"--created-after", "yesterday"}, io.Discard)
	require.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, err = LoadConfig([]string{"stray"}, io.Discard)
	require.Error(t, err)

	_, err = LoadConfig([]string{"--help"}, io.Discard)
	require.ErrorIs(t, err, ErrHelp)
}

func TestWatch_SetStatusThenReportsExternalChange(t *testing.T) {
	svc, order := newService(t)
	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := Config{
		ListInterval:   10 * time.Millisecond,
		DetailInterval: 10 * time.Millisecond,
		SetStatus:      "picked_up",
		OrderID:        order.ID,
		Source:         "operator",
	}
	done := make(chan error, 1)
	go func() { done <- watch(ctx, cfg, svc, NewPrinter(out), quietLogger()) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "watching 1 order(s)") }, time.Second, 5*time.Millisecond)
	_, err := svc.UpdateStatus(context.Background(), ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "in_transit", Source: "courier"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "picked_up -> in_transit") }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "history in_transit by courier") }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	text := out.String()
	require.Contains(t, text, "created -> picked_up")
	require.Contains(t, text, "notification sent to 555-0100")
}

func TestWatch_RejectedTransitionStopsBeforeWatching(t *testing.T) {
	svc, order := newService(t)
	out := &syncBuffer{}
	cfg := Config{
		ListInterval:   time.Second,
		DetailInterval: time.Second,
		SetStatus:      "delivered",
		OrderID:        order.ID,
		Source:         "operator",
	}
	err := watch(context.Background(), cfg, svc, NewPrinter(out), quietLogger())
	require.ErrorContains(t, err, "cannot move from created to delivered")
	require.Empty(t, out.String())
}

func TestWatch_ListViewUsesFilter(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateOrder(context.Background(), ordertypes.CreateOrderInput{CustomerName: "Bob", CustomerContact: "bob@example.com", MerchantRef: "other"})
	require.NoError(t, err)

	out := &syncBuffer{}
	merchant := "m-1"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{ListInterval: time.Second, DetailInterval: time.Second, Filter: domain.Filter{Merchant: &merchant}}
	require.NoError(t, watch(ctx, cfg, svc, NewPrinter(out), quietLogger()))
	require.Contains(t, out.String(), "watching 1 order(s)")
}

//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	trackerserver "github.com/Apurer/go-shipment-tracker/go"
	ordermemory "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	pacttest "github.com/Apurer/go-shipment-tracker/test/pact"
)

func TestTrackerProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateOrdersBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateOrderPickedUp: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedPickedUp(t)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// swappableService lets provider states start from an empty store without rebuilding the router.
type swappableService struct {
	mu    sync.RWMutex
	inner orderports.Service
}

func (s *swappableService) current() orderports.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner
}

func (s *swappableService) swap(inner orderports.Service) {
	s.mu.Lock()
	s.inner = inner
	s.mu.Unlock()
}

func (s *swappableService) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	return s.current().CreateOrder(ctx, input)
}

func (s *swappableService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.current().GetOrder(ctx, id)
}

func (s *swappableService) ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error) {
	return s.current().ListOrders(ctx, filter)
}

func (s *swappableService) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.StatusUpdateResult, error) {
	return s.current().UpdateStatus(ctx, input)
}

func (s *swappableService) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	return s.current().History(ctx, id)
}

type contractProviderApp struct {
	service *swappableService
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	service := &swappableService{}
	app := &contractProviderApp{service: service}
	app.reset()

	handlers := trackerserver.ApiHandleFunctions{
		OrderAPI: trackerserver.NewOrderAPI(service),
		FeedAPI:  trackerserver.NewFeedAPI(service, time.Second, nil),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = trackerserver.NewRouterWithGinEngine(router, handlers)

	app.server = httptest.NewServer(router)
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset() {
	a.service.swap(orderobs.New(orderapp.NewService(
		ordermemory.NewRepository(),
		orderapp.WithIDGenerator(func() string { return pacttest.ExistingOrderID }),
	)))
}

func (a *contractProviderApp) seedPickedUp(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	order, err := a.service.CreateOrder(ctx, ordertypes.CreateOrderInput{
		CustomerName:    pacttest.ExampleCustomerName,
		CustomerContact: pacttest.ExampleCustomerContact,
		MerchantRef:     pacttest.ExampleMerchantRef,
	})
	require.NoError(t, err)
	_, err = a.service.UpdateStatus(ctx, ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "picked_up", Source: "courier"})
	require.NoError(t, err)
}

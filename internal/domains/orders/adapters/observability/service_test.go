package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	ordermemory "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

func TestService_RecordsSpansAndCounters(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := New(application.NewService(ordermemory.NewRepository()),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, ordertypes.CreateOrderInput{CustomerName: "Jane", CustomerContact: "555-0100", MerchantRef: "M-1"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "picked_up", Source: "ops"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "delivered", Source: "ops"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	require.Equal(t, "Service.CreateOrder", spans[0].Name())
	require.Equal(t, codes.Error, spans[2].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(1), totals["orders.service.created"])
	require.Equal(t, int64(1), totals["orders.service.transitions"])
	require.Equal(t, int64(1), totals["orders.service.transitions_rejected"])
}

package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateOrder", attribute.String("order.merchant_ref", input.MerchantRef))
	defer span.End()

	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("merchant_ref", input.MerchantRef))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "order created", slog.String("order.id", order.ID), slog.String("merchant_ref", order.MerchantRef))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.String("order.id", id))
	}
	return order, nil
}

// ListOrders is polled by every list watcher, so successful calls are not logged.
func (s *Service) ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders", filterAttributes(filter)...)
	defer span.End()

	orders, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

// UpdateStatus records accepted and rejected transitions separately.
func (s *Service) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.StatusUpdateResult, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus",
		attribute.String("order.id", input.OrderID),
		attribute.String("order.status.requested", input.Status),
		attribute.String("order.source", input.Source),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status",
		slog.String("order.id", input.OrderID),
		slog.String("requested", input.Status),
		slog.String("source", input.Source),
	)
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		var transitionErr *domain.TransitionError
		if errors.As(err, &transitionErr) {
			s.metrics.recordRejected(ctx, transitionErr.From, transitionErr.To)
		}
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordTransition(ctx, result.FromStatus, result.Order.Status)
	span.SetAttributes(
		attribute.String("order.status.from", string(result.FromStatus)),
		attribute.String("order.status.to", string(result.Order.Status)),
		attribute.String("order.notification.status", result.Notification.Status()),
	)
	s.logInfo(ctx, "order status updated",
		slog.String("order.id", result.Order.ID),
		slog.String("from", string(result.FromStatus)),
		slog.String("to", string(result.Order.Status)),
		slog.String("notification", result.Notification.Status()),
	)
	return result, nil
}

func (s *Service) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	ctx, span := s.startSpan(ctx, "Service.History", attribute.String("order.id", id))
	defer span.End()

	entries, err := s.inner.History(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order history", slog.String("order.id", id))
	}
	span.SetAttributes(attribute.Int("order.history.count", len(entries)))
	return entries, nil
}

func filterAttributes(f domain.Filter) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if f.Status != nil {
		attrs = append(attrs, attribute.String("order.filter.status", string(*f.Status)))
	}
	if f.Merchant != nil {
		attrs = append(attrs, attribute.String("order.filter.merchant", *f.Merchant))
	}
	if f.Customer != nil {
		attrs = append(attrs, attribute.Bool("order.filter.customer", true))
	}
	return attrs
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated       metric.Int64Counter
	transitions         metric.Int64Counter
	transitionsRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of committed status transitions"))
	rejected, _ := m.Int64Counter("orders.service.transitions_rejected", metric.WithDescription("Number of rejected status transitions"))
	return serviceMetrics{
		ordersCreated:       ordersCreated,
		transitions:         transitions,
		transitionsRejected: rejected,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	addCounter(ctx, m.ordersCreated, 1)
}

func (m serviceMetrics) recordTransition(ctx context.Context, from, to domain.Status) {
	addCounter(ctx, m.transitions, 1,
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(to)),
	)
}

func (m serviceMetrics) recordRejected(ctx context.Context, from, to domain.Status) {
	addCounter(ctx, m.transitionsRejected, 1,
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(to)),
	)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)

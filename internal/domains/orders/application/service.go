package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

// ErrStatusRequired is returned when an update names no target status.
var ErrStatusRequired = errors.New("target status is required")

// Service orchestrates the order use cases.
type Service struct {
	repo      ports.Repository
	notifier  ports.Notifier
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithNotifier sets the customer notification side channel.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithPublisher sets the domain event fan-out.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder persists a new order in the created state with its first ledger entry.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	now := domain.NextTimestamp(time.Time{}, s.now())
	order, err := domain.NewOrder(s.newID(), input.CustomerName, input.CustomerContact, input.MerchantRef, now)
	if err != nil {
		return nil, mapError(err)
	}
	entry, err := domain.NewLedger(order.ID).Append(domain.StatusCreated, domain.SourceSystem, nil, now)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order, entry)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.OrderCreated{
		BaseEvent:   domain.BaseEvent{Timestamp: saved.CreatedAt},
		OrderID:     saved.ID,
		MerchantRef: saved.MerchantRef,
	})
	return saved, nil
}

// GetOrder loads the current state of one order.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListOrders returns orders matching the filter, newest first.
func (s *Service) ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, mapError(err)
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// UpdateStatus applies one transition. The order and its ledger entry are written
// atomically by the store; notification and event fan-out happen after commit and
// never fail the command.
func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.StatusUpdateResult, error) {
	requested := domain.Status(strings.TrimSpace(input.Status))
	if requested == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrStatusRequired)
	}
	source, err := domain.NormalizeSource(input.Source)
	if err != nil {
		return nil, mapError(err)
	}

	var from domain.Status
	var entry domain.HistoryEntry
	updated, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(input.OrderID), func(order *domain.Order, ledger *domain.Ledger) (domain.HistoryEntry, error) {
		now := s.now()
		previous, err := order.ApplyTransition(requested, now)
		if err != nil {
			return domain.HistoryEntry{}, err
		}
		appended, err := ledger.Append(order.Status, source, input.Metadata, now)
		if err != nil {
			return domain.HistoryEntry{}, err
		}
		order.UpdatedAt = appended.Timestamp
		from, entry = previous, appended
		return appended, nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	result := &types.StatusUpdateResult{Order: updated, FromStatus: from}
	result.Notification = s.notify(ctx, ports.StatusNotice{
		Order:      updated.Clone(),
		FromStatus: from,
		ToStatus:   updated.Status,
		Source:     source,
	})
	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:  domain.BaseEvent{Timestamp: entry.Timestamp},
		OrderID:    updated.ID,
		FromStatus: from,
		ToStatus:   updated.Status,
		Source:     source,
	})
	return result, nil
}

// History returns the chronological ledger of an order.
func (s *Service) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	entries, err := s.repo.ListHistory(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

func (s *Service) notify(ctx context.Context, notice ports.StatusNotice) types.Notification {
	if s.notifier == nil {
		return nil
	}
	notification, err := s.notifier.NotifyStatusChange(ctx, notice)
	if err != nil {
		s.warn(ctx, "status notification failed", err, slog.String("order.id", notice.Order.ID))
		return types.Notification{
			"status": "failed: " + err.Error(),
			"to":     []string{notice.Order.CustomerContact},
		}
	}
	return notification
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.warn(ctx, "domain event publish failed", err, slog.String("event", event.EventName()))
	}
}

func (s *Service) warn(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

var _ ports.Service = (*Service)(nil)

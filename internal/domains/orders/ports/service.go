package ports

import (
	"context"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

// Service exposes the order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.StatusUpdateResult, error)
	History(ctx context.Context, id string) ([]domain.HistoryEntry, error)
}

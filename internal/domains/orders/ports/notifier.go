package ports

import (
	"context"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

// StatusNotice describes a committed transition the customer should hear about.
type StatusNotice struct {
	Order      *domain.Order
	FromStatus domain.Status
	ToStatus   domain.Status
	Source     string
}

// Notifier delivers customer notifications for committed transitions.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, notice StatusNotice) (types.Notification, error)
}

// EventPublisher fans domain events out to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

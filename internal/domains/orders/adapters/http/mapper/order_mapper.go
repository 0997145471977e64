package mapper

import (
	"time"

	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

// Order is the JSON shape of an order on the wire.
type Order struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customer_name"`
	CustomerContact string    `json:"customer_contact"`
	MerchantRef     string    `json:"merchant_ref"`
	CurrentStatus   string    `json:"current_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateOrder is the body of POST /api/orders.
type CreateOrder struct {
	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
	MerchantRef     string `json:"merchant_ref"`
}

// StatusUpdate is the body of POST /api/orders/:id/status.
type StatusUpdate struct {
	Status   string         `json:"status"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StatusUpdateResponse is returned by a committed status update.
type StatusUpdateResponse struct {
	Message         string         `json:"message"`
	Status          string         `json:"status"`
	NewStatus       string         `json:"new_status"`
	PreviousStatus  string         `json:"previous_status"`
	Order           Order          `json:"order"`
	EmailSimulation map[string]any `json:"email_simulation,omitempty"`
}

// HistoryEntry is one ledger row on the wire.
type HistoryEntry struct {
	Order     string         `json:"order"`
	Status    string         `json:"status"`
	Source    string         `json:"source"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// Transitions lists the statuses an order may move to next.
type Transitions struct {
	Current string   `json:"current_status"`
	Allowed []string `json:"allowed"`
	Final   bool     `json:"terminal"`
}

func ToCreateInput(body CreateOrder) ordertypes.CreateOrderInput {
	return ordertypes.CreateOrderInput{
		CustomerName:    body.CustomerName,
		CustomerContact: body.CustomerContact,
		MerchantRef:     body.MerchantRef,
	}
}

func ToUpdateStatusInput(orderID string, body StatusUpdate) ordertypes.UpdateStatusInput {
	return ordertypes.UpdateStatusInput{
		OrderID:  orderID,
		Status:   body.Status,
		Source:   body.Source,
		Metadata: body.Metadata,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	return Order{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerContact: order.CustomerContact,
		MerchantRef:     order.MerchantRef,
		CurrentStatus:   string(order.Status),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

// ToDomainOrder converts a transport order back into the domain model.
func ToDomainOrder(order Order) *domain.Order {
	return &domain.Order{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerContact: order.CustomerContact,
		MerchantRef:     order.MerchantRef,
		Status:          domain.Status(order.CurrentStatus),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func FromStatusUpdate(result *ordertypes.StatusUpdateResult) StatusUpdateResponse {
	return StatusUpdateResponse{
		Message:         "Status updated successfully",
		Status:          "updated",
		NewStatus:       string(result.Order.Status),
		PreviousStatus:  string(result.FromStatus),
		Order:           FromDomainOrder(result.Order),
		EmailSimulation: result.Notification,
	}
}

func FromHistory(entries []domain.HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{
			Order:     e.OrderID,
			Status:    string(e.Status),
			Source:    e.Source,
			Metadata:  e.Metadata,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

func ToHistory(entries []HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.HistoryEntry{
			OrderID:   e.Order,
			Status:    domain.Status(e.Status),
			Source:    e.Source,
			Metadata:  e.Metadata,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

func FromTransitions(order *domain.Order) Transitions {
	allowed := domain.AllowedTransitions(order.Status)
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		names = append(names, string(s))
	}
	return Transitions{Current: string(order.Status), Allowed: names, Final: order.Status.IsTerminal()}
}

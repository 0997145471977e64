package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrLedgerDiverged is returned when a mutation would leave the order and its ledger disagreeing.
var ErrLedgerDiverged = errors.New("order status and ledger diverged")

// Repository is an in-memory order store used for demos and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*storedOrder
}

type storedOrder struct {
	order  *domain.Order
	ledger *domain.Ledger
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{orders: map[string]*storedOrder{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order, first domain.HistoryEntry) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	ledger := domain.NewLedger(order.ID)
	if _, err := ledger.Append(first.Status, first.Source, first.Metadata, first.Timestamp); err != nil {
		return nil, err
	}
	if current, _ := ledger.Current(); current != order.Status {
		return nil, ErrLedgerDiverged
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, fmt.Errorf("order %s already exists", order.ID)
	}
	r.orders[order.ID] = &storedOrder{order: order.Clone(), ledger: ledger}
	return order.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.order.Clone(), nil
}

func (r *Repository) List(_ context.Context, filter domain.Filter) ([]*domain.Order, error) {
	r.mu.RLock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, stored := range r.orders {
		if filter.Matches(stored.order) {
			list = append(list, stored.order.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// UpdateStatus hands mutate working copies and swaps them in only when it succeeds.
func (r *Repository) UpdateStatus(_ context.Context, id string, mutate ports.StatusMutation) (*domain.Order, error) {
	if mutate == nil {
		return nil, errors.New("status mutation is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	order := stored.order.Clone()
	ledger := domain.NewLedger(id, stored.ledger.Entries()...)
	before := ledger.Len()

	entry, err := mutate(order, ledger)
	if err != nil {
		return nil, err
	}
	if ledger.Len() != before+1 || entry.Status != order.Status {
		return nil, ErrLedgerDiverged
	}
	if current, _ := ledger.Current(); current != order.Status {
		return nil, ErrLedgerDiverged
	}
	r.orders[id] = &storedOrder{order: order, ledger: ledger}
	return order.Clone(), nil
}

func (r *Repository) ListHistory(_ context.Context, id string) ([]domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.ledger.Entries(), nil
}

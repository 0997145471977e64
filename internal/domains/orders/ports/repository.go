package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict is returned when concurrent writers kept an update from committing.
	ErrConflict = errors.New("order was modified concurrently")
)

// StatusMutation applies a transition to the locked order and returns the ledger entry
// to append with it. Returning an error aborts the update without writing anything.
type StatusMutation func(order *domain.Order, ledger *domain.Ledger) (domain.HistoryEntry, error)

// Repository is the single authoritative order store. It is the only writer of ledger entries.
type Repository interface {
	// Create persists a new order together with its first ledger entry.
	Create(ctx context.Context, order *domain.Order, first domain.HistoryEntry) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns matching orders newest first; ties are broken by id so the order is stable.
	List(ctx context.Context, filter domain.Filter) ([]*domain.Order, error)
	// UpdateStatus runs mutate under the store's lock and commits the order and the
	// returned entry atomically.
	UpdateStatus(ctx context.Context, id string, mutate StatusMutation) (*domain.Order, error)
	// ListHistory returns the ledger in chronological order, or ErrNotFound for unknown ids.
	ListHistory(ctx context.Context, id string) ([]domain.HistoryEntry, error)
}

package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	"github.com/Apurer/go-shipment-tracker/internal/platform/migrations"
)

var _ ports.Repository = (*Repository)(nil)

// ErrLedgerDiverged is returned when a mutation would leave the order and its ledger disagreeing.
var ErrLedgerDiverged = errors.New("order status and ledger diverged")

// errStaleRow means the conditional status write matched no row because another
// writer committed first.
var errStaleRow = errors.New("order row changed during update")

const maxStaleRetries = 3

// Repository persists orders and their ledger through GORM. It works against
// PostgreSQL in production and SQLite in tests; the schema is owned by migrations.Run.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a GORM-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the order and its first ledger row in one transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order, first domain.HistoryEntry) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if first.Status != order.Status {
		return nil, ErrLedgerDiverged
	}
	record := toRecord(order)
	entry := toHistoryRecord(order.ID, first)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return fromRecord(record), nil
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record, err := findOrder(r.db.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// List pushes the status and created bounds into SQL. The text criteria are matched
// in Go through domain.Filter.Matches because SQL LOWER only folds ASCII.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&migrations.OrderRecord{})
	if filter.Status != nil {
		query = query.Where("current_status = ?", string(*filter.Status))
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", filter.CreatedAfter.UTC())
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", filter.CreatedBefore.UTC())
	}
	var records []migrations.OrderRecord
	if err := query.Order("created_at DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		order := fromRecord(records[i])
		if filter.Matches(order) {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

// UpdateStatus locks the order row, runs mutate against it and the ledger tail, and
// writes the new status and the appended ledger row in the same transaction. SQLite
// has no row locks, so a write that loses the race is retried against the fresh row;
// mutate then sees the real current status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, mutate ports.StatusMutation) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if mutate == nil {
		return nil, errors.New("status mutation is nil")
	}
	for attempt := 0; attempt < maxStaleRetries; attempt++ {
		updated, err := r.updateStatusOnce(ctx, id, mutate)
		if errors.Is(err, errStaleRow) {
			continue
		}
		return updated, err
	}
	return nil, fmt.Errorf("%w: order %s", ports.ErrConflict, id)
}

func (r *Repository) updateStatusOnce(ctx context.Context, id string, mutate ports.StatusMutation) (*domain.Order, error) {
	var updated *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := findOrder(tx, id, r.supportsRowLocks())
		if err != nil {
			return err
		}
		var tail []migrations.HistoryRecord
		if err := tx.Where("order_id = ?", id).
			Order("timestamp DESC").Order("id DESC").
			Limit(1).Find(&tail).Error; err != nil {
			return err
		}
		if len(tail) == 0 || tail[0].Status != record.Status {
			return ErrLedgerDiverged
		}
		ledger := domain.NewLedger(id, historyFromRecord(tail[0]))
		order := record.toDomain()

		entry, err := mutate(order, ledger)
		if err != nil {
			return err
		}
		if ledger.Len() != 2 || entry.Status != order.Status {
			return ErrLedgerDiverged
		}
		result := tx.Model(&migrations.OrderRecord{}).
			Where("id = ? AND current_status = ?", id, record.Status).
			Updates(map[string]any{
				"current_status": string(order.Status),
				"updated_at":     order.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return errStaleRow
		}
		row := toHistoryRecord(id, entry)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListHistory returns the ledger in chronological order.
func (r *Repository) ListHistory(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	if _, err := findOrder(db, id, false); err != nil {
		return nil, err
	}
	var records []migrations.HistoryRecord
	if err := db.Where("order_id = ?", id).Order("timestamp ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.HistoryEntry, 0, len(records))
	for i := range records {
		entries = append(entries, historyFromRecord(records[i]))
	}
	return entries, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("gorm order repository not configured")
	}
	return nil
}

func (r *Repository) supportsRowLocks() bool {
	return r.db.Dialector.Name() == "postgres"
}

func findOrder(db *gorm.DB, id string, lock bool) (*orderRow, error) {
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record migrations.OrderRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	row := orderRow(record)
	return &row, nil
}

type orderRow migrations.OrderRecord

type historyRow migrations.HistoryRecord

func toRecord(order *domain.Order) migrations.OrderRecord {
	return migrations.OrderRecord{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerContact: order.CustomerContact,
		MerchantRef:     order.MerchantRef,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt.UTC(),
		UpdatedAt:       order.UpdatedAt.UTC(),
	}
}

func toHistoryRecord(orderID string, entry domain.HistoryEntry) migrations.HistoryRecord {
	return migrations.HistoryRecord{
		OrderID:   orderID,
		Status:    string(entry.Status),
		Source:    entry.Source,
		Metadata:  entry.Metadata,
		Timestamp: entry.Timestamp.UTC(),
	}
}

func fromRecord(record migrations.OrderRecord) *domain.Order {
	row := orderRow(record)
	return row.toDomain()
}

func (r orderRow) toDomain() *domain.Order {
	return &domain.Order{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerContact: r.CustomerContact,
		MerchantRef:     r.MerchantRef,
		Status:          domain.Status(r.Status),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func historyFromRecord(record migrations.HistoryRecord) domain.HistoryEntry {
	return historyRow(record).toDomain()
}

func (r historyRow) toDomain() domain.HistoryEntry {
	return domain.HistoryEntry{
		OrderID:   r.OrderID,
		Status:    domain.Status(r.Status),
		Source:    r.Source,
		Metadata:  r.Metadata,
		Timestamp: r.Timestamp.UTC(),
	}
}

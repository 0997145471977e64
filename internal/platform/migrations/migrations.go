package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&OrderRecord{},
		&HistoryRecord{},
	)
}

// OrderRecord holds the current state of an order.
type OrderRecord struct {
	ID              string    `gorm:"primaryKey;column:id;size:36"`
	CustomerName    string    `gorm:"column:customer_name;size:100;not null"`
	CustomerContact string    `gorm:"column:customer_contact;size:100;not null;index"`
	MerchantRef     string    `gorm:"column:merchant_ref;size:100;not null;index"`
	Status          string    `gorm:"column:current_status;type:varchar(20);not null;index"`
	CreatedAt       time.Time `gorm:"column:created_at;index;autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (OrderRecord) TableName() string { return "orders" }

// HistoryRecord is one append-only ledger row. Rows are never updated or deleted.
type HistoryRecord struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID   string         `gorm:"column:order_id;size:36;not null;index:idx_order_history_order_ts,priority:1"`
	Status    string         `gorm:"column:status;type:varchar(20);not null"`
	Source    string         `gorm:"column:source;size:50;not null"`
	Metadata  map[string]any `gorm:"column:metadata;type:text;serializer:json"`
	Timestamp time.Time      `gorm:"column:timestamp;not null;index:idx_order_history_order_ts,priority:2"`
}

func (HistoryRecord) TableName() string { return "order_status_history" }

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries incrementally maintained lifetime aggregates.
// TotalOrders / TotalSpent must always be derivable by summing the
// customer's non-cancelled, non-deleted orders; the reconciliation
// service recomputes and overwrites them on drift.
type Customer struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"not null"`
	Phone       *string         `gorm:"index"`
	TotalOrders int             `gorm:"not null;default:0"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

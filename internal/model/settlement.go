package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement is the aggregate record of one carrier reconciliation batch.
// Every figure is computed from the post-update state of the orders in
// the same transaction that updated them — never from stale reads.
type Settlement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CarrierID      *uuid.UUID `gorm:"type:uuid;index"`
	ReferenceCode  string    `gorm:"uniqueIndex"`
	DeliveredCount int       `gorm:"not null"`
	FailedCount    int       `gorm:"not null"`
	ExpectedCash   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CollectedCash  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CarrierFees    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time

	Orders []SettlementOrder `gorm:"foreignKey:SettlementID"`
}

// SettlementOrder records the per-order outcome inside a settlement batch.
type SettlementOrder struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SettlementID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Outcome      string    `gorm:"not null"` // "delivered" | "failed"
	Collected    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

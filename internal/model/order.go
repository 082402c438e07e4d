package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the fulfillment state of an order (sleeves_status column).
type OrderStatus string

const (
	StatusPending       OrderStatus = "pending"
	StatusConfirmed     OrderStatus = "confirmed"
	StatusInPreparation OrderStatus = "in_preparation"
	StatusReadyToShip   OrderStatus = "ready_to_ship"
	StatusShipped       OrderStatus = "shipped"
	StatusInTransit     OrderStatus = "in_transit"
	StatusDelivered     OrderStatus = "delivered"
	StatusCancelled     OrderStatus = "cancelled"
	StatusRejected      OrderStatus = "rejected"
	StatusReturned      OrderStatus = "returned"
)

var knownStatuses = map[OrderStatus]bool{
	StatusPending: true, StatusConfirmed: true, StatusInPreparation: true,
	StatusReadyToShip: true, StatusShipped: true, StatusInTransit: true,
	StatusDelivered: true, StatusCancelled: true, StatusRejected: true,
	StatusReturned: true,
}

// Valid reports whether s is a member of the documented state graph.
func (s OrderStatus) Valid() bool { return knownStatuses[s] }

// AffectsStock reports whether s belongs to the stock-affecting set.
// First entry into ANY of these states deducts stock exactly once;
// movement between members of the set never deducts again.
func (s OrderStatus) AffectsStock() bool {
	switch s {
	case StatusReadyToShip, StatusShipped, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether s ends the order's lifecycle. Terminal orders
// reject all further transitions, with the single exception of
// delivered → returned (return acceptance).
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusReturned:
		return true
	}
	return false
}

// Order is one fulfillment order within a store. Version is an
// optimistic-lock counter: every update increments it, and writers that
// carry a stale version lose.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID  `gorm:"type:uuid;index"`
	SleevesStatus OrderStatus `gorm:"not null;default:'pending';index"`
	ReferenceCode string      `gorm:"index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// CODAmount is the cash the carrier must collect on delivery.
	CODAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CarrierID *uuid.UUID      `gorm:"type:uuid;index"`
	Version   int             `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Items    []OrderLineItem `gorm:"foreignKey:OrderID"`
	Customer *Customer       `gorm:"foreignKey:CustomerID"`
}

// OrderLineItem references a product (nullable while the external catalog
// mapping is unresolved) and optionally a variant. StockDeducted is the
// at-most-once guard: it flips false→true exactly once per deduction and
// true→false exactly once per matching restoration.
type OrderLineItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID *uuid.UUID `gorm:"type:uuid;index"`
	VariantID *uuid.UUID `gorm:"type:uuid;index"`
	Quantity  int        `gorm:"not null"`
	// UnitsPerPack is a snapshot stamped at deduction time — audit only,
	// so the restoration is exact even if the variant changes afterwards.
	UnitsPerPack    int  `gorm:"not null;default:1"`
	StockDeducted   bool `gorm:"not null;default:false"`
	StockDeductedAt *time.Time
	// External references kept for late resolution of unmapped items.
	ExternalProductRef *string
	ExternalVariantRef *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Product *Product        `gorm:"foreignKey:ProductID"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}

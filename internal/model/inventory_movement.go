package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. Order-triggered types carry the status the order was
// entering when the engine deducted or restored.
const (
	MovementOrderReady       = "order_ready"
	MovementOrderShipped     = "order_shipped"
	MovementOrderInTransit   = "order_in_transit"
	MovementOrderDelivered   = "order_delivered"
	MovementOrderCancelled   = "order_cancelled"
	MovementOrderReverted    = "order_reverted"
	MovementInboundReceipt   = "inbound_receipt"
	MovementInboundCorrection = "inbound_correction"
	MovementReturnAccepted   = "return_accepted"
	MovementManualAdjustment = "manual_adjustment"
)

// InventoryMovement is one row of the append-only stock ledger. Rows are
// never updated or deleted; replaying QuantityChange in created_at order
// must reproduce the current stock of every pool.
type InventoryMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	// VariantID is set when a variant triggered the movement. For bundles
	// the quantity still hits the parent product's pool; for variations it
	// hits the variant's own pool.
	VariantID      *uuid.UUID `gorm:"type:uuid;index"`
	OrderID        *uuid.UUID `gorm:"type:uuid;index"`
	MovementType   string     `gorm:"not null;index"`
	QuantityChange int        `gorm:"not null"` // positive = inbound, negative = outbound
	StockBefore    int        `gorm:"not null"`
	StockAfter     int        `gorm:"not null"` // invariant: StockAfter = StockBefore + QuantityChange
	Notes          string
	CreatedAt      time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName keeps the historical table name used by the dashboards.
func (InventoryMovement) TableName() string { return "inventory_movements" }

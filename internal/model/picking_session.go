package model

import (
	"time"

	"github.com/google/uuid"
)

// PickingSession groups orders for one warehouse picking/packing round.
// Sessions consume order status but never own stock themselves.
type PickingSession struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ReferenceCode string    `gorm:"uniqueIndex"`
	Status        string    `gorm:"not null;default:'open'"` // open | closed
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Orders []PickingSessionOrder `gorm:"foreignKey:SessionID"`
}

// PickingSessionOrder links an order into a session. An order belongs to
// at most one open session.
type PickingSessionOrder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_session_order;not null"`
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_session_order;not null"`
}

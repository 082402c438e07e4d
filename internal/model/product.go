package model

import (
	"time"

	"github.com/google/uuid"
)

// Product holds the canonical on-hand physical count for one sellable
// product. Stock is mutated exclusively through the stock engine and
// manual adjustments — both paths write an InventoryMovement row.
type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_store_sku"`
	// SKU is unique per store when present; nil for unkeyed catalog entries.
	SKU   *string `gorm:"uniqueIndex:idx_store_sku"`
	Name  string  `gorm:"index;not null"`
	Stock int     `gorm:"not null;default:0"`
	// ExternalRef holds the id of this product in the upstream catalog
	// (storefront platform) for line-item resolution.
	ExternalRef *string `gorm:"index"`
	Active      bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Variants []ProductVariant `gorm:"foreignKey:ProductID"`
}

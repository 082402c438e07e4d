package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	VariantTypeBundle    = "bundle"
	VariantTypeVariation = "variation"
)

// ProductVariant is either a bundle (a pack of N units drawn from the
// parent product's shared stock pool) or a variation (size/color/etc.
// with its own independent stock counter). The two are mutually
// exclusive: UsesSharedStock is true iff VariantType is bundle.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	// VariantType is constrained at the DB level as well; rows that predate
	// the bundle/variation split may carry an empty type and are treated as
	// variations (independent stock) until reclassified.
	VariantType     string `gorm:"not null;default:'variation';check:variant_type IN ('bundle','variation')"`
	UsesSharedStock bool   `gorm:"not null;default:false"`
	// UnitsPerPack is meaningful only for bundles: one pack sold consumes
	// UnitsPerPack physical units from the parent pool.
	UnitsPerPack int `gorm:"not null;default:1"`
	// Stock is meaningful only for variations. A bundle's availability is
	// always derived from the parent pool, never stored here.
	Stock       int     `gorm:"not null;default:0"`
	SKU         *string `gorm:"index"`
	ExternalRef *string `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// IsBundle reports whether this variant draws from the parent's shared
// pool. A variant with a conflicting or missing classification falls back
// to variation semantics: both the type AND the flag must agree before we
// draft against a shared pool.
func (v *ProductVariant) IsBundle() bool {
	return v.VariantType == VariantTypeBundle && v.UsesSharedStock && v.UnitsPerPack >= 1
}

// AvailablePacks derives bundle availability from the parent pool.
// Computed fresh on every call — the pool is shared across all bundles
// and independent variants of the same product, so caching would lie.
func (v *ProductVariant) AvailablePacks(parentStock int) int {
	if v.UnitsPerPack < 1 {
		return 0
	}
	return parentStock / v.UnitsPerPack
}

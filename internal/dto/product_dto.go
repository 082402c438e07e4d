package dto

import "github.com/google/uuid"

type ProductFilter struct {
	StoreID       uuid.UUID `form:"-"`
	Active        string    `form:"active"`
	Name          string    `form:"name"`
	SKU           string    `form:"sku"`
	LowStockBelow int       `form:"low_stock_below"`
	Page          int       `form:"page,default=1"`
	Limit         int       `form:"limit,default=50"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	SKU         *string `json:"sku"`
	ExternalRef *string `json:"external_ref"`
}

type CreateVariantRequest struct {
	Name        string  `json:"name" validate:"required"`
	VariantType string  `json:"variant_type" validate:"required,oneof=bundle variation"`
	// UnitsPerPack is required for bundles; ignored for variations.
	UnitsPerPack int     `json:"units_per_pack" validate:"min=0"`
	SKU          *string `json:"sku"`
	ExternalRef  *string `json:"external_ref"`
}

type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SKU         *string           `json:"sku"`
	Stock       int               `json:"stock"`
	Active      bool              `json:"active"`
	ExternalRef *string           `json:"external_ref,omitempty"`
	Variants    []VariantResponse `json:"variants,omitempty"`
}

type VariantResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	VariantType  string  `json:"variant_type"`
	UnitsPerPack int     `json:"units_per_pack"`
	// Stock is the variant's own pool for variations; for bundles it is
	// the derived available-packs figure.
	Stock int     `json:"stock"`
	SKU   *string `json:"sku"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type InboundReceiptRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

type StockResponse struct {
	ProductID string `json:"product_id"`
	NewStock  int    `json:"new_stock"`
}

type ResolveProductRequest struct {
	ExternalProductRef string `json:"external_product_ref"`
	ExternalVariantRef string `json:"external_variant_ref"`
	SKU                string `json:"sku"`
}

type ResolveProductResponse struct {
	ProductID   string  `json:"product_id"`
	VariantID   *string `json:"variant_id,omitempty"`
	MatchMethod string  `json:"match_method"` // external_variant | external_product | sku
}

package dto

import "github.com/shopspring/decimal"

type OrderFilter struct {
	StoreID   string `form:"-"`
	Status    string `form:"status"`
	CarrierID string `form:"carrier_id"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
}

type LineItemRequest struct {
	ProductID          *string `json:"product_id"`
	VariantID          *string `json:"variant_id"`
	Quantity           int     `json:"quantity" validate:"required,gte=1"`
	ExternalProductRef *string `json:"external_product_ref"`
	ExternalVariantRef *string `json:"external_variant_ref"`
}

type CreateOrderRequest struct {
	CustomerID *string `json:"customer_id"`
	// Status allows importing orders that are already mid-lifecycle;
	// creating directly in a stock-affecting state deducts on insert.
	Status      string            `json:"status"`
	CarrierID   *string           `json:"carrier_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	CODAmount   decimal.Decimal   `json:"cod_amount"`
	Items       []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type TransitionRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
}

type UpdateLineItemsRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type LineItemResponse struct {
	ID            string  `json:"id"`
	ProductID     *string `json:"product_id"`
	VariantID     *string `json:"variant_id"`
	Quantity      int     `json:"quantity"`
	UnitsPerPack  int     `json:"units_per_pack"`
	StockDeducted bool    `json:"stock_deducted"`
}

type OrderResponse struct {
	ID            string             `json:"id"`
	SleevesStatus string             `json:"sleeves_status"`
	ReferenceCode string             `json:"reference_code,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	CODAmount     decimal.Decimal    `json:"cod_amount"`
	Version       int                `json:"version"`
	Items         []LineItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// AvailabilityLine is one row of the pre-flight stock check.
type AvailabilityLine struct {
	ProductID    string  `json:"product_id"`
	VariantID    *string `json:"variant_id,omitempty"`
	RequiredQty  int     `json:"required_qty"`
	AvailableQty int     `json:"available_qty"`
	Sufficient   bool    `json:"sufficient"`
	Shortage     int     `json:"shortage"`
}

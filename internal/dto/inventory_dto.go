package dto

type MovementResponse struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	VariantID      *string `json:"variant_id,omitempty"`
	OrderID        *string `json:"order_id,omitempty"`
	MovementType   string  `json:"movement_type"`
	QuantityChange int     `json:"quantity_change"`
	StockBefore    int     `json:"stock_before"`
	StockAfter     int     `json:"stock_after"`
	Notes          string  `json:"notes,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StockDiscrepancy is one drifted pool surfaced by reconciliation.
// Never auto-corrected: operators review first, then trigger a
// recalculation explicitly.
type StockDiscrepancy struct {
	ProductID       string  `json:"product_id"`
	VariantID       *string `json:"variant_id,omitempty"`
	Name            string  `json:"name"`
	RecordedStock   int     `json:"recorded_stock"`
	CalculatedStock int     `json:"calculated_stock"`
	Diff            int     `json:"diff"`
}

type UnmappedLineItemResponse struct {
	LineItemID         string  `json:"line_item_id"`
	OrderID            string  `json:"order_id"`
	Quantity           int     `json:"quantity"`
	ExternalProductRef *string `json:"external_product_ref,omitempty"`
	ExternalVariantRef *string `json:"external_variant_ref,omitempty"`
}

type RecalculationResult struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id,omitempty"`
	OldStock  int     `json:"old_stock"`
	NewStock  int     `json:"new_stock"`
	Corrected bool    `json:"corrected"`
}

type CustomerRepairResult struct {
	CustomerID     string `json:"customer_id"`
	OrdersBefore   int    `json:"orders_before"`
	OrdersAfter    int    `json:"orders_after"`
	SpentBefore    string `json:"spent_before"`
	SpentAfter     string `json:"spent_after"`
	Corrected      bool   `json:"corrected"`
}

package dto

import "github.com/shopspring/decimal"

type SettlementOrderRequest struct {
	OrderID   string          `json:"order_id" validate:"required"`
	Outcome   string          `json:"outcome" validate:"required,oneof=delivered failed"`
	Collected decimal.Decimal `json:"collected"`
}

type SettlementBatchRequest struct {
	CarrierID *string `json:"carrier_id"`
	// FeePerDelivery overrides the configured default carrier fee.
	FeePerDelivery *decimal.Decimal         `json:"fee_per_delivery"`
	Orders         []SettlementOrderRequest `json:"orders" validate:"required,min=1,dive"`
}

type SettlementResponse struct {
	ID             string          `json:"id"`
	ReferenceCode  string          `json:"reference_code"`
	DeliveredCount int             `json:"delivered_count"`
	FailedCount    int             `json:"failed_count"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	CollectedCash  decimal.Decimal `json:"collected_cash"`
	CarrierFees    decimal.Decimal `json:"carrier_fees"`
	CreatedAt      string          `json:"created_at"`
}

type CreateSessionRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1"`
}

type SessionResponse struct {
	ID            string   `json:"id"`
	ReferenceCode string   `json:"reference_code"`
	Status        string   `json:"status"`
	OrderIDs      []string `json:"order_ids"`
	CreatedAt     string   `json:"created_at"`
}

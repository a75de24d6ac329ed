package dto

import "github.com/shopspring/decimal"

type AddBatchesRequest struct {
	WidthM      decimal.Decimal `json:"width_m"       validate:"required"`
	LengthM     decimal.Decimal `json:"length_m"      validate:"required"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit" validate:"required"`
	Quantity    int             `json:"quantity"      validate:"required,min=1,max=100"`
}

type BatchResponse struct {
	ID          string          `json:"id"`
	WidthM      decimal.Decimal `json:"width_m"`
	LengthM     decimal.Decimal `json:"length_m"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	PurchasedAt string          `json:"purchased_at"`
	AvailableM2 decimal.Decimal `json:"available_m2"`
	CapacityM2  decimal.Decimal `json:"capacity_m2"`
}

// MovementFilter is bound from the query string of GET /v1/inventory/movements.
type MovementFilter struct {
	QuoteID string `form:"quote_id"`
	BatchID string `form:"batch_id"`
	Type    string `form:"type"` // entry | consumption | restoration | reversal
	From    string `form:"from"` // YYYY-MM-DD
	To      string `form:"to"`   // YYYY-MM-DD
	Page    int    `form:"page,default=1"    validate:"min=1"`
	Limit   int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovementResponse struct {
	ID         string          `json:"id"`
	BatchID    string          `json:"batch_id"`
	QuoteID    *string         `json:"quote_id,omitempty"`
	Type       string          `json:"type"`
	M2Amount   decimal.Decimal `json:"m2_amount"`
	ReversesID *string         `json:"reverses_id,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StockAlertResponse is the informational low-stock signal.
type StockAlertResponse struct {
	TotalAvailableM2 decimal.Decimal `json:"total_available_m2"`
	ThresholdM2      decimal.Decimal `json:"threshold_m2"`
	LowStock         bool            `json:"low_stock"`
}

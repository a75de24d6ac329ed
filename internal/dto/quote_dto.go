package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SegmentRequest struct {
	Direction string          `json:"direction" validate:"required,oneof=N S E W NE NW SE SW"`
	SizeCm    decimal.Decimal `json:"size_cm"   validate:"required"`
}

type BendRequest struct {
	Segments []SegmentRequest  `json:"segments" validate:"required,min=1,dive"`
	LengthsM []decimal.Decimal `json:"lengths_m" validate:"required,min=1"`
}

type SubmitQuoteRequest struct {
	ClientName string        `json:"client_name" validate:"required"`
	Notes      *string       `json:"notes"`
	Bends      []BendRequest `json:"bends" validate:"required,min=1,dive"`
}

// ManualQuoteRequest is the administrative entry path: the operator picks the
// initial status and may type totals directly, with or without bends.
type ManualQuoteRequest struct {
	ClientName  string           `json:"client_name" validate:"required"`
	Notes       *string          `json:"notes"`
	Status      string           `json:"status" validate:"required,oneof=draft pending paid in_production finished cancelled"`
	Bends       []BendRequest    `json:"bends" validate:"omitempty,dive"`
	TotalAreaM2 *decimal.Decimal `json:"total_area_m2"` // only honoured when no bends are given
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft pending paid in_production finished cancelled"`
	// Confirm must be true for destructive reversals (reopening a paid quote).
	Confirm bool `json:"confirm"`
}

type DiscountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason string          `json:"reason" validate:"required,min=5"`
}

type PaymentProofRequest struct {
	DocumentRef string `json:"document_ref" validate:"required"`
}

// QuoteFilter is bound from the query string of GET /v1/quotes.
type QuoteFilter struct {
	Status     string `form:"status"` // empty = all
	CustomerID string `form:"customer_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SegmentResponse struct {
	Direction string          `json:"direction"`
	SizeCm    decimal.Decimal `json:"size_cm"`
}

type BendResponse struct {
	ID             string            `json:"id"`
	Position       int               `json:"position"`
	Segments       []SegmentResponse `json:"segments"`
	LengthsM       []decimal.Decimal `json:"lengths_m"`
	TotalWidthCm   decimal.Decimal   `json:"total_width_cm"`
	RoundedWidthCm decimal.Decimal   `json:"rounded_width_cm"`
	TotalLengthM   decimal.Decimal   `json:"total_length_m"`
	AreaM2         decimal.Decimal   `json:"area_m2"`
	DiagramRef     *string           `json:"diagram_ref,omitempty"`
}

type QuoteResponse struct {
	ID              string          `json:"id"`
	CustomerID      *string         `json:"customer_id,omitempty"`
	ClientName      string          `json:"client_name"`
	Notes           *string         `json:"notes,omitempty"`
	Status          string          `json:"status"`
	Bends           []BendResponse  `json:"bends"`
	TotalAreaM2     decimal.Decimal `json:"total_area_m2"`
	PricePerM2      decimal.Decimal `json:"price_per_m2"`
	TotalValue      decimal.Decimal `json:"total_value"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountReason  *string         `json:"discount_reason,omitempty"`
	FinalValue      decimal.Decimal `json:"final_value"`
	PaymentProofRef *string         `json:"payment_proof_ref,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type QuoteListResponse struct {
	Data  []QuoteResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Profile preview ─────────────────────────────────────────────────────────

// ProfilePreviewRequest lets the quote-builder UI validate an in-progress
// profile server-side without persisting anything.
type ProfilePreviewRequest struct {
	Segments []SegmentRequest  `json:"segments" validate:"required,min=1,dive"`
	LengthsM []decimal.Decimal `json:"lengths_m"`
}

type ProfilePreviewResponse struct {
	TotalWidthCm     decimal.Decimal `json:"total_width_cm"`
	RoundedWidthCm   decimal.Decimal `json:"rounded_width_cm"`
	RemainingWidthCm decimal.Decimal `json:"remaining_width_cm"`
	TotalLengthM     decimal.Decimal `json:"total_length_m"`
	AreaM2           decimal.Decimal `json:"area_m2"`
}

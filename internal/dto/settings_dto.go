package dto

import "github.com/shopspring/decimal"

type SettingsResponse struct {
	PricePerM2          decimal.Decimal `json:"price_per_m2"`
	MaxWidthCm          decimal.Decimal `json:"max_width_cm"`
	LowStockThresholdM2 decimal.Decimal `json:"low_stock_threshold_m2"`
}

type UpdateSettingsRequest struct {
	PricePerM2          *decimal.Decimal `json:"price_per_m2"`
	MaxWidthCm          *decimal.Decimal `json:"max_width_cm"`
	LowStockThresholdM2 *decimal.Decimal `json:"low_stock_threshold_m2"`
}

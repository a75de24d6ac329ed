package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the single-row table of shop-configurable business values.
// Reads are cached; the paid-transition path re-reads nothing from here —
// quotes carry their own price snapshot.
type Settings struct {
	ID uint `gorm:"primaryKey"`
	// PricePerM2 is the current unit price applied to NEW quotes only.
	PricePerM2 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MaxWidthCm is the raw-material width ceiling for bend profiles.
	MaxWidthCm decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// LowStockThresholdM2 triggers the informational low-stock signal.
	LowStockThresholdM2 decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UpdatedAt           time.Time
}

func (Settings) TableName() string { return "settings" }

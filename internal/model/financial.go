package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialRecord is the receivable created when a quote is paid. Cancelling
// or reopening a paid quote removes it — the record mirrors the quote's live
// financial effect, not its history (the activity log keeps the history).
type FinancialRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuoteID   uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}

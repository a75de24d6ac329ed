package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote statuses. Quotes are never deleted — only transitioned to cancelled.
// "draft" exists only for manually entered quotes whose bends are not
// finalized yet; customer submissions enter directly at "pending".
const (
	StatusDraft        = "draft"
	StatusPending      = "pending"
	StatusPaid         = "paid"
	StatusInProduction = "in_production"
	StatusFinished     = "finished"
	StatusCancelled    = "cancelled"
)

// Quote is a priced estimate for a set of custom gutter bends.
// PricePerM2 is snapshotted at submission time and never re-read from
// Settings, so historical quotes stay stable when the shop changes prices.
type Quote struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"` // nil for manual/administrative entries
	ClientName string     `gorm:"not null"`
	Notes      *string
	Status     string `gorm:"type:varchar(20);not null;default:'pending';index"`

	PricePerM2     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAreaM2    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountReason *string
	FinalValue     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// PaymentProofRef is an opaque reference to the uploaded proof document.
	// Upload mechanics live outside this service.
	PaymentProofRef *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Bends []Bend `gorm:"foreignKey:QuoteID"`
}

// Bend is one physical piece of formed sheet metal: a frozen cross-section
// profile (segments) plus one or more running-length cuts. Position keeps the
// production order — the shop fabricates bends in display order.
type Bend struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuoteID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Position int       `gorm:"not null"`

	TotalWidthCm   decimal.Decimal `gorm:"type:decimal(12,4);not null"` // raw, unrounded
	RoundedWidthCm decimal.Decimal `gorm:"type:decimal(12,2);not null"` // billable, multiple of 5
	TotalLengthM   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	AreaM2         decimal.Decimal `gorm:"type:decimal(12,4);not null"`

	// DiagramRef points at the rendered visual owned by the renderer sidecar.
	DiagramRef *string

	CreatedAt time.Time

	Segments []Segment    `gorm:"foreignKey:BendID"`
	Lengths  []BendLength `gorm:"foreignKey:BendID"`
}

// Segment is one directional leg of a bend profile. Immutable once the bend
// is confirmed and attached to a quote.
type Segment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BendID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null"`
	Direction string          `gorm:"type:varchar(2);not null"` // N S E W NE NW SE SW
	SizeCm    decimal.Decimal `gorm:"type:decimal(12,4);not null"`
}

// BendLength is one running-length cut ("metro corrido") of a bend, in
// meters. A confirmed bend keeps its lengths editable; at least one positive
// entry must remain for the bend to count toward quote totals.
type BendLength struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BendID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position int             `gorm:"not null"`
	Meters   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryBatch is one roll of raw sheet metal ("bobina"). AvailableM2
// starts at WidthM*LengthM and only changes through InventoryMovements,
// staying within [0, WidthM*LengthM].
type InventoryBatch struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WidthM      decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	LengthM     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PurchasedAt time.Time       `gorm:"index;not null"`
	AvailableM2 decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CapacityM2 is the batch's original area.
func (b *InventoryBatch) CapacityM2() decimal.Decimal {
	return b.WidthM.Mul(b.LengthM)
}

func (InventoryBatch) TableName() string { return "inventory_batches" }

// Inventory movement types.
// "reversal" neutralises a prior consumption when a quote is reopened: it
// references the reversed movement so the audit trail survives, instead of
// deleting ledger rows.
const (
	MovementEntry       = "entry"
	MovementConsumption = "consumption"
	MovementRestoration = "restoration"
	MovementReversal    = "reversal"
)

// InventoryMovement is an immutable entry in the material ledger. Movements
// are NEVER modified or deleted — restorations and reversals are new rows.
// The sum of movements for a batch reconciles with its AvailableM2.
type InventoryMovement struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BatchID uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuoteID *uuid.UUID `gorm:"type:uuid;index"`
	Type    string     `gorm:"type:varchar(20);not null"`
	// M2Amount is always positive; Type carries the sign of the effect.
	M2Amount decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// ReversesID links a restoration/reversal to the consumption it offsets.
	ReversesID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time

	Batch *InventoryBatch `gorm:"foreignKey:BatchID"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }

package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog records auditable administrative actions (who, when, why).
// Entries are immutable — never updated or deleted.
// Action: "discount_applied" | "quote_reopened" | "manual_entry" | "status_changed"
type ActivityLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuoteID   *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"type:varchar(30);not null"`
	Detail    string     `gorm:"not null"`
	CreatedAt time.Time
}

func (ActivityLog) TableName() string { return "activity_log" }

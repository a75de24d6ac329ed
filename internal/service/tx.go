package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies who is performing an operation, for role gates and audit.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Service-level failure taxonomy. Handlers map these onto HTTP statuses;
// none of them is fatal — every one is a per-operation, recoverable failure
// the caller corrects and retries explicitly.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("insufficient permissions")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConfirmationRequired = errors.New("explicit confirmation required to reopen a paid quote")
	ErrNoPositiveLength     = errors.New("bend needs at least one positive running length")
	ErrInvalidDiscount      = errors.New("discount must be positive and not exceed the quote total")
	ErrQuoteNotEditable     = errors.New("quote can no longer be modified in its current status")
	ErrBatchInUse           = errors.New("batch has consumption history and cannot be deleted")
)

// InvalidTransitionError reports a status edge outside the allowed table.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s → %s", e.From, e.To)
}

// InsufficientStockError reports how much material the paid transition needed
// versus what all batches jointly had. Nothing is consumed on failure.
type InsufficientStockError struct {
	RequiredM2  decimal.Decimal
	AvailableM2 decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: need %s m², only %s m² available (short %s m²)",
		e.RequiredM2.String(), e.AvailableM2.String(), e.RequiredM2.Sub(e.AvailableM2).String())
}

package profile

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidSize rejects non-positive segment sizes.
	ErrInvalidSize = errors.New("segment size must be greater than zero")
	// ErrInvalidDirection rejects directions outside the 8 compass values.
	ErrInvalidDirection = errors.New("invalid segment direction")
	// ErrReversal rejects a segment that exactly undoes the previous one
	// (opposite direction, equal size) — a physical no-op that must never
	// appear in a committed profile.
	ErrReversal = errors.New("segment exactly reverses the previous one")
	// ErrEmptyBend rejects confirming a bend with no segments.
	ErrEmptyBend = errors.New("bend must have at least one segment")
)

// WidthError is returned when a segment would push the profile past the
// configured raw-material width. Remaining is how much width is still usable.
type WidthError struct {
	MaxCm       decimal.Decimal
	RemainingCm decimal.Decimal
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("profile exceeds max raw-material width of %s cm (%s cm remaining)",
		e.MaxCm.String(), e.RemainingCm.String())
}

package profile

import "github.com/shopspring/decimal"

// Segment is one directional, sized leg of a bend's cross-section ("risco").
type Segment struct {
	Direction Direction
	SizeCm    decimal.Decimal
}

// Builder accumulates segments for an in-progress bend under validation.
// Every mutation either succeeds or leaves the segment list untouched, so a
// caller can surface the error and let the user retry with corrected input.
type Builder struct {
	maxWidthCm decimal.Decimal
	segments   []Segment
}

// NewBuilder creates an empty profile bounded by the shop's raw-material
// width (cm). The ceiling comes from Settings — never hard-coded.
func NewBuilder(maxWidthCm decimal.Decimal) *Builder {
	return &Builder{maxWidthCm: maxWidthCm}
}

// Segments returns a copy of the committed segments.
func (b *Builder) Segments() []Segment {
	out := make([]Segment, len(b.segments))
	copy(out, b.segments)
	return out
}

// TotalWidthCm is the exact, unrounded sum of all segment sizes.
func (b *Builder) TotalWidthCm() decimal.Decimal {
	total := decimal.Zero
	for _, s := range b.segments {
		total = total.Add(s.SizeCm)
	}
	return total
}

// RemainingWidthCm is how much raw-material width the profile can still take.
func (b *Builder) RemainingWidthCm() decimal.Decimal {
	return b.maxWidthCm.Sub(b.TotalWidthCm())
}

// Append validates and adds a segment to the end of the profile.
func (b *Builder) Append(dir Direction, sizeCm decimal.Decimal) error {
	if !dir.Valid() {
		return ErrInvalidDirection
	}
	if !sizeCm.IsPositive() {
		return ErrInvalidSize
	}
	if len(b.segments) > 0 {
		last := b.segments[len(b.segments)-1]
		if isReversal(last, Segment{Direction: dir, SizeCm: sizeCm}) {
			return ErrReversal
		}
	}
	if err := b.checkWidth(b.TotalWidthCm().Add(sizeCm)); err != nil {
		return err
	}
	b.segments = append(b.segments, Segment{Direction: dir, SizeCm: sizeCm})
	return nil
}

// EditSize replaces the size of segment i in place. The edit re-runs the
// width ceiling check and the reversal check against both neighbours.
func (b *Builder) EditSize(i int, sizeCm decimal.Decimal) error {
	if i < 0 || i >= len(b.segments) {
		return ErrInvalidSize
	}
	if !sizeCm.IsPositive() {
		return ErrInvalidSize
	}
	candidate := Segment{Direction: b.segments[i].Direction, SizeCm: sizeCm}
	if i > 0 && isReversal(b.segments[i-1], candidate) {
		return ErrReversal
	}
	if i < len(b.segments)-1 && isReversal(candidate, b.segments[i+1]) {
		return ErrReversal
	}
	newTotal := b.TotalWidthCm().Sub(b.segments[i].SizeCm).Add(sizeCm)
	if err := b.checkWidth(newTotal); err != nil {
		return err
	}
	b.segments[i].SizeCm = sizeCm
	return nil
}

// Confirm freezes the profile shape and returns the committed segments.
// The lengths of a confirmed bend stay editable; the shape does not.
func (b *Builder) Confirm() ([]Segment, error) {
	if len(b.segments) == 0 {
		return nil, ErrEmptyBend
	}
	return b.Segments(), nil
}

func (b *Builder) checkWidth(total decimal.Decimal) error {
	if total.GreaterThan(b.maxWidthCm) {
		return &WidthError{MaxCm: b.maxWidthCm, RemainingCm: b.RemainingWidthCm()}
	}
	return nil
}

// isReversal reports whether next exactly undoes prev: opposite direction
// AND equal size. Opposite directions with differing sizes are fine.
func isReversal(prev, next Segment) bool {
	return prev.Direction.Opposite() == next.Direction && prev.SizeCm.Equal(next.SizeCm)
}

package profile

import "github.com/shopspring/decimal"

var (
	five    = decimal.NewFromInt(5)
	hundred = decimal.NewFromInt(100)
	// MinBilledWidthCm is the floor for a billable width: nothing is ever
	// invoiced below one 5 cm bracket.
	MinBilledWidthCm = decimal.NewFromInt(5)
)

// RoundWidthCm converts a raw total width into the commercially billed width,
// always a multiple of 5 cm. The rule is asymmetric on purpose:
//
//   - whole-number widths round to the NEAREST multiple of 5, half up
//     (21 → 20, 23 → 25, 26 → 25)
//   - any fractional overrun always costs the next full bracket — ceiling
//     (21.01 → 25, 26.01 → 30)
//   - widths <= 0 clamp to the 5 cm minimum
//
// Exact multiples of 5 pass through unchanged on both paths.
func RoundWidthCm(raw decimal.Decimal) decimal.Decimal {
	if !raw.IsPositive() {
		return MinBilledWidthCm
	}
	brackets := raw.Div(five)
	if raw.IsInteger() {
		// decimal.Round is half-away-from-zero, which for positive widths
		// is exactly the half-up commercial convention.
		return brackets.Round(0).Mul(five)
	}
	return brackets.Ceil().Mul(five)
}

// TotalLengthM sums the positive running-length entries of a bend, in meters.
// Non-positive entries are editing leftovers and do not count.
func TotalLengthM(lengths []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lengths {
		if l.IsPositive() {
			total = total.Add(l)
		}
	}
	return total
}

// AreaM2 is the billable area of a bend: rounded width (cm) converted to
// meters times total running length. Always computed from the ROUNDED width —
// the raw width is never billed.
func AreaM2(roundedWidthCm, totalLengthM decimal.Decimal) decimal.Decimal {
	return roundedWidthCm.Div(hundred).Mul(totalLengthM).Round(4)
}

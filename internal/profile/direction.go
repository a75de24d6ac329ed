// Package profile implements the bend-profile core: the directional segment
// model a customer builds in the quote builder, the physical/business
// validation applied on every mutation, and the commercial measurement rules
// (width rounding, running length, billable area). The package is pure — no
// storage, no HTTP — so the quoting math can be tested in isolation and
// reused by the preview endpoint and the submission path alike.
package profile

// Direction is one of the 8 compass directions a segment can take.
type Direction string

const (
	North     Direction = "N"
	South     Direction = "S"
	East      Direction = "E"
	West      Direction = "W"
	NorthEast Direction = "NE"
	NorthWest Direction = "NW"
	SouthEast Direction = "SE"
	SouthWest Direction = "SW"
)

var opposites = map[Direction]Direction{
	North:     South,
	South:     North,
	East:      West,
	West:      East,
	NorthEast: SouthWest,
	SouthWest: NorthEast,
	NorthWest: SouthEast,
	SouthEast: NorthWest,
}

// headings in degrees, measured counter-clockwise from East. Only used to
// describe the path to the rendering collaborator — the profile core never
// simulates geometry beyond the reversal check.
var headings = map[Direction]int{
	East:      0,
	NorthEast: 45,
	North:     90,
	NorthWest: 135,
	West:      180,
	SouthWest: 225,
	South:     270,
	SouthEast: 315,
}

// Valid reports whether d is one of the 8 compass directions.
func (d Direction) Valid() bool {
	_, ok := opposites[d]
	return ok
}

// Opposite returns the geometric opposite of d (N↔S, NE↔SW, ...).
func (d Direction) Opposite() Direction { return opposites[d] }

// Heading returns the direction's angle in degrees from East, CCW.
func (d Direction) Heading() int { return headings[d] }

package graph

import (
	"fmt"
	"strings"
)

// NoNeighbor marks an empty link slot.
const NoNeighbor = -1

// ---------------------------------------------------------------------------
// Curve directions
// ---------------------------------------------------------------------------

// CurveDirection keys the two link slots of an arc. Left is the t=0 end,
// Right the t=alpha end.
type CurveDirection int

const (
	Left CurveDirection = iota
	Right
)

// CurveDirectionCount is the number of curve link slots.
const CurveDirectionCount = 2

// Opposite returns the other end.
func (d CurveDirection) Opposite() CurveDirection {
	if d == Left {
		return Right
	}
	return Left
}

// Valid reports whether d is Left or Right.
func (d CurveDirection) Valid() bool {
	return d == Left || d == Right
}

func (d CurveDirection) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("CurveDirection(%d)", int(d))
	}
}

// ParseCurveDirection accepts "left"/"l" and "right"/"r", case-insensitive.
func ParseCurveDirection(s string) (CurveDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown curve direction %q: %w", s, ErrInvalidDirection)
}

// CurveLinks holds an arc's neighbour indices, indexed by CurveDirection.
type CurveLinks [CurveDirectionCount]int

// NewCurveLinks returns links with both slots empty.
func NewCurveLinks() CurveLinks {
	return CurveLinks{NoNeighbor, NoNeighbor}
}

// ---------------------------------------------------------------------------
// Patch directions
// ---------------------------------------------------------------------------

// PatchDirection keys the eight link slots of a patch, clockwise from north.
// North is the u=0 border (row 0), South u=alpha (row 3), West v=0
// (column 0), East v=alpha (column 3).
type PatchDirection int

const (
	N PatchDirection = iota
	NE
	E
	SE
	S
	SW
	W
	NW
)

// PatchDirectionCount is the number of patch link slots.
const PatchDirectionCount = 8

var patchDirectionNames = [PatchDirectionCount]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Valid reports whether d is one of the eight directions.
func (d PatchDirection) Valid() bool {
	return d >= N && d <= NW
}

// IsCardinal reports whether d is N, E, S or W. Only cardinal directions
// name a shared border; diagonals are corner bookkeeping.
func (d PatchDirection) IsCardinal() bool {
	return d.Valid() && d%2 == 0
}

// Opposite returns the direction rotated by 180 degrees.
func (d PatchDirection) Opposite() PatchDirection {
	return (d + 4) % PatchDirectionCount
}

// Rotate returns d turned clockwise by steps eighths.
func (d PatchDirection) Rotate(steps int) PatchDirection {
	return PatchDirection(((int(d)+steps)%PatchDirectionCount + PatchDirectionCount) % PatchDirectionCount)
}

func (d PatchDirection) String() string {
	if !d.Valid() {
		return fmt.Sprintf("PatchDirection(%d)", int(d))
	}
	return patchDirectionNames[d]
}

// ParsePatchDirection accepts the compass abbreviations or full names,
// case-insensitive ("ne", "north-east", "northeast").
func ParsePatchDirection(s string) (PatchDirection, error) {
	norm := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	switch norm {
	case "NORTH":
		norm = "N"
	case "NORTHEAST":
		norm = "NE"
	case "EAST":
		norm = "E"
	case "SOUTHEAST":
		norm = "SE"
	case "SOUTH":
		norm = "S"
	case "SOUTHWEST":
		norm = "SW"
	case "WEST":
		norm = "W"
	case "NORTHWEST":
		norm = "NW"
	}
	for i, name := range patchDirectionNames {
		if name == norm {
			return PatchDirection(i), nil
		}
	}
	return 0, fmt.Errorf("unknown patch direction %q: %w", s, ErrInvalidDirection)
}

// RequireCardinal returns ErrInvalidDirection unless d is cardinal.
func RequireCardinal(d PatchDirection) error {
	if !d.IsCardinal() {
		return fmt.Errorf("direction %s is not cardinal: %w", d, ErrInvalidDirection)
	}
	return nil
}

// PatchLinks holds a patch's neighbour indices, indexed by PatchDirection.
type PatchLinks [PatchDirectionCount]int

// NewPatchLinks returns links with every slot empty.
func NewPatchLinks() PatchLinks {
	var l PatchLinks
	for i := range l {
		l[i] = NoNeighbor
	}
	return l
}

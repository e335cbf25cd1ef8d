package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding breaks a graph
// invariant or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken invariant
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single finding about one link slot.
type ValidationError struct {
	Index    int                // element holding the link
	Slot     string             // direction name of the slot
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] element %d %s: %s", e.Severity, e.Index, e.Slot, e.Message)
}

// LinkTable is the neighbour table of one element: slot name to index.
type LinkTable interface {
	Slots() []Slot
}

// Slot is one named neighbour reference.
type Slot struct {
	Name     string
	Neighbor int
}

// Slots implements LinkTable.
func (l CurveLinks) Slots() []Slot {
	out := make([]Slot, len(l))
	for i, n := range l {
		out[i] = Slot{Name: CurveDirection(i).String(), Neighbor: n}
	}
	return out
}

// Slots implements LinkTable.
func (l PatchLinks) Slots() []Slot {
	out := make([]Slot, len(l))
	for i, n := range l {
		out[i] = Slot{Name: PatchDirection(i).String(), Neighbor: n}
	}
	return out
}

// ValidateLinks checks a neighbour table against a live count:
//   - every link is NoNeighbor or an index in [0, count)
//   - a link pointing back at its own element is reported as a warning
//
// It is read-only. An empty result means the table is consistent.
func ValidateLinks(tables []LinkTable, count int) []ValidationError {
	var errs []ValidationError
	for i, t := range tables {
		for _, s := range t.Slots() {
			switch {
			case s.Neighbor == NoNeighbor:
			case s.Neighbor < 0 || s.Neighbor >= count:
				errs = append(errs, ValidationError{
					Index:    i,
					Slot:     s.Name,
					Message:  fmt.Sprintf("neighbour %d not in [0, %d)", s.Neighbor, count),
					Severity: SeverityError,
				})
			case s.Neighbor == i:
				errs = append(errs, ValidationError{
					Index:    i,
					Slot:     s.Name,
					Message:  "links to itself",
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// HasErrors reports whether any finding is an error.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

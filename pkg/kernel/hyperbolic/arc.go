package hyperbolic

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// End names one end of an arc's parameter interval.
type End int

const (
	Start  End = iota // t = 0, control point 0
	Finish            // t = alpha, control point 3
)

func (e End) String() string {
	if e == Start {
		return "start"
	}
	return "finish"
}

// Arc is a hyperbolic curve segment over [0, Alpha] with four control points.
type Arc struct {
	Alpha  float64
	Points [4]v3.Vec
	// Knots holds the parameters of the last successful interpolation, nil
	// when the control points were set directly.
	Knots []float64
}

// NewArc creates an arc, validating the shape parameter.
func NewArc(alpha float64, points [4]v3.Vec) (*Arc, error) {
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}
	return &Arc{Alpha: alpha, Points: points}, nil
}

// Clone returns a deep copy.
func (a *Arc) Clone() *Arc {
	c := *a
	if a.Knots != nil {
		c.Knots = append([]float64(nil), a.Knots...)
	}
	return &c
}

// Domain returns [0, Alpha].
func (a *Arc) Domain() (float64, float64) {
	return 0, a.Alpha
}

// SetAlpha changes the shape parameter. Knots from an earlier interpolation
// are discarded since they referred to the old domain.
func (a *Arc) SetAlpha(alpha float64) error {
	if err := checkAlpha(alpha); err != nil {
		return err
	}
	a.Alpha = alpha
	a.Knots = nil
	return nil
}

// Derivatives returns the point at t followed by derivatives up to maxOrder.
func (a *Arc) Derivatives(t float64, maxOrder int) ([]v3.Vec, error) {
	if err := checkAlpha(a.Alpha); err != nil {
		return nil, err
	}
	if err := CheckOrder(maxOrder); err != nil {
		return nil, err
	}
	b := evalBasis(a.Alpha, t)
	out := make([]v3.Vec, maxOrder+1)
	for r := range out {
		for i, p := range a.Points {
			out[r] = out[r].Add(p.MulScalar(b[i][r]))
		}
	}
	// The basis is exact at the ends; reproduce the control points bit for bit.
	if t == 0 {
		out[0] = a.Points[0]
	} else if t == a.Alpha {
		out[0] = a.Points[3]
	}
	return out, nil
}

// Eval returns the point at t.
func (a *Arc) Eval(t float64) (v3.Vec, error) {
	d, err := a.Derivatives(t, 0)
	if err != nil {
		return v3.Vec{}, err
	}
	return d[0], nil
}

// EndPoint returns the control point interpolated at the given end.
func (a *Arc) EndPoint(e End) v3.Vec {
	if e == Start {
		return a.Points[0]
	}
	return a.Points[3]
}

// InnerPoint returns the control point adjacent to the given end.
func (a *Arc) InnerPoint(e End) v3.Vec {
	if e == Start {
		return a.Points[1]
	}
	return a.Points[2]
}

// EndTangent returns the first derivative at the given end in the direction
// of increasing t.
func (a *Arc) EndTangent(e End) v3.Vec {
	k := TangentScale(a.Alpha)
	if e == Start {
		return a.Points[1].Sub(a.Points[0]).MulScalar(k)
	}
	return a.Points[3].Sub(a.Points[2]).MulScalar(k)
}

// Outward returns the control leg pointing away from the arc at end e:
// P3-P2 at Finish, P0-P1 at Start. A zero-length leg yields
// ErrDegenerateGeometry.
func (a *Arc) Outward(e End) (v3.Vec, error) {
	leg := a.EndPoint(e).Sub(a.InnerPoint(e))
	if leg.Length() == 0 || math.IsNaN(leg.Length()) {
		return v3.Vec{}, fmt.Errorf("%s tangent is zero: %w", e, ErrDegenerateGeometry)
	}
	return leg, nil
}

// UpdateDataForInterpolation replaces the control points so that the arc
// passes through points[k] at knots[k]. On failure the arc is unchanged.
func (a *Arc) UpdateDataForInterpolation(knots []float64, points []v3.Vec) error {
	if len(points) != len(a.Points) {
		return fmt.Errorf("%d target points for %d control points: %w", len(points), len(a.Points), ErrMalformedKnotVector)
	}
	if err := checkKnots(knots, a.Alpha); err != nil {
		return err
	}
	m := collocation(a.Alpha, knots)
	sol, err := solve(m, points)
	if err != nil {
		return err
	}
	copy(a.Points[:], sol)
	a.Knots = append([]float64(nil), knots...)
	return nil
}

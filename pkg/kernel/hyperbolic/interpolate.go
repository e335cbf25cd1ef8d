package hyperbolic

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

// checkKnots validates an interpolation knot vector against [0, alpha].
func checkKnots(knots []float64, alpha float64) error {
	if len(knots) != 4 {
		return fmt.Errorf("%d knots, want 4: %w", len(knots), ErrMalformedKnotVector)
	}
	for i, k := range knots {
		if math.IsNaN(k) || k < 0 || k > alpha {
			return fmt.Errorf("knot %d = %v outside [0, %v]: %w", i, k, alpha, ErrMalformedKnotVector)
		}
		if i > 0 && k <= knots[i-1] {
			return fmt.Errorf("knot %d = %v not greater than %v: %w", i, k, knots[i-1], ErrMalformedKnotVector)
		}
	}
	return nil
}

// collocation returns the matrix M[k][i] = F_i(knots[k]).
func collocation(alpha float64, knots []float64) *mat.Dense {
	m := mat.NewDense(len(knots), 4, nil)
	for k, t := range knots {
		b := evalBasis(alpha, t)
		for i := 0; i < 4; i++ {
			m.Set(k, i, b[i][0])
		}
	}
	return m
}

// solve returns X with M X = D, D holding one target point per row.
func solve(m *mat.Dense, d []v3.Vec) ([]v3.Vec, error) {
	rhs := mat.NewDense(len(d), 3, nil)
	for k, p := range d {
		rhs.Set(k, 0, p.X)
		rhs.Set(k, 1, p.Y)
		rhs.Set(k, 2, p.Z)
	}
	x, err := solveDense(m, rhs)
	if err != nil {
		return nil, err
	}
	out := make([]v3.Vec, len(d))
	for i := range out {
		out[i] = v3.Vec{X: x.At(i, 0), Y: x.At(i, 1), Z: x.At(i, 2)}
	}
	return out, nil
}

// solveDense solves M X = B. A finite condition-number warning from the LU
// solve is accepted; a singular system or a non-finite result is not.
func solveDense(m, b *mat.Dense) (*mat.Dense, error) {
	var x mat.Dense
	if err := x.Solve(m, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) || math.IsNaN(float64(cond)) {
			return nil, fmt.Errorf("interpolation system: %v: %w", err, ErrDegenerateGeometry)
		}
	}
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("interpolation system has no finite solution: %w", ErrDegenerateGeometry)
			}
		}
	}
	return &x, nil
}

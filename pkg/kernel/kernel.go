// Package kernel defines the abstract geometry evaluator interfaces and the
// tessellation images derived from them. Implementations (hyperbolic) provide
// closed-form evaluation behind these interfaces; the tessellator and the
// composite managers only talk to the interfaces.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MaxDerivativeOrder is the highest derivative order evaluators must support.
const MaxDerivativeOrder = 2

// Curve is a parametric curve evaluable over a closed parameter interval.
type Curve interface {
	// Domain returns the definition interval [a, b].
	Domain() (a, b float64)

	// Derivatives returns the position (index 0) followed by the derivatives
	// up to maxOrder evaluated at t.
	Derivatives(t float64, maxOrder int) ([]v3.Vec, error)
}

// Surface is a parametric tensor-product surface over a rectangle.
type Surface interface {
	// Domain returns the definition rectangle [u0, u1] x [v0, v1].
	Domain() (u0, u1, v0, v1 float64)

	// PartialDerivatives returns the position and partial derivatives up to
	// maxOrder evaluated at (u, v).
	PartialDerivatives(u, v float64, maxOrder int) (PartialDerivatives, error)
}

// PartialDerivatives is a triangular table of surface derivatives.
// Row r holds the r+1 partials of total order r, ordered by increasing
// v-order: row 1 is {Su, Sv}, row 2 is {Suu, Suv, Svv}.
type PartialDerivatives [][]v3.Vec

// NewPartialDerivatives allocates a zeroed table for the given order.
func NewPartialDerivatives(maxOrder int) PartialDerivatives {
	pd := make(PartialDerivatives, maxOrder+1)
	for r := range pd {
		pd[r] = make([]v3.Vec, r+1)
	}
	return pd
}

// Point returns the surface point (row 0).
func (pd PartialDerivatives) Point() v3.Vec {
	return pd[0][0]
}

// Normal returns the unnormalised surface normal Su x Sv. The table must
// hold at least first-order partials.
func (pd PartialDerivatives) Normal() v3.Vec {
	return pd[1][0].Cross(pd[1][1])
}

// MaxOrder returns the highest derivative order stored.
func (pd PartialDerivatives) MaxOrder() int {
	return len(pd) - 1
}

package composite

import (
	"fmt"

	"github.com/chazu/hyperweave/pkg/kernel/hyperbolic"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// coincidenceTolerance is the distance under which two end points are
// treated as the same point by Join.
const coincidenceTolerance = 1e-9

// junctionInner returns the control point adjacent to a shared end E on the
// other element so that both elements have equal first derivatives at E:
//
//	inner_other = E + (k_self/k_other)(E - inner_self)
//
// with k = hyperbolic.TangentScale of each element's alpha across the
// junction.
func junctionInner(end, innerSelf v3.Vec, alphaSelf, alphaOther float64) v3.Vec {
	r := hyperbolic.TangentScale(alphaSelf) / hyperbolic.TangentScale(alphaOther)
	return end.Add(end.Sub(innerSelf).MulScalar(r))
}

// mirror reflects p through end.
func mirror(end, p v3.Vec) v3.Vec {
	return end.MulScalar(2).Sub(p)
}

// mergePoint returns the shared end M that gives two elements with inner
// points a and b equal derivatives: kA(M-a) = kB(b-M).
func mergePoint(a, b v3.Vec, alphaA, alphaB float64) (v3.Vec, error) {
	ka := hyperbolic.TangentScale(alphaA)
	kb := hyperbolic.TangentScale(alphaB)
	m := a.MulScalar(ka).Add(b.MulScalar(kb)).MulScalar(1 / (ka + kb))
	if m.Sub(a).Length() == 0 {
		return v3.Vec{}, fmt.Errorf("inner points coincide: %w", hyperbolic.ErrDegenerateGeometry)
	}
	return m, nil
}

func coincident(a, b v3.Vec) bool {
	return a.Sub(b).Length() <= coincidenceTolerance
}

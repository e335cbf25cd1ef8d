// Package hyperbolic implements second-order hyperbolic arcs and patches.
//
// The basis on [0, alpha] is
//
//	F3(t) = sinh^4(t/2) / sinh^4(alpha/2)
//	F2(t) = [4 cosh(alpha/2) sinh((alpha-t)/2) sinh^3(t/2)
//	        + (1 + 2 cosh^2(alpha/2)) sinh^2((alpha-t)/2) sinh^2(t/2)] / sinh^4(alpha/2)
//	F1(t) = F2(alpha-t)
//	F0(t) = F3(alpha-t)
//
// The four functions sum to one, F0(0) = F3(alpha) = 1, and the end tangents
// are TangentScale(alpha) times the first and last control-leg vectors.
package hyperbolic

import (
	"fmt"
	"math"
)

// MaxOrder is the highest derivative order the evaluators compute.
const MaxOrder = 2

// basisValues holds F_i^(r)(t) indexed [i][r].
type basisValues [4][MaxOrder + 1]float64

// checkAlpha validates a shape parameter.
func checkAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 {
		return fmt.Errorf("alpha %v: %w", alpha, ErrInvalidShapeParameter)
	}
	if math.IsInf(math.Sinh(alpha/2), 0) {
		return fmt.Errorf("alpha %v overflows the basis: %w", alpha, ErrInvalidShapeParameter)
	}
	return nil
}

// CheckOrder validates a maximum derivative order against MaxOrder.
func CheckOrder(maxOrder int) error {
	if maxOrder < 0 || maxOrder > MaxOrder {
		return fmt.Errorf("derivative order %d not in [0, %d]: %w", maxOrder, MaxOrder, ErrInvalidDerivativeOrder)
	}
	return nil
}

// TangentScale returns k(alpha) = 2 coth(alpha/2). The derivative of an arc
// at t=0 is k(P1-P0) and at t=alpha is k(P3-P2).
func TangentScale(alpha float64) float64 {
	return 2 / math.Tanh(alpha/2)
}

// evalBasis returns the basis functions and their derivatives at t. alpha
// must already be validated.
func evalBasis(alpha, t float64) basisValues {
	var b basisValues
	right := upperPair(alpha, t)
	left := upperPair(alpha, alpha-t)
	for r := 0; r <= MaxOrder; r++ {
		sign := 1.0
		if r%2 == 1 {
			sign = -1
		}
		b[0][r] = sign * left[1][r]
		b[1][r] = sign * left[0][r]
		b[2][r] = right[0][r]
		b[3][r] = right[1][r]
	}
	return b
}

// upperPair returns {F2, F3} with derivatives at t. Every term is a
// product of four hyperbolic factors, so each factor is divided by
// sinh(alpha/2) to keep the ratios bounded for large alpha.
func upperPair(alpha, t float64) [2][MaxOrder + 1]float64 {
	sa := math.Sinh(alpha / 2)
	ca := math.Cosh(alpha / 2)

	s := math.Sinh(t/2) / sa
	c := math.Cosh(t/2) / sa
	bs := math.Sinh((alpha-t)/2) / sa
	bc := math.Cosh((alpha-t)/2) / sa

	f3 := term(1, s, c, 4, bs, bc, 0)
	f2a := term(4*ca, s, c, 3, bs, bc, 1)
	f2b := term(1+2*ca*ca, s, c, 2, bs, bc, 2)

	var out [2][MaxOrder + 1]float64
	for r := 0; r <= MaxOrder; r++ {
		out[0][r] = f2a[r] + f2b[r]
		out[1][r] = f3[r]
	}
	return out
}

// term evaluates coef * s^m * S^n and its first two derivatives in t, where
// s = sinh(t/2)/sa and S = sinh((alpha-t)/2)/sa.
func term(coef, s, c float64, m int, bs, bc float64, n int) [MaxOrder + 1]float64 {
	f := powerDerivs(s, c, m, 1)
	h := powerDerivs(bs, bc, n, -1)
	return [MaxOrder + 1]float64{
		coef * f[0] * h[0],
		coef * (f[1]*h[0] + f[0]*h[1]),
		coef * (f[2]*h[0] + 2*f[1]*h[1] + f[0]*h[2]),
	}
}

// powerDerivs returns x^m and its first two derivatives, where
// x' = sign*y/2 and y' = sign*x/2.
func powerDerivs(x, y float64, m int, sign float64) [MaxOrder + 1]float64 {
	var d [MaxOrder + 1]float64
	d[0] = ipow(x, m)
	if m == 0 {
		return d
	}
	fm := float64(m)
	d[1] = sign * fm * ipow(x, m-1) * y / 2
	d[2] = fm / 4 * d[0]
	if m >= 2 {
		d[2] += fm / 4 * float64(m-1) * ipow(x, m-2) * y * y
	}
	return d
}

func ipow(x float64, m int) float64 {
	r := 1.0
	for ; m > 0; m-- {
		r *= x
	}
	return r
}

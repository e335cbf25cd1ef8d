package hyperbolic

import "errors"

var (
	// ErrInvalidShapeParameter is returned for alpha <= 0, NaN, or an alpha so
	// large the basis overflows.
	ErrInvalidShapeParameter = errors.New("invalid shape parameter")

	// ErrMalformedKnotVector is returned when interpolation knots are not
	// strictly increasing, fall outside [0, alpha], or do not match the
	// number of target points.
	ErrMalformedKnotVector = errors.New("malformed knot vector")

	// ErrDegenerateGeometry is returned when an end tangent or interpolation
	// system has no usable solution.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	ErrInvalidDerivativeOrder = errors.New("invalid derivative order")
)

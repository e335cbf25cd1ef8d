package hyperbolic

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func diff(t *testing.T, got, want interface{}, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func near(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

func testPoints() [4]v3.Vec {
	return [4]v3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 2, Z: 0},
		{X: 3, Y: 2, Z: 1},
		{X: 4, Y: 0, Z: -1},
	}
}

func TestBasisPartitionOfUnity(t *testing.T) {
	for _, alpha := range []float64{0.1, 1, 2, 5, 40} {
		for k := 0; k <= 10; k++ {
			tt := alpha * float64(k) / 10
			b := evalBasis(alpha, tt)
			var sum, dsum, d2sum float64
			for i := 0; i < 4; i++ {
				sum += b[i][0]
				dsum += b[i][1]
				d2sum += b[i][2]
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("alpha=%v t=%v: sum = %v, want 1", alpha, tt, sum)
			}
			if math.Abs(dsum) > 1e-9 || math.Abs(d2sum) > 1e-9 {
				t.Errorf("alpha=%v t=%v: derivative sums = %v, %v, want 0", alpha, tt, dsum, d2sum)
			}
		}
	}
}

func TestNewArcRejectsInvalidAlpha(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"nan", math.NaN()},
		{"overflow", 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArc(tt.alpha, testPoints())
			if !errors.Is(err, ErrInvalidShapeParameter) {
				t.Errorf("expected ErrInvalidShapeParameter, got %v", err)
			}
		})
	}
}

func TestArcEndpointReproduction(t *testing.T) {
	for _, alpha := range []float64{0.5, 1, 2, 10} {
		a, err := NewArc(alpha, testPoints())
		if err != nil {
			t.Fatalf("NewArc(%v): %v", alpha, err)
		}
		start, err := a.Eval(0)
		if err != nil {
			t.Fatal(err)
		}
		finish, err := a.Eval(alpha)
		if err != nil {
			t.Fatal(err)
		}
		if start != a.Points[0] {
			t.Errorf("alpha=%v: Eval(0) = %v, want %v", alpha, start, a.Points[0])
		}
		if finish != a.Points[3] {
			t.Errorf("alpha=%v: Eval(alpha) = %v, want %v", alpha, finish, a.Points[3])
		}
	}
}

func TestArcDerivativesMatchFiniteDifferences(t *testing.T) {
	a, err := NewArc(2, testPoints())
	if err != nil {
		t.Fatal(err)
	}
	const h = 1e-5
	for _, tt := range []float64{0.3, 1, 1.7} {
		d, err := a.Derivatives(tt, 2)
		if err != nil {
			t.Fatal(err)
		}
		plus, _ := a.Derivatives(tt+h, 1)
		minus, _ := a.Derivatives(tt-h, 1)
		fd1 := plus[0].Sub(minus[0]).MulScalar(1 / (2 * h))
		fd2 := plus[1].Sub(minus[1]).MulScalar(1 / (2 * h))
		if !near(d[1], fd1, 1e-6) {
			t.Errorf("t=%v: first derivative %v, finite difference %v", tt, d[1], fd1)
		}
		if !near(d[2], fd2, 1e-6) {
			t.Errorf("t=%v: second derivative %v, finite difference %v", tt, d[2], fd2)
		}
	}
}

func TestArcEndTangent(t *testing.T) {
	a, err := NewArc(1.5, testPoints())
	if err != nil {
		t.Fatal(err)
	}
	d0, _ := a.Derivatives(0, 1)
	d1, _ := a.Derivatives(1.5, 1)
	if !near(a.EndTangent(Start), d0[1], 1e-9) {
		t.Errorf("EndTangent(Start) = %v, derivative %v", a.EndTangent(Start), d0[1])
	}
	if !near(a.EndTangent(Finish), d1[1], 1e-9) {
		t.Errorf("EndTangent(Finish) = %v, derivative %v", a.EndTangent(Finish), d1[1])
	}
}

func TestArcOutwardDegenerate(t *testing.T) {
	pts := testPoints()
	pts[2] = pts[3]
	a, _ := NewArc(1, pts)
	if _, err := a.Outward(Finish); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	if _, err := a.Outward(Start); err != nil {
		t.Errorf("unexpected error at start: %v", err)
	}
}

func TestArcDerivativeOrderBounds(t *testing.T) {
	a, _ := NewArc(1, testPoints())
	for _, order := range []int{-1, 3} {
		if _, err := a.Derivatives(0.5, order); !errors.Is(err, ErrInvalidDerivativeOrder) {
			t.Errorf("order %d: expected ErrInvalidDerivativeOrder, got %v", order, err)
		}
	}
}

func TestArcInterpolationExact(t *testing.T) {
	knots := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	targets := make([]v3.Vec, 4)
	for k, u := range knots {
		// Points on a helix.
		targets[k] = v3.Vec{X: math.Cos(2 * u), Y: math.Sin(2 * u), Z: u}
	}
	a, _ := NewArc(1, testPoints())
	if err := a.UpdateDataForInterpolation(knots, targets); err != nil {
		t.Fatalf("UpdateDataForInterpolation: %v", err)
	}
	for k, u := range knots {
		got, err := a.Eval(u)
		if err != nil {
			t.Fatal(err)
		}
		if !near(got, targets[k], 1e-9) {
			t.Errorf("Eval(%v) = %v, want %v", u, got, targets[k])
		}
	}
	diff(t, a.Knots, knots, approx)
}

func TestArcInterpolationMalformed(t *testing.T) {
	targets := []v3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	tests := []struct {
		name    string
		knots   []float64
		targets []v3.Vec
	}{
		{"not increasing", []float64{0, 0.5, 0.5, 1}, targets},
		{"decreasing", []float64{1, 0.6, 0.3, 0}, targets},
		{"too short", []float64{0, 0.5, 1}, targets},
		{"outside domain", []float64{0, 0.5, 1, 1.5}, targets},
		{"negative", []float64{-0.1, 0.2, 0.5, 1}, targets},
		{"point count", []float64{0, 0.3, 0.6, 1}, targets[:3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := NewArc(1, testPoints())
			before := a.Points
			err := a.UpdateDataForInterpolation(tt.knots, tt.targets)
			if !errors.Is(err, ErrMalformedKnotVector) {
				t.Fatalf("expected ErrMalformedKnotVector, got %v", err)
			}
			if a.Points != before {
				t.Error("control points changed after failed interpolation")
			}
			if a.Knots != nil {
				t.Error("knots recorded after failed interpolation")
			}
		})
	}
}

func TestArcSetAlphaClearsKnots(t *testing.T) {
	a, _ := NewArc(1, testPoints())
	a.Knots = []float64{0, 0.2, 0.4, 1}
	if err := a.SetAlpha(0); !errors.Is(err, ErrInvalidShapeParameter) {
		t.Fatalf("expected ErrInvalidShapeParameter, got %v", err)
	}
	if a.Alpha != 1 || a.Knots == nil {
		t.Error("failed SetAlpha modified the arc")
	}
	if err := a.SetAlpha(3); err != nil {
		t.Fatal(err)
	}
	if a.Alpha != 3 || a.Knots != nil {
		t.Errorf("SetAlpha(3): alpha=%v knots=%v", a.Alpha, a.Knots)
	}
}

func TestTangentScale(t *testing.T) {
	for _, alpha := range []float64{0.5, 1, 3} {
		want := 2 * math.Cosh(alpha/2) / math.Sinh(alpha/2)
		if got := TangentScale(alpha); math.Abs(got-want) > 1e-12 {
			t.Errorf("TangentScale(%v) = %v, want %v", alpha, got, want)
		}
	}
}

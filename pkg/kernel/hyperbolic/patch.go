package hyperbolic

import (
	"fmt"

	"github.com/chazu/hyperweave/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

// Patch is a tensor-product hyperbolic surface over [0, AlphaU] x [0, AlphaV].
// Row i of Data is weighted by F_i(u), column j by F_j(v).
type Patch struct {
	AlphaU float64
	AlphaV float64
	Data   [4][4]v3.Vec
	UKnots []float64
	VKnots []float64
}

// NewPatch creates a patch, validating both shape parameters.
func NewPatch(alphaU, alphaV float64, data [4][4]v3.Vec) (*Patch, error) {
	if err := checkAlpha(alphaU); err != nil {
		return nil, fmt.Errorf("u: %w", err)
	}
	if err := checkAlpha(alphaV); err != nil {
		return nil, fmt.Errorf("v: %w", err)
	}
	return &Patch{AlphaU: alphaU, AlphaV: alphaV, Data: data}, nil
}

// Clone returns a deep copy.
func (p *Patch) Clone() *Patch {
	c := *p
	if p.UKnots != nil {
		c.UKnots = append([]float64(nil), p.UKnots...)
	}
	if p.VKnots != nil {
		c.VKnots = append([]float64(nil), p.VKnots...)
	}
	return &c
}

// Domain returns [0, AlphaU] x [0, AlphaV].
func (p *Patch) Domain() (u0, u1, v0, v1 float64) {
	return 0, p.AlphaU, 0, p.AlphaV
}

// PartialDerivatives evaluates the surface and its partials at (u, v).
func (p *Patch) PartialDerivatives(u, v float64, maxOrder int) (kernel.PartialDerivatives, error) {
	if err := checkAlpha(p.AlphaU); err != nil {
		return nil, err
	}
	if err := checkAlpha(p.AlphaV); err != nil {
		return nil, err
	}
	if err := CheckOrder(maxOrder); err != nil {
		return nil, err
	}
	bu := evalBasis(p.AlphaU, u)
	bv := evalBasis(p.AlphaV, v)

	pd := kernel.NewPartialDerivatives(maxOrder)
	for r := 0; r <= maxOrder; r++ {
		for k := 0; k <= r; k++ {
			var sum v3.Vec
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					sum = sum.Add(p.Data[i][j].MulScalar(bu[i][r-k] * bv[j][k]))
				}
			}
			pd[r][k] = sum
		}
	}
	if c, ok := p.corner(u, v); ok {
		pd[0][0] = c
	}
	return pd, nil
}

// corner returns the control point at a domain corner.
func (p *Patch) corner(u, v float64) (v3.Vec, bool) {
	var i, j int
	switch u {
	case 0:
		i = 0
	case p.AlphaU:
		i = 3
	default:
		return v3.Vec{}, false
	}
	switch v {
	case 0:
		j = 0
	case p.AlphaV:
		j = 3
	default:
		return v3.Vec{}, false
	}
	return p.Data[i][j], true
}

// Eval returns the surface point at (u, v).
func (p *Patch) Eval(u, v float64) (v3.Vec, error) {
	pd, err := p.PartialDerivatives(u, v, 0)
	if err != nil {
		return v3.Vec{}, err
	}
	return pd.Point(), nil
}

// UIsoline returns the curve v -> S(u, v) as an arc over [0, AlphaV].
func (p *Patch) UIsoline(u float64) (*Arc, error) {
	if err := checkAlpha(p.AlphaU); err != nil {
		return nil, err
	}
	bu := evalBasis(p.AlphaU, u)
	var pts [4]v3.Vec
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			pts[j] = pts[j].Add(p.Data[i][j].MulScalar(bu[i][0]))
		}
	}
	switch u {
	case 0:
		pts = p.Data[0]
	case p.AlphaU:
		pts = p.Data[3]
	}
	return NewArc(p.AlphaV, pts)
}

// VIsoline returns the curve u -> S(u, v) as an arc over [0, AlphaU].
func (p *Patch) VIsoline(v float64) (*Arc, error) {
	if err := checkAlpha(p.AlphaV); err != nil {
		return nil, err
	}
	bv := evalBasis(p.AlphaV, v)
	var pts [4]v3.Vec
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			pts[i] = pts[i].Add(p.Data[i][j].MulScalar(bv[j][0]))
		}
	}
	switch v {
	case 0:
		for i := range pts {
			pts[i] = p.Data[i][0]
		}
	case p.AlphaV:
		for i := range pts {
			pts[i] = p.Data[i][3]
		}
	}
	return NewArc(p.AlphaU, pts)
}

// UpdateDataForInterpolation replaces the control grid so that the surface
// passes through grid[k][l] at (uKnots[k], vKnots[l]). On failure the patch
// is unchanged.
func (p *Patch) UpdateDataForInterpolation(uKnots, vKnots []float64, grid [][]v3.Vec) error {
	if len(grid) != 4 {
		return fmt.Errorf("grid has %d rows, want 4: %w", len(grid), ErrMalformedKnotVector)
	}
	for k, row := range grid {
		if len(row) != 4 {
			return fmt.Errorf("grid row %d has %d points, want 4: %w", k, len(row), ErrMalformedKnotVector)
		}
	}
	if err := checkKnots(uKnots, p.AlphaU); err != nil {
		return fmt.Errorf("u: %w", err)
	}
	if err := checkKnots(vKnots, p.AlphaV); err != nil {
		return fmt.Errorf("v: %w", err)
	}

	// D = Fu X Fv^T per coordinate. Coordinates are laid side by side in
	// 4-column blocks so each factor is solved once.
	d := mat.NewDense(4, 12, nil)
	for k := 0; k < 4; k++ {
		for l := 0; l < 4; l++ {
			q := grid[k][l]
			d.Set(k, l, q.X)
			d.Set(k, 4+l, q.Y)
			d.Set(k, 8+l, q.Z)
		}
	}
	y, err := solveDense(collocation(p.AlphaU, uKnots), d)
	if err != nil {
		return err
	}
	z := mat.NewDense(4, 12, nil)
	for c := 0; c < 3; c++ {
		for i := 0; i < 4; i++ {
			for l := 0; l < 4; l++ {
				z.Set(l, 4*c+i, y.At(i, 4*c+l))
			}
		}
	}
	w, err := solveDense(collocation(p.AlphaV, vKnots), z)
	if err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			p.Data[i][j] = v3.Vec{X: w.At(j, i), Y: w.At(j, 4+i), Z: w.At(j, 8+i)}
		}
	}
	p.UKnots = append([]float64(nil), uKnots...)
	p.VKnots = append([]float64(nil), vKnots...)
	return nil
}

package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Polyline is the sampled image of a curve. Derivatives[0] holds the sample
// positions, Derivatives[r] the r-th derivative vectors at the same
// parameters. Derivative vectors are stored unscaled; Scale is the display
// length factor renderers apply when drawing them.
type Polyline struct {
	Parameters  []float64  `json:"parameters"`
	Derivatives [][]v3.Vec `json:"derivatives"`
	Scale       float64    `json:"scale"`
}

// SampleCount returns the number of samples.
func (p *Polyline) SampleCount() int {
	return len(p.Parameters)
}

// MaxOrder returns the highest stored derivative order.
func (p *Polyline) MaxOrder() int {
	return len(p.Derivatives) - 1
}

// Points returns the sampled positions.
func (p *Polyline) Points() []v3.Vec {
	if len(p.Derivatives) == 0 {
		return nil
	}
	return p.Derivatives[0]
}

// DerivativeSegments returns, for order >= 1, pairs of points
// {position, position + Scale*derivative} suitable for drawing as lines.
func (p *Polyline) DerivativeSegments(order int) []v3.Vec {
	if order < 1 || order > p.MaxOrder() {
		return nil
	}
	pts := p.Points()
	segs := make([]v3.Vec, 0, 2*len(pts))
	for i, pt := range pts {
		segs = append(segs, pt, pt.Add(p.Derivatives[order][i].MulScalar(p.Scale)))
	}
	return segs
}

// Bounds returns the bounding box of the sampled positions.
func (p *Polyline) Bounds() sdf.Box3 {
	return boundsOf(p.Points())
}

package tessellate

import (
	"fmt"

	"github.com/chazu/hyperweave/pkg/graph"
	"github.com/chazu/hyperweave/pkg/kernel"
	"github.com/chazu/hyperweave/pkg/kernel/hyperbolic"
)

// isoParameters returns count evenly spaced values over [0, alpha] including
// both borders. A single line sits on the 0 border.
func isoParameters(alpha float64, count int) []float64 {
	if count == 1 {
		return []float64{0}
	}
	return parameters(0, alpha, count)
}

// UIsolines samples count constant-u curves of p.
func UIsolines(p *hyperbolic.Patch, count, maxOrder, samples int, scale float64) ([]*kernel.Polyline, error) {
	if count < 1 {
		return nil, fmt.Errorf("tessellate: %d u-isolines, need at least 1", count)
	}
	lines := make([]*kernel.Polyline, 0, count)
	for _, u := range isoParameters(p.AlphaU, count) {
		arc, err := p.UIsoline(u)
		if err != nil {
			return nil, fmt.Errorf("tessellate: u-isoline at %v: %w", u, err)
		}
		img, err := Curve(arc, maxOrder, samples, scale)
		if err != nil {
			return nil, err
		}
		lines = append(lines, img)
	}
	return lines, nil
}

// VIsolines samples count constant-v curves of p.
func VIsolines(p *hyperbolic.Patch, count, maxOrder, samples int, scale float64) ([]*kernel.Polyline, error) {
	if count < 1 {
		return nil, fmt.Errorf("tessellate: %d v-isolines, need at least 1", count)
	}
	lines := make([]*kernel.Polyline, 0, count)
	for _, v := range isoParameters(p.AlphaV, count) {
		arc, err := p.VIsoline(v)
		if err != nil {
			return nil, fmt.Errorf("tessellate: v-isoline at %v: %w", v, err)
		}
		img, err := Curve(arc, maxOrder, samples, scale)
		if err != nil {
			return nil, err
		}
		lines = append(lines, img)
	}
	return lines, nil
}

// BorderArc returns the boundary curve of p on the given cardinal side:
// N is u=0, S is u=alphaU, W is v=0, E is v=alphaV.
func BorderArc(p *hyperbolic.Patch, dir graph.PatchDirection) (*hyperbolic.Arc, error) {
	switch dir {
	case graph.N:
		return p.UIsoline(0)
	case graph.S:
		return p.UIsoline(p.AlphaU)
	case graph.W:
		return p.VIsoline(0)
	case graph.E:
		return p.VIsoline(p.AlphaV)
	}
	return nil, fmt.Errorf("tessellate: border %s: %w", dir, graph.ErrInvalidDirection)
}

// Border samples the boundary curve of p on the given cardinal side.
func Border(p *hyperbolic.Patch, dir graph.PatchDirection, maxOrder, samples int, scale float64) (*kernel.Polyline, error) {
	arc, err := BorderArc(p, dir)
	if err != nil {
		return nil, err
	}
	return Curve(arc, maxOrder, samples, scale)
}

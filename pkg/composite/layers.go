package composite

import (
	"fmt"

	"github.com/chazu/hyperweave/pkg/graph"
	"github.com/chazu/hyperweave/pkg/kernel/hyperbolic"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// A layer is the row or column of a patch grid at distance k from one
// border: layer 0 is the border itself. N and S layers are rows, W and E
// layers are columns; both run in increasing index order.

func layer(p *hyperbolic.Patch, dir graph.PatchDirection, k int) [4]v3.Vec {
	var out [4]v3.Vec
	for m := range out {
		i, j := layerCell(dir, k, m)
		out[m] = p.Data[i][j]
	}
	return out
}

func setLayer(p *hyperbolic.Patch, dir graph.PatchDirection, k int, pts [4]v3.Vec) {
	for m, pt := range pts {
		i, j := layerCell(dir, k, m)
		p.Data[i][j] = pt
	}
}

// layerCell maps entry m of layer k on side dir to grid coordinates.
func layerCell(dir graph.PatchDirection, k, m int) (row, col int) {
	switch dir {
	case graph.N:
		return k, m
	case graph.S:
		return 3 - k, m
	case graph.W:
		return m, k
	default: // graph.E
		return m, 3 - k
	}
}

// acrossAlpha is the shape parameter of the direction that leaves the patch
// through side dir: alpha_u for N/S, alpha_v for E/W.
func acrossAlpha(p *hyperbolic.Patch, dir graph.PatchDirection) float64 {
	if dir == graph.N || dir == graph.S {
		return p.AlphaU
	}
	return p.AlphaV
}

// alongAlpha is the shape parameter along side dir.
func alongAlpha(p *hyperbolic.Patch, dir graph.PatchDirection) float64 {
	if dir == graph.N || dir == graph.S {
		return p.AlphaV
	}
	return p.AlphaU
}

// matchAlong fails unless side da of a and side db of b run with the same
// alpha, the condition for equal control points to give the same border
// curve.
func matchAlong(a *hyperbolic.Patch, da graph.PatchDirection, b *hyperbolic.Patch, db graph.PatchDirection) error {
	if aa, ab := alongAlpha(a, da), alongAlpha(b, db); aa != ab {
		return fmt.Errorf("alpha along side %v is %v, along side %v is %v: %w", da, aa, db, ab, hyperbolic.ErrInvalidShapeParameter)
	}
	return nil
}

// alphas returns (alphaU, alphaV) for a patch whose across direction at
// side dir has alpha across and whose along direction has alpha along.
func alphas(dir graph.PatchDirection, across, along float64) (float64, float64) {
	if dir == graph.N || dir == graph.S {
		return across, along
	}
	return along, across
}

// flatLegs reports whether every control leg crossing side dir has zero
// length, leaving no cross-border derivative to continue.
func flatLegs(p *hyperbolic.Patch, dir graph.PatchDirection) bool {
	l0, l1 := layer(p, dir, 0), layer(p, dir, 1)
	for m := range l0 {
		if l0[m].Sub(l1[m]).Length() != 0 {
			return false
		}
	}
	return true
}

// sideDiagonals returns, for a new patch attached through its side opp to an
// anchor, the two perpendicular sides of the anchor paired with the
// diagonal slot of the new patch that faces each of them.
func sideDiagonals(opp graph.PatchDirection) [2][2]graph.PatchDirection {
	return [2][2]graph.PatchDirection{
		{opp.Rotate(-2), opp.Rotate(-1)},
		{opp.Rotate(2), opp.Rotate(1)},
	}
}

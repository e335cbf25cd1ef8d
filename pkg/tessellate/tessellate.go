// Package tessellate samples curve and surface evaluators into render-ready
// images: polylines with derivative vectors for arcs, triangle meshes with
// normals and texture coordinates for patches. The tessellator is read-only
// and never mutates the geometry it samples.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/hyperweave/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinSamples is the smallest sample or division count accepted per direction.
const MinSamples = 2

// parameters returns n evenly spaced values covering [a, b], both ends
// included exactly.
func parameters(a, b float64, n int) []float64 {
	ps := make([]float64, n)
	step := (b - a) / float64(n-1)
	for k := range ps {
		ps[k] = a + float64(k)*step
	}
	ps[n-1] = b
	return ps
}

// Curve samples c at samples evenly spaced parameters and records the
// position and derivatives up to maxOrder at each.
func Curve(c kernel.Curve, maxOrder, samples int, scale float64) (*kernel.Polyline, error) {
	if c == nil {
		return nil, fmt.Errorf("tessellate: nil curve")
	}
	if samples < MinSamples {
		return nil, fmt.Errorf("tessellate: %d samples, need at least %d", samples, MinSamples)
	}
	if maxOrder < 0 {
		return nil, fmt.Errorf("tessellate: negative derivative order %d", maxOrder)
	}
	a, b := c.Domain()
	img := &kernel.Polyline{
		Parameters:  parameters(a, b, samples),
		Derivatives: make([][]v3.Vec, maxOrder+1),
		Scale:       scale,
	}
	for r := range img.Derivatives {
		img.Derivatives[r] = make([]v3.Vec, samples)
	}
	for k, t := range img.Parameters {
		d, err := c.Derivatives(t, maxOrder)
		if err != nil {
			return nil, fmt.Errorf("tessellate: sample %d at t=%v: %w", k, t, err)
		}
		for r := range d {
			img.Derivatives[r][k] = d[r]
		}
	}
	return img, nil
}

// Surface samples s on a uDiv x vDiv grid and triangulates it, two triangles
// per cell. Vertex (i, j) is at index i*vDiv + j; its texture coordinate is
// (i/(uDiv-1), j/(vDiv-1)).
func Surface(s kernel.Surface, uDiv, vDiv int) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("tessellate: nil surface")
	}
	if uDiv < MinSamples || vDiv < MinSamples {
		return nil, fmt.Errorf("tessellate: %dx%d divisions, need at least %dx%d", uDiv, vDiv, MinSamples, MinSamples)
	}
	u0, u1, v0, v1 := s.Domain()
	us := parameters(u0, u1, uDiv)
	vs := parameters(v0, v1, vDiv)

	n := uDiv * vDiv
	pos := make([]v3.Vec, n)
	nrm := make([]v3.Vec, n)
	var degenerate []int

	for i, u := range us {
		for j, v := range vs {
			pd, err := s.PartialDerivatives(u, v, 1)
			if err != nil {
				return nil, fmt.Errorf("tessellate: vertex (%d,%d) at (%v,%v): %w", i, j, u, v, err)
			}
			idx := i*vDiv + j
			pos[idx] = pd.Point()
			if nv, ok := unit(pd.Normal()); ok {
				nrm[idx] = nv
			} else {
				degenerate = append(degenerate, idx)
			}
		}
	}
	for _, idx := range degenerate {
		nrm[idx] = gridNormal(pos, idx/vDiv, idx%vDiv, uDiv, vDiv)
	}

	m := &kernel.Mesh{
		Vertices:  make([]float32, 0, 3*n),
		Normals:   make([]float32, 0, 3*n),
		TexCoords: make([]float32, 0, 2*n),
		Indices:   make([]uint32, 0, 6*(uDiv-1)*(vDiv-1)),
	}
	for i := 0; i < uDiv; i++ {
		for j := 0; j < vDiv; j++ {
			idx := i*vDiv + j
			p, q := pos[idx], nrm[idx]
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(q.X), float32(q.Y), float32(q.Z))
			m.TexCoords = append(m.TexCoords,
				float32(i)/float32(uDiv-1),
				float32(j)/float32(vDiv-1))
		}
	}
	for i := 0; i < uDiv-1; i++ {
		for j := 0; j < vDiv-1; j++ {
			a := uint32(i*vDiv + j)
			b := uint32((i+1)*vDiv + j)
			c := uint32((i+1)*vDiv + j + 1)
			d := uint32(i*vDiv + j + 1)
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	return m, nil
}

// unit normalises v, reporting false for a zero or non-finite vector.
func unit(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v3.Vec{}, false
	}
	return v.MulScalar(1 / l), true
}

// gridNormal estimates the normal at grid vertex (i, j) from the sampled
// neighbours when the analytic cross product vanishes, as it does on a
// collapsed border. Each candidate triangle spans one u-step and one v-step;
// the sign keeps it oriented like Su x Sv.
func gridNormal(pos []v3.Vec, i, j, uDiv, vDiv int) v3.Vec {
	for _, du := range []int{1, -1} {
		for _, dv := range []int{1, -1} {
			for reach := 1; reach < max(uDiv, vDiv); reach++ {
				iu, jv := i+du*reach, j+dv*reach
				if iu < 0 || iu >= uDiv || jv < 0 || jv >= vDiv {
					break
				}
				p := pos[i*vDiv+j]
				pu, pv, puv := pos[iu*vDiv+j], pos[i*vDiv+jv], pos[iu*vDiv+jv]
				for _, tri := range []sdf.Triangle3{{p, pu, pv}, {p, pu, puv}, {p, puv, pv}} {
					if n, ok := unit(tri.Normal()); ok {
						return n.MulScalar(float64(du * dv))
					}
				}
			}
		}
	}
	return v3.Vec{}
}

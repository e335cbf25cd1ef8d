package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, texCoords has 2 floats per vertex,
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`  // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	TexCoords []float32 `json:"texCoords"` // [s0,t0, s1,t1, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
	Name      string    `json:"name"`      // which graph element this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
// An empty mesh has a zero box.
func (m *Mesh) Bounds() sdf.Box3 {
	n := m.VertexCount()
	pts := make([]v3.Vec, n)
	for i := range pts {
		pts[i] = m.Vertex(i)
	}
	return boundsOf(pts)
}

// boundsOf returns the bounding box of a point set.
func boundsOf(pts []v3.Vec) sdf.Box3 {
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = v3.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = v3.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

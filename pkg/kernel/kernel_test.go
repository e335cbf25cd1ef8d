package kernel

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{0, 0, 0, 1, -2, 3, -1, 4, 0.5}}
	b := m.Bounds()
	if b.Min != (v3.Vec{X: -1, Y: -2, Z: 0}) {
		t.Errorf("Bounds().Min = %v, want {-1 -2 0}", b.Min)
	}
	if b.Max != (v3.Vec{X: 1, Y: 4, Z: 3}) {
		t.Errorf("Bounds().Max = %v, want {1 4 3}", b.Max)
	}
}

// --- Polyline tests ---

func TestPolylineDerivativeSegments(t *testing.T) {
	p := &Polyline{
		Parameters: []float64{0, 1},
		Derivatives: [][]v3.Vec{
			{{X: 0}, {X: 1}},
			{{Y: 1}, {Y: 2}},
		},
		Scale: 0.5,
	}
	if p.SampleCount() != 2 {
		t.Fatalf("SampleCount() = %d, want 2", p.SampleCount())
	}
	if p.MaxOrder() != 1 {
		t.Fatalf("MaxOrder() = %d, want 1", p.MaxOrder())
	}
	segs := p.DerivativeSegments(1)
	want := []v3.Vec{{X: 0}, {X: 0, Y: 0.5}, {X: 1}, {X: 1, Y: 1}}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segment points, got %d", len(want), len(segs))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment point %d = %v, want %v", i, segs[i], want[i])
		}
	}
	if segs := p.DerivativeSegments(2); segs != nil {
		t.Errorf("expected nil for order beyond MaxOrder, got %v", segs)
	}
	if segs := p.DerivativeSegments(0); segs != nil {
		t.Errorf("expected nil for order 0, got %v", segs)
	}
}

func TestPolylineEmpty(t *testing.T) {
	p := &Polyline{}
	if p.Points() != nil {
		t.Error("Points() on empty polyline should be nil")
	}
	b := p.Bounds()
	if b.Min != (v3.Vec{}) || b.Max != (v3.Vec{}) {
		t.Errorf("empty Bounds() = %v, want zero box", b)
	}
}

// --- PartialDerivatives tests ---

func TestPartialDerivativesLayout(t *testing.T) {
	pd := NewPartialDerivatives(2)
	if pd.MaxOrder() != 2 {
		t.Fatalf("MaxOrder() = %d, want 2", pd.MaxOrder())
	}
	for r := range pd {
		if len(pd[r]) != r+1 {
			t.Errorf("row %d has %d entries, want %d", r, len(pd[r]), r+1)
		}
	}
	pd[1][0] = v3.Vec{X: 1}
	pd[1][1] = v3.Vec{Y: 1}
	if n := pd.Normal(); n != (v3.Vec{Z: 1}) {
		t.Errorf("Normal() = %v, want {0 0 1}", n)
	}
}

func TestPrimitiveString(t *testing.T) {
	tests := []struct {
		p    Primitive
		want string
	}{
		{PrimitivePoints, "points"},
		{PrimitiveLineStrip, "line-strip"},
		{PrimitiveLines, "lines"},
		{Primitive(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Primitive(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}

package kernel

// Primitive selects how a renderer draws a sequence of points.
type Primitive int

const (
	PrimitivePoints    Primitive = iota // individual points
	PrimitiveLineStrip                  // connected polyline
	PrimitiveLines                      // independent segments, two points each
)

func (p Primitive) String() string {
	switch p {
	case PrimitivePoints:
		return "points"
	case PrimitiveLineStrip:
		return "line-strip"
	case PrimitiveLines:
		return "lines"
	default:
		return "unknown"
	}
}

// CurveRenderer draws curve images. Implementations live outside the engine
// (an OpenGL or WebGPU backend); the engine never issues draw calls itself.
type CurveRenderer interface {
	// RenderDerivatives draws derivative order `order` of img: order 0 is the
	// curve itself, higher orders are the scaled derivative vectors.
	RenderDerivatives(img *Polyline, order int, kind Primitive) error
}

// MeshRenderer draws surface images.
type MeshRenderer interface {
	// RenderMesh draws a triangulated image. style carries the material and
	// the optional texture bound to the element.
	RenderMesh(img *Mesh, style MeshStyle) error
}

// MeshStyle describes shading for a mesh draw.
type MeshStyle struct {
	Material string
	// Texture is nil unless texturing is enabled for the element.
	Texture TextureSource
}

// TextureSource is raster content a renderer can upload.
type TextureSource interface {
	Width() int
	Height() int
	Bits() []byte
}

package graph

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Colour
// ---------------------------------------------------------------------------

// Color4 is an RGBA colour with components in [0, 1].
type Color4 struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// RGB returns an opaque colour.
func RGB(r, g, b float32) Color4 {
	return Color4{R: r, G: g, B: b, A: 1}
}

// Clamp returns c with every component limited to [0, 1].
func (c Color4) Clamp() Color4 {
	cl := func(v float32) float32 { return min(max(v, 0), 1) }
	return Color4{R: cl(c.R), G: cl(c.G), B: cl(c.B), A: cl(c.A)}
}

var (
	White  = RGB(1, 1, 1)
	Red    = RGB(1, 0, 0)
	Green  = RGB(0, 1, 0)
	Blue   = RGB(0, 0, 1)
	Yellow = RGB(1, 1, 0)
)

// DefaultArcColor is used when an arc is inserted without a colour.
var DefaultArcColor = Red

// DerivativeColors are the colours renderers conventionally use for
// derivative orders 0, 1 and 2 of an arc image.
var DerivativeColors = [3]Color4{Red, Green, Blue}

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// Material is a front/back Phong material.
type Material struct {
	Name      string  `json:"name"`
	Ambient   Color4  `json:"ambient"`
	Diffuse   Color4  `json:"diffuse"`
	Specular  Color4  `json:"specular"`
	Emissive  Color4  `json:"emissive"`
	Shininess float32 `json:"shininess"`
}

func material(name string, amb, diff, spec [3]float32, shininess float32) Material {
	return Material{
		Name:      name,
		Ambient:   RGB(amb[0], amb[1], amb[2]),
		Diffuse:   RGB(diff[0], diff[1], diff[2]),
		Specular:  RGB(spec[0], spec[1], spec[2]),
		Emissive:  Color4{A: 1},
		Shininess: shininess,
	}
}

// Material presets.
var (
	Emerald   = material("emerald", [3]float32{0.0215, 0.1745, 0.0215}, [3]float32{0.07568, 0.61424, 0.07568}, [3]float32{0.633, 0.727811, 0.633}, 76.8)
	Gold      = material("gold", [3]float32{0.24725, 0.1995, 0.0745}, [3]float32{0.75164, 0.60648, 0.22648}, [3]float32{0.628281, 0.555802, 0.366065}, 51.2)
	Brass     = material("brass", [3]float32{0.329412, 0.223529, 0.027451}, [3]float32{0.780392, 0.568627, 0.113725}, [3]float32{0.992157, 0.941176, 0.807843}, 27.8974)
	Turquoise = material("turquoise", [3]float32{0.1, 0.18725, 0.1745}, [3]float32{0.396, 0.74151, 0.69102}, [3]float32{0.297254, 0.30829, 0.306678}, 12.8)
	Pearl     = material("pearl", [3]float32{0.25, 0.20725, 0.20725}, [3]float32{1.0, 0.829, 0.829}, [3]float32{0.296648, 0.296648, 0.296648}, 11.264)
	Ruby      = material("ruby", [3]float32{0.1745, 0.01175, 0.01175}, [3]float32{0.61424, 0.04136, 0.04136}, [3]float32{0.727811, 0.626959, 0.626959}, 76.8)
	Silver    = material("silver", [3]float32{0.19225, 0.19225, 0.19225}, [3]float32{0.50754, 0.50754, 0.50754}, [3]float32{0.508273, 0.508273, 0.508273}, 51.2)
)

// DefaultMaterial is used for patches inserted without a material.
var DefaultMaterial = Emerald

var materials = map[string]Material{
	Emerald.Name:   Emerald,
	Gold.Name:      Gold,
	Brass.Name:     Brass,
	Turquoise.Name: Turquoise,
	Pearl.Name:     Pearl,
	Ruby.Name:      Ruby,
	Silver.Name:    Silver,
}

// LookupMaterial returns the preset with the given name, case-insensitive.
func LookupMaterial(name string) (Material, error) {
	m, ok := materials[strings.ToLower(name)]
	if !ok {
		return Material{}, fmt.Errorf("unknown material %q", name)
	}
	return m, nil
}

// MaterialNames returns the preset names in sorted order.
func MaterialNames() []string {
	names := make([]string, 0, len(materials))
	for n := range materials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

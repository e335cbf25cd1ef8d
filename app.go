package main

import (
	"fmt"
	"log/slog"

	"github.com/chazu/hyperweave/pkg/composite"
	"github.com/chazu/hyperweave/pkg/config"
	"github.com/chazu/hyperweave/pkg/engine"
	"github.com/chazu/hyperweave/pkg/graph"
	"github.com/chazu/hyperweave/pkg/kernel"
	"github.com/chazu/hyperweave/pkg/logging"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// App is the front-end binding. A GUI or the CLI feeds it script source and
// receives JSON-ready images of the workspace.
type App struct {
	engine *engine.Engine
	log    *slog.Logger
}

// CurveData is one arc image.
type CurveData struct {
	Index int    `json:"index"`
	Color string `json:"color"`
	// Points holds the sampled positions as [x0,y0,z0, x1,y1,z1, ...].
	Points []float32 `json:"points"`
	// Derivatives[r-1] holds the segments for derivative order r, two points
	// per sample, already scaled for display.
	Derivatives [][]float32 `json:"derivatives"`
}

// LineData is a patch isoline or the selected border.
type LineData struct {
	Points []float32 `json:"points"`
}

// MeshData is one patch image.
type MeshData struct {
	Index     int        `json:"index"`
	Vertices  []float32  `json:"vertices"`
	Normals   []float32  `json:"normals"`
	TexCoords []float32  `json:"texCoords"`
	Indices   []uint32   `json:"indices"`
	Material  string     `json:"material"`
	Texture   string     `json:"texture,omitempty"`
	ULines    []LineData `json:"uLines"`
	VLines    []LineData `json:"vLines"`
}

// SelectionData is the highlighted patch border.
type SelectionData struct {
	Patch int      `json:"patch"`
	Side  string   `json:"side"`
	Line  LineData `json:"line"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Curves    []CurveData     `json:"curves"`
	Meshes    []MeshData      `json:"meshes"`
	Selection *SelectionData  `json:"selection,omitempty"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Defaults())
}

// NewAppWithConfig creates an App whose workspace is sized by cfg.
func NewAppWithConfig(cfg config.Config) *App {
	return &App{
		engine: engine.New(cfg, nil),
		log:    logging.WithComponent("app"),
	}
}

// Evaluate runs source against the workspace and returns its images.
// Images reflect the workspace after the script, including the effect of
// forms that ran before an error.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Curves:   []CurveData{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.). The workspace may still be
		// locked by the stalled run, so images are not read.
		a.log.Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}

	a.engine.View(func(ws *engine.Workspace) {
		a.collectCurves(ws.Curves, &result)
		a.collectPatches(ws.Patches, &result)
	})
	a.log.Debug("evaluate finished", "curves", len(result.Curves), "meshes", len(result.Meshes), "errors", len(result.Errors))
	return result
}

func (a *App) collectCurves(cs *composite.CurveSet, result *EvalResult) {
	for i, rec := range cs.Arcs() {
		if rec.Stale() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("arc %d has no image", i),
			})
			continue
		}
		cd := CurveData{
			Index:       i,
			Color:       hexColor(rec.Color),
			Points:      flatten(rec.Image.Points()),
			Derivatives: [][]float32{},
		}
		for r := 1; r <= rec.Image.MaxOrder(); r++ {
			cd.Derivatives = append(cd.Derivatives, flatten(rec.Image.DerivativeSegments(r)))
		}
		result.Curves = append(result.Curves, cd)
	}
}

func (a *App) collectPatches(ps *composite.PatchSet, result *EvalResult) {
	for i, rec := range ps.Patches() {
		if rec.Stale() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("patch %d has no image", i),
			})
			continue
		}
		md := MeshData{
			Index:     i,
			Vertices:  rec.Image.Vertices,
			Normals:   rec.Image.Normals,
			TexCoords: rec.Image.TexCoords,
			Indices:   rec.Image.Indices,
			Material:  rec.Material.Name,
			ULines:    lines(rec.ULines),
			VLines:    lines(rec.VLines),
		}
		if rec.RenderTexture {
			md.Texture = rec.TexturePath
		}
		result.Meshes = append(result.Meshes, md)
	}
	if sel := ps.Selection(); sel != nil && sel.Image != nil {
		result.Selection = &SelectionData{
			Patch: sel.Index,
			Side:  sel.Side.String(),
			Line:  LineData{Points: flatten(sel.Image.Points())},
		}
	}
}

func lines(imgs []*kernel.Polyline) []LineData {
	out := make([]LineData, 0, len(imgs))
	for _, img := range imgs {
		if img == nil {
			continue
		}
		out = append(out, LineData{Points: flatten(img.Points())})
	}
	return out
}

// flatten packs points as [x0,y0,z0, x1,y1,z1, ...].
func flatten(pts []v3.Vec) []float32 {
	out := make([]float32, 0, 3*len(pts))
	for _, p := range pts {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

// hexColor renders c as "#rrggbb"; alpha is dropped.
func hexColor(c graph.Color4) string {
	c = c.Clamp()
	to8 := func(v float32) int { return int(v*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

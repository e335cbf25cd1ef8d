package composite

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chazu/hyperweave/pkg/config"
	"github.com/chazu/hyperweave/pkg/graph"
	"github.com/chazu/hyperweave/pkg/kernel"
	"github.com/chazu/hyperweave/pkg/kernel/hyperbolic"
	"github.com/chazu/hyperweave/pkg/logging"
	"github.com/chazu/hyperweave/pkg/tessellate"
	"github.com/chazu/hyperweave/pkg/texture"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PatchAttributes is one element of a PatchSet.
type PatchAttributes struct {
	Patch    *hyperbolic.Patch
	Image    *kernel.Mesh // nil while stale
	Material graph.Material
	MaxOrder int
	Links    graph.PatchLinks

	// Isoparametric line caches, nil when cleared.
	ULines []*kernel.Polyline
	VLines []*kernel.Polyline

	TexturePath   string
	Texture       *texture.Raster
	RenderTexture bool
}

// Stale reports whether the image must be regenerated before rendering.
func (a *PatchAttributes) Stale() bool { return a.Image == nil }

func (a *PatchAttributes) clone() *PatchAttributes {
	c := *a
	c.Patch = a.Patch.Clone()
	return &c
}

// Selection is the cached boundary curve of one patch side.
type Selection struct {
	Index int
	Side  graph.PatchDirection
	Image *kernel.Polyline
}

// PatchSet is a composite surface: a bounded network of patches.
type PatchSet struct {
	patches          *graph.Graph[*PatchAttributes]
	divPoints        int
	isolineSamples   int
	isolineScale     float64
	selectionSamples int
	loadAlpha        float64
	loadOrder        int
	decoder          texture.Decoder
	selection        *Selection
	log              *slog.Logger
}

// NewPatchSet creates an empty set sized by cfg. Textures are decoded with
// dec; a nil dec uses texture.FileDecoder.
func NewPatchSet(cfg config.PatchConfig, dec texture.Decoder) *PatchSet {
	if dec == nil {
		dec = texture.FileDecoder{}
	}
	return &PatchSet{
		patches:          graph.New[*PatchAttributes](cfg.Capacity),
		divPoints:        cfg.DivPoints,
		isolineSamples:   cfg.IsolineSamples,
		isolineScale:     cfg.IsolineScale,
		selectionSamples: cfg.SelectionSamples,
		loadAlpha:        cfg.LoadAlpha,
		loadOrder:        cfg.LoadOrder,
		decoder:          dec,
		log:              logging.WithComponent("patches"),
	}
}

// Count returns the number of live patches.
func (s *PatchSet) Count() int { return s.patches.Len() }

// Capacity returns the maximum number of patches.
func (s *PatchSet) Capacity() int { return s.patches.Cap() }

// Patch returns the record at index. Callers must treat it as read-only.
func (s *PatchSet) Patch(index int) (*PatchAttributes, error) {
	return s.patches.Get(index)
}

// Patches returns all records in index order.
func (s *PatchSet) Patches() []*PatchAttributes { return s.patches.Items() }

// Selection returns the cached boundary curve, or nil.
func (s *PatchSet) Selection() *Selection { return s.selection }

// Clear drops every patch and the selection curve.
func (s *PatchSet) Clear() {
	s.patches.Reset()
	s.selection = nil
	s.log.Debug("cleared")
}

func (s *PatchSet) reject(op string, index int, err error) error {
	logging.WithOperation(s.log, op).Warn("rejected", "index", index, "err", err)
	return err
}

func (s *PatchSet) build(p *hyperbolic.Patch, maxOrder int, mat graph.Material) (*PatchAttributes, error) {
	rec := &PatchAttributes{Patch: p, Material: mat, MaxOrder: maxOrder, Links: graph.NewPatchLinks()}
	if err := s.refresh(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// refresh regenerates the image and drops the isoline caches.
func (s *PatchSet) refresh(rec *PatchAttributes) error {
	img, err := tessellate.Surface(rec.Patch, s.divPoints, s.divPoints)
	if err != nil {
		return err
	}
	rec.Image = img
	rec.ULines, rec.VLines = nil, nil
	return nil
}

// commit stores edited records and drops the selection if it belongs to
// one of them.
func (s *PatchSet) commit(recs map[int]*PatchAttributes) {
	for i, rec := range recs {
		_ = s.patches.Set(i, rec)
		if s.selection != nil && s.selection.Index == i {
			s.selection = nil
		}
	}
}

// Insert adds a free patch with alpha in both directions.
func (s *PatchSet) Insert(alpha float64, maxOrder int, data [4][4]v3.Vec, mat graph.Material) (int, error) {
	const op = "insert"
	if err := hyperbolic.CheckOrder(maxOrder); err != nil {
		return -1, s.reject(op, -1, fmt.Errorf("patches: %s: %w", op, err))
	}
	if s.patches.Full() {
		return -1, s.reject(op, -1, fmt.Errorf("patches: %s: %d patches: %w", op, s.patches.Len(), graph.ErrCapacityExceeded))
	}
	p, err := hyperbolic.NewPatch(alpha, alpha, data)
	if err != nil {
		return -1, s.reject(op, -1, fmt.Errorf("patches: %s: %w", op, err))
	}
	rec, err := s.build(p, maxOrder, mat)
	if err != nil {
		return -1, s.reject(op, -1, fmt.Errorf("patches: %s: %w", op, err))
	}
	idx, err := s.patches.Add(rec)
	if err != nil {
		return -1, s.reject(op, -1, err)
	}
	logging.WithOperation(s.log, op).Debug("patch inserted", "index", idx, "alpha", alpha)
	return idx, nil
}

// ContinueExisting attaches a new patch on side dir of patch id. The new
// patch shares that border and its cross-border first derivative; its alpha
// across the border is alpha, along the border it keeps the anchor's. The
// anchor's perpendicular neighbours are recorded in the new patch's
// diagonal slots, and the new patch in theirs when free.
func (s *PatchSet) ContinueExisting(id int, dir graph.PatchDirection, alpha float64, maxOrder int, mat graph.Material) (int, error) {
	const op = "continue"
	if err := hyperbolic.CheckOrder(maxOrder); err != nil {
		return -1, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	anchor, err := s.openSide(op, id, dir)
	if err != nil {
		return -1, err
	}
	if s.patches.Full() {
		return -1, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, graph.ErrCapacityExceeded))
	}
	if flatLegs(anchor.Patch, dir) {
		return -1, s.reject(op, id, fmt.Errorf("patches: %s: side %v of patch %d has no cross derivative: %w", op, dir, id, hyperbolic.ErrDegenerateGeometry))
	}

	ap := anchor.Patch
	alphaU, alphaV := alphas(dir, alpha, alongAlpha(ap, dir))
	p, err := hyperbolic.NewPatch(alphaU, alphaV, [4][4]v3.Vec{})
	if err != nil {
		return -1, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	opp := dir.Opposite()
	l0 := layer(ap, dir, 0)
	l1, l2, l3 := layer(ap, dir, 1), layer(ap, dir, 2), layer(ap, dir, 3)
	var n1, n2, n3 [4]v3.Vec
	for m := range l0 {
		n1[m] = junctionInner(l0[m], l1[m], acrossAlpha(ap, dir), alpha)
		n2[m] = mirror(l0[m], l2[m])
		n3[m] = mirror(l0[m], l3[m])
	}
	setLayer(p, opp, 0, l0)
	setLayer(p, opp, 1, n1)
	setLayer(p, opp, 2, n2)
	setLayer(p, opp, 3, n3)

	rec, err := s.build(p, maxOrder, mat)
	if err != nil {
		return -1, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	idx, err := s.patches.Add(rec)
	if err != nil {
		return -1, s.reject(op, id, err)
	}
	anchor.Links[dir] = idx
	rec.Links[opp] = id
	for _, sd := range sideDiagonals(opp) {
		side, diag := sd[0], sd[1]
		x := anchor.Links[side]
		if x == graph.NoNeighbor {
			continue
		}
		rec.Links[diag] = x
		if xr, err := s.patches.Get(x); err == nil && xr.Links[diag.Opposite()] == graph.NoNeighbor {
			xr.Links[diag.Opposite()] = idx
		}
	}
	logging.WithOperation(s.log, op).Debug("patch continued", "anchor", id, "dir", dir, "index", idx)
	return idx, nil
}

// Join connects side firstDir of first with side secondDir of second. If
// the two borders coincide the patches are linked directly and second is
// returned. Otherwise a bridge patch is added whose north border is the
// first border and whose south border is the second, matching the
// cross-border derivative of both; its alphas are taken from first. The
// two sides must share their along alpha.
func (s *PatchSet) Join(first, second int, firstDir, secondDir graph.PatchDirection) (int, error) {
	const op = "join"
	a, err := s.openSide(op, first, firstDir)
	if err != nil {
		return -1, err
	}
	b, err := s.openSide(op, second, secondDir)
	if err != nil {
		return -1, err
	}
	if first == second && firstDir == secondDir {
		return -1, s.reject(op, first, fmt.Errorf("patches: %s: patch %d to itself on side %v: %w", op, first, firstDir, graph.ErrInvalidDirection))
	}
	if err := matchAlong(a.Patch, firstDir, b.Patch, secondDir); err != nil {
		return -1, s.reject(op, first, fmt.Errorf("patches: %s %d/%d: %w", op, first, second, err))
	}

	la, lb := layer(a.Patch, firstDir, 0), layer(b.Patch, secondDir, 0)
	same := true
	for m := range la {
		same = same && coincident(la[m], lb[m])
	}
	if same {
		a.Links[firstDir] = second
		b.Links[secondDir] = first
		logging.WithOperation(s.log, op).Debug("patches linked", "first", first, "second", second)
		return second, nil
	}

	if flatLegs(a.Patch, firstDir) {
		return -1, s.reject(op, first, fmt.Errorf("patches: %s: patch %d side %v: %w", op, first, firstDir, hyperbolic.ErrDegenerateGeometry))
	}
	if flatLegs(b.Patch, secondDir) {
		return -1, s.reject(op, second, fmt.Errorf("patches: %s: patch %d side %v: %w", op, second, secondDir, hyperbolic.ErrDegenerateGeometry))
	}
	if s.patches.Full() {
		return -1, s.reject(op, first, fmt.Errorf("patches: %s: %w", op, graph.ErrCapacityExceeded))
	}

	across := acrossAlpha(a.Patch, firstDir)
	p, err := hyperbolic.NewPatch(across, alongAlpha(a.Patch, firstDir), [4][4]v3.Vec{})
	if err != nil {
		return -1, s.reject(op, first, fmt.Errorf("patches: %s: %w", op, err))
	}
	la1, lb1 := layer(a.Patch, firstDir, 1), layer(b.Patch, secondDir, 1)
	for m := range la {
		p.Data[0][m] = la[m]
		p.Data[1][m] = junctionInner(la[m], la1[m], acrossAlpha(a.Patch, firstDir), across)
		p.Data[2][m] = junctionInner(lb[m], lb1[m], acrossAlpha(b.Patch, secondDir), across)
		p.Data[3][m] = lb[m]
	}
	rec, err := s.build(p, a.MaxOrder, a.Material)
	if err != nil {
		return -1, s.reject(op, first, fmt.Errorf("patches: %s: %w", op, err))
	}
	idx, err := s.patches.Add(rec)
	if err != nil {
		return -1, s.reject(op, first, err)
	}
	a.Links[firstDir] = idx
	b.Links[secondDir] = idx
	rec.Links[graph.N] = first
	rec.Links[graph.S] = second
	logging.WithOperation(s.log, op).Debug("patches bridged", "first", first, "second", second, "index", idx)
	return idx, nil
}

// Merge moves side firstDir of first and side secondDir of second onto one
// shared border, entry by entry, so that the cross-border derivatives agree,
// and links the two. The two sides must share their along alpha. Both
// patches are updated or neither is.
func (s *PatchSet) Merge(first, second int, firstDir, secondDir graph.PatchDirection) error {
	const op = "merge"
	if first == second {
		return s.reject(op, first, fmt.Errorf("patches: %s: patch %d with itself: %w", op, first, graph.ErrInvalidIndex))
	}
	a, err := s.mergeSide(op, first, firstDir, second)
	if err != nil {
		return err
	}
	b, err := s.mergeSide(op, second, secondDir, first)
	if err != nil {
		return err
	}
	if err := matchAlong(a.Patch, firstDir, b.Patch, secondDir); err != nil {
		return s.reject(op, first, fmt.Errorf("patches: %s %d/%d: %w", op, first, second, err))
	}

	la1, lb1 := layer(a.Patch, firstDir, 1), layer(b.Patch, secondDir, 1)
	alphaA, alphaB := acrossAlpha(a.Patch, firstDir), acrossAlpha(b.Patch, secondDir)
	var border [4]v3.Vec
	for m := range border {
		border[m], err = mergePoint(la1[m], lb1[m], alphaA, alphaB)
		if err != nil {
			return s.reject(op, first, fmt.Errorf("patches: %s %d/%d entry %d: %w", op, first, second, m, err))
		}
	}

	na, nb := a.clone(), b.clone()
	setLayer(na.Patch, firstDir, 0, border)
	setLayer(nb.Patch, secondDir, 0, border)
	na.Patch.UKnots, na.Patch.VKnots = nil, nil
	nb.Patch.UKnots, nb.Patch.VKnots = nil, nil
	if err := s.refresh(na); err != nil {
		return s.reject(op, first, fmt.Errorf("patches: %s: %w", op, err))
	}
	if err := s.refresh(nb); err != nil {
		return s.reject(op, second, fmt.Errorf("patches: %s: %w", op, err))
	}
	na.Links[firstDir] = second
	nb.Links[secondDir] = first
	s.commit(map[int]*PatchAttributes{first: na, second: nb})
	logging.WithOperation(s.log, op).Debug("patches merged", "first", first, "second", second)
	return nil
}

// UpdatePosition moves control point (row, col) of patch p to coord,
// regenerates its image and drops its isoline caches. Neighbours are not
// touched; see Repropagate.
func (s *PatchSet) UpdatePosition(p, row, col int, coord v3.Vec) error {
	const op = "update"
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	if err := checkCell(row, col); err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	next := rec.clone()
	next.Patch.Data[row][col] = coord
	next.Patch.UKnots, next.Patch.VKnots = nil, nil
	if err := s.refresh(next); err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	s.commit(map[int]*PatchAttributes{p: next})
	logging.WithOperation(s.log, op).Debug("control point moved", "index", p, "row", row, "col", col)
	return nil
}

// ControlPoint returns control point (row, col) of patch p.
func (s *PatchSet) ControlPoint(p, row, col int) (v3.Vec, error) {
	rec, err := s.patches.Get(p)
	if err != nil {
		return v3.Vec{}, err
	}
	if err := checkCell(row, col); err != nil {
		return v3.Vec{}, err
	}
	return rec.Patch.Data[row][col], nil
}

func checkCell(row, col int) error {
	if row < 0 || row > 3 || col < 0 || col > 3 {
		return fmt.Errorf("control point (%d,%d) not in [0,4)x[0,4): %w", row, col, graph.ErrInvalidIndex)
	}
	return nil
}

// Interpolate refits patch p through grid at the given knots.
func (s *PatchSet) Interpolate(p int, uKnots, vKnots []float64, grid [][]v3.Vec) error {
	const op = "interpolate"
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	next := rec.clone()
	if err := next.Patch.UpdateDataForInterpolation(uKnots, vKnots, grid); err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	if err := s.refresh(next); err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	s.commit(map[int]*PatchAttributes{p: next})
	logging.WithOperation(s.log, op).Debug("patch interpolated", "index", p)
	return nil
}

// Repropagate restores continuity between patch p and each neighbour on a
// cardinal side by rewriting the neighbour's shared border and the layer
// next to it; p itself is unchanged. Borders are matched entry by entry in
// index order. Neighbours whose links do not point back are skipped. A
// neighbour whose along alpha differs from p's on the shared border fails
// the whole operation and nothing is changed.
func (s *PatchSet) Repropagate(p int) error {
	const op = "repropagate"
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	edited := map[int]*PatchAttributes{}
	for _, dir := range []graph.PatchDirection{graph.N, graph.E, graph.S, graph.W} {
		n := rec.Links[dir]
		if n == graph.NoNeighbor || n == p {
			continue
		}
		nb, ok := edited[n]
		if !ok {
			cur, err := s.patches.Get(n)
			if err != nil {
				return s.reject(op, p, fmt.Errorf("patches: %s: neighbour: %w", op, err))
			}
			nb = cur.clone()
		}
		l0, l1 := layer(rec.Patch, dir, 0), layer(rec.Patch, dir, 1)
		back, ok := backSide(nb, p, l0)
		if !ok {
			s.log.Debug("one-way link skipped", "index", p, "neighbour", n)
			continue
		}
		if err := matchAlong(rec.Patch, dir, nb.Patch, back); err != nil {
			return s.reject(op, p, fmt.Errorf("patches: %s: neighbour %d: %w", op, n, err))
		}
		var n1 [4]v3.Vec
		for m := range l0 {
			n1[m] = junctionInner(l0[m], l1[m], acrossAlpha(rec.Patch, dir), acrossAlpha(nb.Patch, back))
		}
		setLayer(nb.Patch, back, 0, l0)
		setLayer(nb.Patch, back, 1, n1)
		nb.Patch.UKnots, nb.Patch.VKnots = nil, nil
		edited[n] = nb
	}
	for n, nb := range edited {
		if err := s.refresh(nb); err != nil {
			return s.reject(op, n, fmt.Errorf("patches: %s: %w", op, err))
		}
	}
	s.commit(edited)
	logging.WithOperation(s.log, op).Debug("neighbours updated", "index", p, "count", len(edited))
	return nil
}

// SetULines caches count constant-u isolines of patch p.
func (s *PatchSet) SetULines(p, count int) error {
	return s.setLines("ulines", p, count, tessellate.UIsolines, func(r *PatchAttributes, l []*kernel.Polyline) { r.ULines = l })
}

// SetVLines caches count constant-v isolines of patch p.
func (s *PatchSet) SetVLines(p, count int) error {
	return s.setLines("vlines", p, count, tessellate.VIsolines, func(r *PatchAttributes, l []*kernel.Polyline) { r.VLines = l })
}

type isolineFunc func(*hyperbolic.Patch, int, int, int, float64) ([]*kernel.Polyline, error)

func (s *PatchSet) setLines(op string, p, count int, gen isolineFunc, store func(*PatchAttributes, []*kernel.Polyline)) error {
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	lines, err := gen(rec.Patch, count, rec.MaxOrder, s.isolineSamples, s.isolineScale)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	store(rec, lines)
	logging.WithOperation(s.log, op).Debug("isolines cached", "index", p, "count", count)
	return nil
}

// ClearULines drops the constant-u isoline cache of patch p.
func (s *PatchSet) ClearULines(p int) error {
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject("clear-ulines", p, fmt.Errorf("patches: clear-ulines: %w", err))
	}
	rec.ULines = nil
	return nil
}

// ClearVLines drops the constant-v isoline cache of patch p.
func (s *PatchSet) ClearVLines(p int) error {
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject("clear-vlines", p, fmt.Errorf("patches: clear-vlines: %w", err))
	}
	rec.VLines = nil
	return nil
}

// UpdateSelectionCurve replaces the selection with the boundary curve of
// side dir of patch p. Only cardinal sides name a boundary.
func (s *PatchSet) UpdateSelectionCurve(p int, dir graph.PatchDirection) error {
	const op = "select"
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	img, err := tessellate.Border(rec.Patch, dir, rec.MaxOrder, s.selectionSamples, s.isolineScale)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	s.selection = &Selection{Index: p, Side: dir, Image: img}
	logging.WithOperation(s.log, op).Debug("selection updated", "index", p, "side", dir)
	return nil
}

// ClearSelection drops the selection curve.
func (s *PatchSet) ClearSelection() {
	s.selection = nil
}

// ApplyTexture decodes path and binds it to patch p, enabling texturing.
// On failure the previous texture stays bound.
func (s *PatchSet) ApplyTexture(p int, path string) error {
	const op = "texture"
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject(op, p, fmt.Errorf("patches: %s: %w", op, err))
	}
	raster, err := s.decoder.Decode(path)
	if err != nil {
		if errors.Is(err, texture.ErrOpen) {
			err = fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
		return s.reject(op, p, fmt.Errorf("patches: %s %s: %w", op, path, err))
	}
	rec.Texture = raster
	rec.TexturePath = path
	rec.RenderTexture = true
	logging.WithOperation(s.log, op).Debug("texture applied", "index", p, "path", path)
	return nil
}

// DisableTexture stops texturing patch p; the decoded content is kept.
func (s *PatchSet) DisableTexture(p int) error {
	rec, err := s.patches.Get(p)
	if err != nil {
		return s.reject("untexture", p, fmt.Errorf("patches: untexture: %w", err))
	}
	rec.RenderTexture = false
	return nil
}

// RenderAll draws every fresh patch image in index order with its material
// and, when enabled, its texture, followed by its isolines; the selection
// curve comes last. Curves are skipped when cr is nil.
func (s *PatchSet) RenderAll(mr kernel.MeshRenderer, cr kernel.CurveRenderer) error {
	for i, rec := range s.patches.Items() {
		if rec.Stale() {
			continue
		}
		style := kernel.MeshStyle{Material: rec.Material.Name}
		if rec.RenderTexture && rec.Texture != nil {
			style.Texture = rec.Texture
		}
		if err := mr.RenderMesh(rec.Image, style); err != nil {
			return fmt.Errorf("patches: render patch %d: %w", i, err)
		}
		if cr == nil {
			continue
		}
		for _, lines := range [][]*kernel.Polyline{rec.ULines, rec.VLines} {
			for _, l := range lines {
				if err := renderPolyline(cr, l); err != nil {
					return fmt.Errorf("patches: render isoline of patch %d: %w", i, err)
				}
			}
		}
	}
	if cr != nil && s.selection != nil {
		if err := cr.RenderDerivatives(s.selection.Image, 0, kernel.PrimitiveLineStrip); err != nil {
			return fmt.Errorf("patches: render selection: %w", err)
		}
	}
	return nil
}

func renderPolyline(cr kernel.CurveRenderer, img *kernel.Polyline) error {
	for order := 0; order <= img.MaxOrder(); order++ {
		kind := kernel.PrimitiveLines
		if order == 0 {
			kind = kernel.PrimitiveLineStrip
		}
		if err := cr.RenderDerivatives(img, order, kind); err != nil {
			return err
		}
	}
	return nil
}

// Write serialises the control grids and links of every patch.
func (s *PatchSet) Write(w io.Writer) error {
	items := s.patches.Items()
	points := make([][]v3.Vec, len(items))
	links := make([][]int, len(items))
	for i, rec := range items {
		pts := make([]v3.Vec, 0, 16)
		for _, row := range rec.Patch.Data {
			pts = append(pts, row[:]...)
		}
		points[i] = pts
		links[i] = rec.Links[:]
	}
	return writeLayout(w, points, links)
}

// SaveToFile writes the set to path.
func (s *PatchSet) SaveToFile(path string) error {
	if err := createFile(path, s.Write); err != nil {
		return s.reject("save", -1, fmt.Errorf("patches: save %s: %w", path, err))
	}
	s.log.Debug("saved", "path", path, "count", s.Count())
	return nil
}

// Read replaces the set with the patches in r, each with the configured load
// alpha in both directions, load order and the default material. The
// selection is dropped. On any error the set is unchanged.
func (s *PatchSet) Read(r io.Reader) error {
	l, err := readLayout(r, 16, graph.PatchDirectionCount, s.patches.Cap())
	if err != nil {
		return err
	}
	tables := make([]graph.LinkTable, len(l.points))
	next := graph.New[*PatchAttributes](s.patches.Cap())
	for i, pts := range l.points {
		var data [4][4]v3.Vec
		for k, pt := range pts {
			data[k/4][k%4] = pt
		}
		p, err := hyperbolic.NewPatch(s.loadAlpha, s.loadAlpha, data)
		if err != nil {
			return fmt.Errorf("%w: patch %d: %w", ErrIOFailure, i, err)
		}
		rec, err := s.build(p, s.loadOrder, graph.DefaultMaterial)
		if err != nil {
			return fmt.Errorf("%w: patch %d: %w", ErrIOFailure, i, err)
		}
		copy(rec.Links[:], l.links[i])
		tables[i] = rec.Links
		if _, err := next.Add(rec); err != nil {
			return fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
	}
	if err := validateTables(tables); err != nil {
		return err
	}
	s.patches = next
	s.selection = nil
	return nil
}

// ReadFromFile replaces the set with the contents of path.
func (s *PatchSet) ReadFromFile(path string) error {
	if err := openFile(path, s.Read); err != nil {
		return s.reject("read", -1, fmt.Errorf("patches: read %s: %w", path, err))
	}
	s.log.Debug("read", "path", path, "count", s.Count())
	return nil
}

// openSide returns patch id if it is live, dir is cardinal and the dir slot
// is free.
func (s *PatchSet) openSide(op string, id int, dir graph.PatchDirection) (*PatchAttributes, error) {
	if err := graph.RequireCardinal(dir); err != nil {
		return nil, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	rec, err := s.patches.Get(id)
	if err != nil {
		return nil, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	if rec.Links[dir] != graph.NoNeighbor {
		return nil, s.reject(op, id, fmt.Errorf("patches: %s: patch %d already linked %v to %d: %w", op, id, dir, rec.Links[dir], graph.ErrInvalidDirection))
	}
	return rec, nil
}

// mergeSide is openSide that also accepts a slot already holding other.
func (s *PatchSet) mergeSide(op string, id int, dir graph.PatchDirection, other int) (*PatchAttributes, error) {
	if err := graph.RequireCardinal(dir); err != nil {
		return nil, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	rec, err := s.patches.Get(id)
	if err != nil {
		return nil, s.reject(op, id, fmt.Errorf("patches: %s: %w", op, err))
	}
	if l := rec.Links[dir]; l != graph.NoNeighbor && l != other {
		return nil, s.reject(op, id, fmt.Errorf("patches: %s: patch %d already linked %v to %d: %w", op, id, dir, l, graph.ErrInvalidDirection))
	}
	return rec, nil
}

// backSide finds the cardinal side of nb that links to p. When several do,
// the side whose border lies nearest to border wins.
func backSide(nb *PatchAttributes, p int, border [4]v3.Vec) (graph.PatchDirection, bool) {
	best, found := graph.N, false
	bestDist := 0.0
	for _, d := range []graph.PatchDirection{graph.N, graph.E, graph.S, graph.W} {
		if nb.Links[d] != p {
			continue
		}
		l0 := layer(nb.Patch, d, 0)
		dist := 0.0
		for m := range l0 {
			dist += l0[m].Sub(border[m]).Length()
		}
		if !found || dist < bestDist {
			best, bestDist, found = d, dist, true
		}
	}
	return best, found
}

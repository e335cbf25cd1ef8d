// Package composite maintains networks of hyperbolic arcs and patches joined
// by directional links, and keeps them first-derivative continuous across
// the operations that build the network: insert, continue, join and merge.
//
// Elements live in a bounded graph.Graph arena and are addressed by index.
// Every mutating operation either succeeds completely or leaves the set
// unchanged.
package composite

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/chazu/hyperweave/pkg/config"
	"github.com/chazu/hyperweave/pkg/graph"
	"github.com/chazu/hyperweave/pkg/kernel"
	"github.com/chazu/hyperweave/pkg/kernel/hyperbolic"
	"github.com/chazu/hyperweave/pkg/logging"
	"github.com/chazu/hyperweave/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ArcAttributes is one element of a CurveSet.
type ArcAttributes struct {
	Arc      *hyperbolic.Arc
	Image    *kernel.Polyline // nil while stale
	Color    graph.Color4
	MaxOrder int
	Scale    float64
	Links    graph.CurveLinks
}

// Stale reports whether the image must be regenerated before rendering.
func (a *ArcAttributes) Stale() bool { return a.Image == nil }

// clone copies the record and its geometry. The image is shared; images are
// replaced, never mutated.
func (a *ArcAttributes) clone() *ArcAttributes {
	c := *a
	c.Arc = a.Arc.Clone()
	return &c
}

// CurveSet is a composite curve: a bounded network of arcs.
type CurveSet struct {
	arcs      *graph.Graph[*ArcAttributes]
	samples   int
	loadAlpha float64
	loadOrder int
	loadScale float64
	log       *slog.Logger
}

// NewCurveSet creates an empty set sized by cfg.
func NewCurveSet(cfg config.CurveConfig) *CurveSet {
	return &CurveSet{
		arcs:      graph.New[*ArcAttributes](cfg.Capacity),
		samples:   cfg.Samples,
		loadAlpha: cfg.LoadAlpha,
		loadOrder: cfg.MaxOrder,
		loadScale: cfg.DerivativeScale,
		log:       logging.WithComponent("curves"),
	}
}

// Count returns the number of live arcs.
func (s *CurveSet) Count() int { return s.arcs.Len() }

// Capacity returns the maximum number of arcs.
func (s *CurveSet) Capacity() int { return s.arcs.Cap() }

// Arc returns the record at index. Callers must treat it as read-only.
func (s *CurveSet) Arc(index int) (*ArcAttributes, error) {
	return s.arcs.Get(index)
}

// Arcs returns all records in index order.
func (s *CurveSet) Arcs() []*ArcAttributes { return s.arcs.Items() }

// Clear drops every arc.
func (s *CurveSet) Clear() {
	s.arcs.Reset()
	s.log.Debug("cleared")
}

func (s *CurveSet) reject(op string, index int, err error) error {
	logging.WithOperation(s.log, op).Warn("rejected", "index", index, "err", err)
	return err
}

// build creates a record with a fresh image.
func (s *CurveSet) build(arc *hyperbolic.Arc, maxOrder int, scale float64, color graph.Color4) (*ArcAttributes, error) {
	rec := &ArcAttributes{Arc: arc, Color: color, MaxOrder: maxOrder, Scale: scale, Links: graph.NewCurveLinks()}
	if err := s.refresh(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *CurveSet) refresh(rec *ArcAttributes) error {
	img, err := tessellate.Curve(rec.Arc, rec.MaxOrder, s.samples, rec.Scale)
	if err != nil {
		return err
	}
	rec.Image = img
	return nil
}

// Insert adds a free arc and returns its index.
func (s *CurveSet) Insert(alpha float64, maxOrder int, points [4]v3.Vec, scale float64, color graph.Color4) (int, error) {
	const op = "insert"
	if s.arcs.Full() {
		return -1, s.reject(op, -1, fmt.Errorf("curves: %s: %d arcs: %w", op, s.arcs.Len(), graph.ErrCapacityExceeded))
	}
	arc, err := hyperbolic.NewArc(alpha, points)
	if err != nil {
		return -1, s.reject(op, -1, fmt.Errorf("curves: %s: %w", op, err))
	}
	rec, err := s.build(arc, maxOrder, scale, color)
	if err != nil {
		return -1, s.reject(op, -1, fmt.Errorf("curves: %s: %w", op, err))
	}
	idx, err := s.arcs.Add(rec)
	if err != nil {
		return -1, s.reject(op, -1, err)
	}
	logging.WithOperation(s.log, op).Debug("arc inserted", "index", idx, "alpha", alpha)
	return idx, nil
}

// ContinueExisting appends a new arc at the dir end of arc id. The new arc
// starts where the anchor ends, with the same first derivative there; the
// remaining control points mirror the anchor's through the shared end.
func (s *CurveSet) ContinueExisting(id int, dir graph.CurveDirection, alpha float64, maxOrder int, scale float64) (int, error) {
	const op = "continue"
	anchor, err := s.openEnd(op, id, dir)
	if err != nil {
		return -1, err
	}
	if s.arcs.Full() {
		return -1, s.reject(op, id, fmt.Errorf("curves: %s: %w", op, graph.ErrCapacityExceeded))
	}
	end := curveEnd(dir)
	if _, err := anchor.Arc.Outward(end); err != nil {
		return -1, s.reject(op, id, fmt.Errorf("curves: %s from arc %d: %w", op, id, err))
	}

	p := anchor.Arc.Points
	var q [4]v3.Vec
	if dir == graph.Right {
		q[0] = p[3]
		q[1] = junctionInner(p[3], p[2], anchor.Arc.Alpha, alpha)
		q[2] = mirror(p[3], p[1])
		q[3] = mirror(p[3], p[0])
	} else {
		q[3] = p[0]
		q[2] = junctionInner(p[0], p[1], anchor.Arc.Alpha, alpha)
		q[1] = mirror(p[0], p[2])
		q[0] = mirror(p[0], p[3])
	}
	arc, err := hyperbolic.NewArc(alpha, q)
	if err != nil {
		return -1, s.reject(op, id, fmt.Errorf("curves: %s: %w", op, err))
	}
	rec, err := s.build(arc, maxOrder, scale, anchor.Color)
	if err != nil {
		return -1, s.reject(op, id, fmt.Errorf("curves: %s: %w", op, err))
	}
	idx, err := s.arcs.Add(rec)
	if err != nil {
		return -1, s.reject(op, id, err)
	}
	anchor.Links[dir] = idx
	rec.Links[dir.Opposite()] = id
	logging.WithOperation(s.log, op).Debug("arc continued", "anchor", id, "dir", dir, "index", idx)
	return idx, nil
}

// Join connects the firstDir end of first with the secondDir end of second.
// When the two ends already coincide the arcs are linked directly and second
// is returned; otherwise a bridging arc with the first arc's alpha is added
// and its index returned. The bridge runs from first to second and matches
// the first derivative of both at its ends.
func (s *CurveSet) Join(first, second int, firstDir, secondDir graph.CurveDirection, scale float64) (int, error) {
	const op = "join"
	a, err := s.openEnd(op, first, firstDir)
	if err != nil {
		return -1, err
	}
	b, err := s.openEnd(op, second, secondDir)
	if err != nil {
		return -1, err
	}
	if first == second && firstDir == secondDir {
		return -1, s.reject(op, first, fmt.Errorf("curves: %s: arc %d to itself at the same end: %w", op, first, graph.ErrInvalidDirection))
	}

	ea, eb := curveEnd(firstDir), curveEnd(secondDir)
	pa, pb := a.Arc.EndPoint(ea), b.Arc.EndPoint(eb)
	if coincident(pa, pb) {
		a.Links[firstDir] = second
		b.Links[secondDir] = first
		logging.WithOperation(s.log, op).Debug("arcs linked", "first", first, "second", second)
		return second, nil
	}

	if _, err := a.Arc.Outward(ea); err != nil {
		return -1, s.reject(op, first, fmt.Errorf("curves: %s: arc %d: %w", op, first, err))
	}
	if _, err := b.Arc.Outward(eb); err != nil {
		return -1, s.reject(op, second, fmt.Errorf("curves: %s: arc %d: %w", op, second, err))
	}
	if s.arcs.Full() {
		return -1, s.reject(op, first, fmt.Errorf("curves: %s: %w", op, graph.ErrCapacityExceeded))
	}

	alpha := a.Arc.Alpha
	bridge := [4]v3.Vec{
		pa,
		junctionInner(pa, a.Arc.InnerPoint(ea), a.Arc.Alpha, alpha),
		junctionInner(pb, b.Arc.InnerPoint(eb), b.Arc.Alpha, alpha),
		pb,
	}
	arc, err := hyperbolic.NewArc(alpha, bridge)
	if err != nil {
		return -1, s.reject(op, first, fmt.Errorf("curves: %s: %w", op, err))
	}
	rec, err := s.build(arc, a.MaxOrder, scale, a.Color)
	if err != nil {
		return -1, s.reject(op, first, fmt.Errorf("curves: %s: %w", op, err))
	}
	idx, err := s.arcs.Add(rec)
	if err != nil {
		return -1, s.reject(op, first, err)
	}
	a.Links[firstDir] = idx
	b.Links[secondDir] = idx
	rec.Links[graph.Left] = first
	rec.Links[graph.Right] = second
	logging.WithOperation(s.log, op).Debug("arcs bridged", "first", first, "second", second, "index", idx)
	return idx, nil
}

// Merge moves the chosen ends of two distinct arcs onto one point chosen so
// that their first derivatives agree there, and links them. Both slots must
// be free or already hold each other.
func (s *CurveSet) Merge(first, second int, firstDir, secondDir graph.CurveDirection) error {
	const op = "merge"
	if first == second {
		return s.reject(op, first, fmt.Errorf("curves: %s: arc %d with itself: %w", op, first, graph.ErrInvalidIndex))
	}
	a, err := s.mergeEnd(op, first, firstDir, second)
	if err != nil {
		return err
	}
	b, err := s.mergeEnd(op, second, secondDir, first)
	if err != nil {
		return err
	}

	ea, eb := curveEnd(firstDir), curveEnd(secondDir)
	m, err := mergePoint(a.Arc.InnerPoint(ea), b.Arc.InnerPoint(eb), a.Arc.Alpha, b.Arc.Alpha)
	if err != nil {
		return s.reject(op, first, fmt.Errorf("curves: %s %d/%d: %w", op, first, second, err))
	}

	na, nb := a.clone(), b.clone()
	na.Arc.Points[endIndex(ea)] = m
	nb.Arc.Points[endIndex(eb)] = m
	na.Arc.Knots, nb.Arc.Knots = nil, nil
	if err := s.refresh(na); err != nil {
		return s.reject(op, first, fmt.Errorf("curves: %s: %w", op, err))
	}
	if err := s.refresh(nb); err != nil {
		return s.reject(op, second, fmt.Errorf("curves: %s: %w", op, err))
	}
	na.Links[firstDir] = second
	nb.Links[secondDir] = first
	_ = s.arcs.Set(first, na)
	_ = s.arcs.Set(second, nb)
	logging.WithOperation(s.log, op).Debug("arcs merged", "first", first, "second", second)
	return nil
}

// UpdatePosition moves control point point of arc to coord and regenerates
// its image. Neighbours are not touched; see Repropagate.
func (s *CurveSet) UpdatePosition(arc, point int, coord v3.Vec) error {
	const op = "update"
	rec, err := s.arcs.Get(arc)
	if err != nil {
		return s.reject(op, arc, fmt.Errorf("curves: %s: %w", op, err))
	}
	if point < 0 || point >= len(rec.Arc.Points) {
		return s.reject(op, arc, fmt.Errorf("curves: %s: point %d not in [0, %d): %w", op, point, len(rec.Arc.Points), graph.ErrInvalidIndex))
	}
	next := rec.clone()
	next.Arc.Points[point] = coord
	next.Arc.Knots = nil
	if err := s.refresh(next); err != nil {
		return s.reject(op, arc, fmt.Errorf("curves: %s: %w", op, err))
	}
	_ = s.arcs.Set(arc, next)
	logging.WithOperation(s.log, op).Debug("control point moved", "index", arc, "point", point)
	return nil
}

// ControlPoint returns control point point of arc.
func (s *CurveSet) ControlPoint(arc, point int) (v3.Vec, error) {
	rec, err := s.arcs.Get(arc)
	if err != nil {
		return v3.Vec{}, err
	}
	if point < 0 || point >= len(rec.Arc.Points) {
		return v3.Vec{}, fmt.Errorf("point %d not in [0, %d): %w", point, len(rec.Arc.Points), graph.ErrInvalidIndex)
	}
	return rec.Arc.Points[point], nil
}

// Interpolate refits arc through points at knots.
func (s *CurveSet) Interpolate(arc int, knots []float64, points []v3.Vec) error {
	const op = "interpolate"
	rec, err := s.arcs.Get(arc)
	if err != nil {
		return s.reject(op, arc, fmt.Errorf("curves: %s: %w", op, err))
	}
	next := rec.clone()
	if err := next.Arc.UpdateDataForInterpolation(knots, points); err != nil {
		return s.reject(op, arc, fmt.Errorf("curves: %s: %w", op, err))
	}
	if err := s.refresh(next); err != nil {
		return s.reject(op, arc, fmt.Errorf("curves: %s: %w", op, err))
	}
	_ = s.arcs.Set(arc, next)
	logging.WithOperation(s.log, op).Debug("arc interpolated", "index", arc)
	return nil
}

// Repropagate restores continuity between arc and each linked neighbour by
// moving the neighbour's shared end and adjacent control point; arc itself
// is unchanged. Neighbours whose links do not point back are skipped.
func (s *CurveSet) Repropagate(arc int) error {
	const op = "repropagate"
	rec, err := s.arcs.Get(arc)
	if err != nil {
		return s.reject(op, arc, fmt.Errorf("curves: %s: %w", op, err))
	}
	edited := map[int]*ArcAttributes{}
	for _, dir := range []graph.CurveDirection{graph.Left, graph.Right} {
		n := rec.Links[dir]
		if n == graph.NoNeighbor || n == arc {
			continue
		}
		nb, ok := edited[n]
		if !ok {
			cur, err := s.arcs.Get(n)
			if err != nil {
				return s.reject(op, arc, fmt.Errorf("curves: %s: neighbour: %w", op, err))
			}
			nb = cur.clone()
		}
		end := curveEnd(dir)
		e := rec.Arc.EndPoint(end)
		back, ok := backSlot(nb, arc, e)
		if !ok {
			s.log.Debug("one-way link skipped", "index", arc, "neighbour", n)
			continue
		}
		nbEnd := curveEnd(back)
		nb.Arc.Points[endIndex(nbEnd)] = e
		nb.Arc.Points[innerIndex(nbEnd)] = junctionInner(e, rec.Arc.InnerPoint(end), rec.Arc.Alpha, nb.Arc.Alpha)
		nb.Arc.Knots = nil
		edited[n] = nb
	}
	for n, nb := range edited {
		if err := s.refresh(nb); err != nil {
			return s.reject(op, n, fmt.Errorf("curves: %s: %w", op, err))
		}
	}
	for n, nb := range edited {
		_ = s.arcs.Set(n, nb)
	}
	logging.WithOperation(s.log, op).Debug("neighbours updated", "index", arc, "count", len(edited))
	return nil
}

// RenderAll hands every fresh image to r in index order: the curve as a
// line strip, then each derivative order as line segments.
func (s *CurveSet) RenderAll(r kernel.CurveRenderer) error {
	for i, rec := range s.arcs.Items() {
		if rec.Stale() {
			continue
		}
		for order := 0; order <= rec.Image.MaxOrder(); order++ {
			kind := kernel.PrimitiveLines
			if order == 0 {
				kind = kernel.PrimitiveLineStrip
			}
			if err := r.RenderDerivatives(rec.Image, order, kind); err != nil {
				return fmt.Errorf("curves: render arc %d order %d: %w", i, order, err)
			}
		}
	}
	return nil
}

// openEnd returns arc id if it is live and its dir slot is free.
func (s *CurveSet) openEnd(op string, id int, dir graph.CurveDirection) (*ArcAttributes, error) {
	if !dir.Valid() {
		return nil, s.reject(op, id, fmt.Errorf("curves: %s: %v: %w", op, dir, graph.ErrInvalidDirection))
	}
	rec, err := s.arcs.Get(id)
	if err != nil {
		return nil, s.reject(op, id, fmt.Errorf("curves: %s: %w", op, err))
	}
	if rec.Links[dir] != graph.NoNeighbor {
		return nil, s.reject(op, id, fmt.Errorf("curves: %s: arc %d already linked %v to %d: %w", op, id, dir, rec.Links[dir], graph.ErrInvalidDirection))
	}
	return rec, nil
}

// mergeEnd is openEnd that also accepts a slot already holding other.
func (s *CurveSet) mergeEnd(op string, id int, dir graph.CurveDirection, other int) (*ArcAttributes, error) {
	if !dir.Valid() {
		return nil, s.reject(op, id, fmt.Errorf("curves: %s: %v: %w", op, dir, graph.ErrInvalidDirection))
	}
	rec, err := s.arcs.Get(id)
	if err != nil {
		return nil, s.reject(op, id, fmt.Errorf("curves: %s: %w", op, err))
	}
	if l := rec.Links[dir]; l != graph.NoNeighbor && l != other {
		return nil, s.reject(op, id, fmt.Errorf("curves: %s: arc %d already linked %v to %d: %w", op, id, dir, l, graph.ErrInvalidDirection))
	}
	return rec, nil
}

// backSlot finds the slot of nb that links to arc. When both do, the end
// nearest to e wins.
func backSlot(nb *ArcAttributes, arc int, e v3.Vec) (graph.CurveDirection, bool) {
	best, found := graph.Left, false
	bestDist := 0.0
	for _, d := range []graph.CurveDirection{graph.Left, graph.Right} {
		if nb.Links[d] != arc {
			continue
		}
		dist := nb.Arc.EndPoint(curveEnd(d)).Sub(e).Length()
		if !found || dist < bestDist {
			best, bestDist, found = d, dist, true
		}
	}
	return best, found
}

func curveEnd(d graph.CurveDirection) hyperbolic.End {
	if d == graph.Left {
		return hyperbolic.Start
	}
	return hyperbolic.Finish
}

func endIndex(e hyperbolic.End) int {
	if e == hyperbolic.Start {
		return 0
	}
	return 3
}

func innerIndex(e hyperbolic.End) int {
	if e == hyperbolic.Start {
		return 1
	}
	return 2
}

// Write serialises the control points and links of every arc.
func (s *CurveSet) Write(w io.Writer) error {
	items := s.arcs.Items()
	points := make([][]v3.Vec, len(items))
	links := make([][]int, len(items))
	for i, rec := range items {
		points[i] = rec.Arc.Points[:]
		links[i] = rec.Links[:]
	}
	return writeLayout(w, points, links)
}

// SaveToFile writes the set to path.
func (s *CurveSet) SaveToFile(path string) error {
	if err := createFile(path, s.Write); err != nil {
		return s.reject("save", -1, fmt.Errorf("curves: save %s: %w", path, err))
	}
	s.log.Debug("saved", "path", path, "count", s.Count())
	return nil
}

// Read replaces the set with the arcs in r. Arcs get the configured load
// alpha, derivative order and scale. On any error the set is unchanged.
func (s *CurveSet) Read(r io.Reader) error {
	l, err := readLayout(r, 4, graph.CurveDirectionCount, s.arcs.Cap())
	if err != nil {
		return err
	}
	tables := make([]graph.LinkTable, len(l.points))
	next := graph.New[*ArcAttributes](s.arcs.Cap())
	for i, pts := range l.points {
		arc, err := hyperbolic.NewArc(s.loadAlpha, [4]v3.Vec(pts))
		if err != nil {
			return fmt.Errorf("%w: arc %d: %w", ErrIOFailure, i, err)
		}
		rec, err := s.build(arc, s.loadOrder, s.loadScale, graph.DefaultArcColor)
		if err != nil {
			return fmt.Errorf("%w: arc %d: %w", ErrIOFailure, i, err)
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
	s.arcs = next
	return nil
}

// ReadFromFile replaces the set with the contents of path.
func (s *CurveSet) ReadFromFile(path string) error {
	if err := openFile(path, s.Read); err != nil {
		return s.reject("read", -1, fmt.Errorf("curves: read %s: %w", path, err))
	}
	s.log.Debug("read", "path", path, "count", s.Count())
	return nil
}

package engine

import (
	"fmt"

	"github.com/chazu/hyperweave/pkg/graph"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// curveArgs reads the keywords shared by arc-insert and arc-continue.
type curveArgs struct {
	alpha float64
	order int
	scale float64
}

func readCurveArgs(pa kwArgs, def defaults, alpha float64) (curveArgs, error) {
	var (
		c   curveArgs
		err error
	)
	if c.alpha, err = pa.number("alpha", alpha); err != nil {
		return c, err
	}
	if c.order, err = pa.integer("order", def.curveOrder); err != nil {
		return c, err
	}
	if c.scale, err = pa.number("scale", def.curveScale); err != nil {
		return c, err
	}
	return c, nil
}

func registerCurveBuiltins(env *zygo.Zlisp, ws *Workspace, def defaults) {
	curves := ws.Curves

	// (arc-insert p0 p1 p2 p3 :alpha 1 :order 1 :scale 0.25 :color :green)
	env.AddFunction("arc_insert", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(4); err != nil {
			return nil, err
		}
		var pts [4]v3.Vec
		for i, a := range pa.positional {
			v, err := toVec3(a)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			pts[i] = v
		}
		c, err := readCurveArgs(pa, def, def.curveAlpha)
		if err != nil {
			return nil, err
		}
		color := graph.DefaultArcColor
		if v, ok := pa.kw["color"]; ok {
			if color, err = toColor(v); err != nil {
				return nil, err
			}
		}
		idx, err := curves.Insert(c.alpha, c.order, pts, c.scale, color)
		if err != nil {
			return nil, err
		}
		return sexpIndex(idx), nil
	}))

	// (arc-continue id :dir :right :alpha 2). Alpha defaults to the anchor's.
	env.AddFunction("arc_continue", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(1); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		anchor, err := curves.Arc(id)
		if err != nil {
			return nil, err
		}
		dir, err := pa.curveDir("dir", graph.Right)
		if err != nil {
			return nil, err
		}
		c, err := readCurveArgs(pa, def, anchor.Arc.Alpha)
		if err != nil {
			return nil, err
		}
		idx, err := curves.ContinueExisting(id, dir, c.alpha, c.order, c.scale)
		if err != nil {
			return nil, err
		}
		return sexpIndex(idx), nil
	}))

	// (arc-join a b :first-dir :right :second-dir :left)
	env.AddFunction("arc_join", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		a, b, fd, sd, err := curvePair(pa)
		if err != nil {
			return nil, err
		}
		scale, err := pa.number("scale", def.curveScale)
		if err != nil {
			return nil, err
		}
		idx, err := curves.Join(a, b, fd, sd, scale)
		if err != nil {
			return nil, err
		}
		return sexpIndex(idx), nil
	}))

	// (arc-merge a b :first-dir :right :second-dir :left)
	env.AddFunction("arc_merge", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		a, b, fd, sd, err := curvePair(pa)
		if err != nil {
			return nil, err
		}
		return nil, curves.Merge(a, b, fd, sd)
	}))

	// (arc-move id point (vec3 ...))
	env.AddFunction("arc_move", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(3); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		point, err := toInt(pa.positional[1])
		if err != nil {
			return nil, err
		}
		v, err := toVec3(pa.positional[2])
		if err != nil {
			return nil, err
		}
		return nil, curves.UpdatePosition(id, point, v)
	}))

	// (arc-point id point) returns the control point as a vec3.
	env.AddFunction("arc_point", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(2); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		point, err := toInt(pa.positional[1])
		if err != nil {
			return nil, err
		}
		v, err := curves.ControlPoint(id, point)
		if err != nil {
			return nil, err
		}
		return &sexpVec3{vec: v}, nil
	}))

	// (arc-interpolate id '(0 0.3 0.7 1) (list p0 p1 p2 p3))
	env.AddFunction("arc_interpolate", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(3); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		knots, err := toFloatList(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("knots: %w", err)
		}
		pts, err := toVecList(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		return nil, curves.Interpolate(id, knots, pts)
	}))

	env.AddFunction("arc_repropagate", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(1); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		return nil, curves.Repropagate(id)
	}))

	env.AddFunction("arc_count", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		return sexpIndex(curves.Count()), nil
	}))

	// (arcs-save "path") / (arcs-load "path")
	env.AddFunction("arcs_save", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		path, err := onePath(pa)
		if err != nil {
			return nil, err
		}
		return nil, curves.SaveToFile(path)
	}))
	env.AddFunction("arcs_load", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		path, err := onePath(pa)
		if err != nil {
			return nil, err
		}
		if err := curves.ReadFromFile(path); err != nil {
			return nil, err
		}
		return sexpIndex(curves.Count()), nil
	}))

	env.AddFunction("arcs_clear", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		curves.Clear()
		return nil, nil
	}))
}

// curvePair reads two arc indices and their end keywords. The defaults join
// the right end of the first arc to the left end of the second.
func curvePair(pa kwArgs) (a, b int, fd, sd graph.CurveDirection, err error) {
	if err = pa.expect(2); err != nil {
		return
	}
	if a, err = toInt(pa.positional[0]); err != nil {
		return
	}
	if b, err = toInt(pa.positional[1]); err != nil {
		return
	}
	if fd, err = pa.curveDir("first-dir", graph.Right); err != nil {
		return
	}
	sd, err = pa.curveDir("second-dir", graph.Left)
	return
}

func onePath(pa kwArgs) (string, error) {
	if err := pa.expect(1); err != nil {
		return "", err
	}
	return toString(pa.positional[0])
}

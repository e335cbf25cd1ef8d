package engine

import (
	"fmt"

	"github.com/chazu/hyperweave/pkg/graph"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// toGrid reads a 4x4 control net given either as sixteen points in row
// order or as four lists of four points.
func toGrid(args []zygo.Sexp) ([4][4]v3.Vec, error) {
	var g [4][4]v3.Vec
	switch len(args) {
	case 16:
		for i, a := range args {
			v, err := toVec3(a)
			if err != nil {
				return g, fmt.Errorf("point %d: %w", i, err)
			}
			g[i/4][i%4] = v
		}
	case 4:
		for r, a := range args {
			row, err := toVecList(a)
			if err != nil {
				return g, fmt.Errorf("row %d: %w", r, err)
			}
			if len(row) != 4 {
				return g, fmt.Errorf("row %d: expected 4 points, got %d", r, len(row))
			}
			copy(g[r][:], row)
		}
	default:
		return g, fmt.Errorf("expected 16 points or 4 rows, got %d arguments", len(args))
	}
	return g, nil
}

func (a kwArgs) material(def graph.Material) (graph.Material, error) {
	v, ok := a.kw["material"]
	if !ok {
		return def, nil
	}
	m, err := toMaterial(v)
	if err != nil {
		return graph.Material{}, fmt.Errorf("material: %w", err)
	}
	return m, nil
}

func registerPatchBuiltins(env *zygo.Zlisp, ws *Workspace, def defaults) {
	patches := ws.Patches

	// (patch-insert r0 r1 r2 r3 :alpha 1 :order 1 :material :gold)
	env.AddFunction("patch_insert", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		grid, err := toGrid(pa.positional)
		if err != nil {
			return nil, err
		}
		alpha, err := pa.number("alpha", def.patchAlpha)
		if err != nil {
			return nil, err
		}
		order, err := pa.integer("order", def.patchOrder)
		if err != nil {
			return nil, err
		}
		mat, err := pa.material(graph.DefaultMaterial)
		if err != nil {
			return nil, err
		}
		idx, err := patches.Insert(alpha, order, grid, mat)
		if err != nil {
			return nil, err
		}
		return sexpIndex(idx), nil
	}))

	// (patch-continue id :dir :n :alpha 2). Alpha across the shared border
	// defaults to the anchor's, the material too.
	env.AddFunction("patch_continue", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		id, err := onePatch(pa)
		if err != nil {
			return nil, err
		}
		anchor, err := patches.Patch(id)
		if err != nil {
			return nil, err
		}
		dir, err := pa.patchDir("dir")
		if err != nil {
			return nil, err
		}
		across := anchor.Patch.AlphaV
		if dir == graph.N || dir == graph.S {
			across = anchor.Patch.AlphaU
		}
		alpha, err := pa.number("alpha", across)
		if err != nil {
			return nil, err
		}
		order, err := pa.integer("order", anchor.MaxOrder)
		if err != nil {
			return nil, err
		}
		mat, err := pa.material(anchor.Material)
		if err != nil {
			return nil, err
		}
		idx, err := patches.ContinueExisting(id, dir, alpha, order, mat)
		if err != nil {
			return nil, err
		}
		return sexpIndex(idx), nil
	}))

	// (patch-join a b :first-dir :n :second-dir :s)
	env.AddFunction("patch_join", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		a, b, fd, sd, err := patchPair(pa)
		if err != nil {
			return nil, err
		}
		idx, err := patches.Join(a, b, fd, sd)
		if err != nil {
			return nil, err
		}
		return sexpIndex(idx), nil
	}))

	env.AddFunction("patch_merge", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		a, b, fd, sd, err := patchPair(pa)
		if err != nil {
			return nil, err
		}
		return nil, patches.Merge(a, b, fd, sd)
	}))

	// (patch-move id row col (vec3 ...))
	env.AddFunction("patch_move", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(4); err != nil {
			return nil, err
		}
		var ix [3]int
		for i := range ix {
			n, err := toInt(pa.positional[i])
			if err != nil {
				return nil, err
			}
			ix[i] = n
		}
		v, err := toVec3(pa.positional[3])
		if err != nil {
			return nil, err
		}
		return nil, patches.UpdatePosition(ix[0], ix[1], ix[2], v)
	}))

	// (patch-point id row col)
	env.AddFunction("patch_point", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(3); err != nil {
			return nil, err
		}
		var ix [3]int
		for i := range ix {
			n, err := toInt(pa.positional[i])
			if err != nil {
				return nil, err
			}
			ix[i] = n
		}
		v, err := patches.ControlPoint(ix[0], ix[1], ix[2])
		if err != nil {
			return nil, err
		}
		return &sexpVec3{vec: v}, nil
	}))

	// (patch-interpolate id u-knots v-knots (list row0 row1 ...))
	env.AddFunction("patch_interpolate", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(4); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		uKnots, err := toFloatList(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("u knots: %w", err)
		}
		vKnots, err := toFloatList(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("v knots: %w", err)
		}
		rows, err := sexpListToSlice(pa.positional[3])
		if err != nil {
			return nil, fmt.Errorf("grid: %w", err)
		}
		grid := make([][]v3.Vec, len(rows))
		for r, row := range rows {
			if grid[r], err = toVecList(row); err != nil {
				return nil, fmt.Errorf("grid row %d: %w", r, err)
			}
		}
		return nil, patches.Interpolate(id, uKnots, vKnots, grid)
	}))

	env.AddFunction("patch_repropagate", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		id, err := onePatch(pa)
		if err != nil {
			return nil, err
		}
		return nil, patches.Repropagate(id)
	}))

	// (patch-ulines id count) / (patch-vlines id count)
	lines := map[string]func(p, count int) error{
		"patch_ulines": patches.SetULines,
		"patch_vlines": patches.SetVLines,
	}
	for name, set := range lines {
		env.AddFunction(name, wrap(func(pa kwArgs) (zygo.Sexp, error) {
			if err := pa.expect(2); err != nil {
				return nil, err
			}
			id, err := toInt(pa.positional[0])
			if err != nil {
				return nil, err
			}
			count, err := toInt(pa.positional[1])
			if err != nil {
				return nil, err
			}
			return nil, set(id, count)
		}))
	}

	unary := map[string]func(p int) error{
		"patch_clear_ulines": patches.ClearULines,
		"patch_clear_vlines": patches.ClearVLines,
		"patch_untexture":    patches.DisableTexture,
	}
	for name, fn := range unary {
		env.AddFunction(name, wrap(func(pa kwArgs) (zygo.Sexp, error) {
			id, err := onePatch(pa)
			if err != nil {
				return nil, err
			}
			return nil, fn(id)
		}))
	}

	// (patch-select id :dir :e)
	env.AddFunction("patch_select", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		id, err := onePatch(pa)
		if err != nil {
			return nil, err
		}
		dir, err := pa.patchDir("dir")
		if err != nil {
			return nil, err
		}
		return nil, patches.UpdateSelectionCurve(id, dir)
	}))

	env.AddFunction("patch_clear_selection", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		patches.ClearSelection()
		return nil, nil
	}))

	// (patch-texture id "wood.png")
	env.AddFunction("patch_texture", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect(2); err != nil {
			return nil, err
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return nil, err
		}
		path, err := toString(pa.positional[1])
		if err != nil {
			return nil, err
		}
		return nil, patches.ApplyTexture(id, path)
	}))

	env.AddFunction("patch_count", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		return sexpIndex(patches.Count()), nil
	}))

	env.AddFunction("patches_save", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		path, err := onePath(pa)
		if err != nil {
			return nil, err
		}
		return nil, patches.SaveToFile(path)
	}))
	env.AddFunction("patches_load", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		path, err := onePath(pa)
		if err != nil {
			return nil, err
		}
		if err := patches.ReadFromFile(path); err != nil {
			return nil, err
		}
		return sexpIndex(patches.Count()), nil
	}))

	env.AddFunction("patches_clear", wrap(func(pa kwArgs) (zygo.Sexp, error) {
		patches.Clear()
		return nil, nil
	}))
}

func onePatch(pa kwArgs) (int, error) {
	if err := pa.expect(1); err != nil {
		return 0, err
	}
	return toInt(pa.positional[0])
}

// patchPair reads two patch indices and their required side keywords.
func patchPair(pa kwArgs) (a, b int, fd, sd graph.PatchDirection, err error) {
	if err = pa.expect(2); err != nil {
		return
	}
	if a, err = toInt(pa.positional[0]); err != nil {
		return
	}
	if b, err = toInt(pa.positional[1]); err != nil {
		return
	}
	if fd, err = pa.patchDir("first-dir"); err != nil {
		return
	}
	sd, err = pa.patchDir("second-dir")
	return
}

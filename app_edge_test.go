package main

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
)

const waveArc = `(arc-insert (vec3 0 0 0) (vec3 1 1 0) (vec3 2 1 0) (vec3 3 0 0))`

const sheet = `
(defn row [y] (list (vec3 0 y 0) (vec3 1 y 0.5) (vec3 2 y 0.5) (vec3 3 y 0)))
(patch-insert (row 0) (row 1) (row 2) (row 3))
`

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> no images, no errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	result := NewApp().Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// JSON should serialize as [] not null.
	if result.Curves == nil || result.Meshes == nil {
		t.Error("image slices should be non-nil")
	}
	if result.Errors == nil || result.Warnings == nil {
		t.Error("error slices should be non-nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors carry a message, ideally a line.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	source := "(+ 1 2)\n(arc-insert (vec3 0 0 0)"
	result := NewApp().Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 3. A rejected operation reports an error and keeps earlier work.
// ---------------------------------------------------------------------------

func TestE2ERejectedOperationKeepsWorkspace(t *testing.T) {
	source := waveArc + "\n(arc-merge 0 0)\n"
	result := NewApp().Evaluate(source)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if !strings.Contains(result.Errors[0].Message, "arc-merge") {
		t.Errorf("expected error naming arc-merge, got %q", result.Errors[0].Message)
	}
	if len(result.Curves) != 1 {
		t.Errorf("expected the inserted arc to be rendered, got %d curves", len(result.Curves))
	}
}

func TestE2EInvalidAlpha(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"zero arc alpha", `(arc-insert (vec3 0 0 0) (vec3 1 1 0) (vec3 2 1 0) (vec3 3 0 0) :alpha 0)`},
		{"negative arc alpha", `(arc-insert (vec3 0 0 0) (vec3 1 1 0) (vec3 2 1 0) (vec3 3 0 0) :alpha -1)`},
		{"zero patch alpha", strings.Replace(sheet, "(row 3))", "(row 3) :alpha 0)", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp().Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected an error")
			}
			if len(result.Curves) != 0 || len(result.Meshes) != 0 {
				t.Errorf("expected no images, got %d curves %d meshes", len(result.Curves), len(result.Meshes))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 4. The workspace persists across evaluations.
// ---------------------------------------------------------------------------

func TestE2EWorkspacePersists(t *testing.T) {
	app := NewApp()

	if r := app.Evaluate(waveArc); len(r.Curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(r.Curves))
	}
	r := app.Evaluate(`(arc-continue 0 :dir :right)`)
	if len(r.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Curves) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(r.Curves))
	}
	if r = app.Evaluate(`(arcs-clear)`); len(r.Curves) != 0 {
		t.Errorf("expected cleared workspace, got %d curves", len(r.Curves))
	}
}

// ---------------------------------------------------------------------------
// 5. Rapid sequential evaluation recovers between error and success.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Calls are sequential because zygomys has internal global state that is
	// not safe for concurrent sandbox creation; the engine serialises them
	// in production anyway.
	app := NewApp()

	sources := []string{
		waveArc,
		`(arc-insert`,
		``,
		`(arc-continue 99)`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(arcs-clear)`,
		waveArc,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}
	if r := app.Evaluate(""); len(r.Curves) != 1 {
		t.Errorf("expected 1 curve after the sequence, got %d", len(r.Curves))
	}
}

// ---------------------------------------------------------------------------
// 6. Comments and whitespace.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	source := ";; a comment\n; another\n\n   \n"
	result := NewApp().Evaluate(source)
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors for comments-only source, got %v", result.Errors)
	}
}

func TestE2EArithmeticInArguments(t *testing.T) {
	source := `
(def h (/ 3.0 2))
(def w (* 2 1.5))
(arc-insert (vec3 0 0 0) (vec3 1 h 0) (vec3 2 h 0) (vec3 w 0 0) :alpha (+ 1 0.5))
`
	result := NewApp().Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	pts := result.Curves[0].Points
	last := pts[len(pts)-3:]
	if math.Abs(float64(last[0])-3) > 1e-6 {
		t.Errorf("expected the curve to end at x=3, got %v", last)
	}
}

// ---------------------------------------------------------------------------
// 7. Patch edge cases.
// ---------------------------------------------------------------------------

func TestE2EPatchJoinCoincidentBorders(t *testing.T) {
	// The second sheet starts where the first ends, so join links the two
	// directly instead of adding a bridge.
	source := sheet + `
(patch-insert (row 3) (row 4) (row 5) (row 6))
(patch-join 0 1 :first-dir :s :second-dir :n)
`
	result := NewApp().Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 2 {
		t.Errorf("expected no bridge patch, got %d meshes", len(result.Meshes))
	}
}

func TestE2EPatchJoinOccupiedSide(t *testing.T) {
	source := sheet + `
(patch-continue 0 :dir :s)
(patch-join 0 1 :first-dir :s :second-dir :n)
`
	result := NewApp().Evaluate(source)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "patch-join") {
		t.Fatalf("expected one patch-join error, got %v", result.Errors)
	}
	if len(result.Meshes) != 2 {
		t.Errorf("expected 2 meshes, got %d", len(result.Meshes))
	}
}

func TestE2ETextureMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.png")
	source := sheet + `(patch-texture 0 "` + filepath.ToSlash(missing) + `")`
	result := NewApp().Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected a texture error")
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Texture != "" {
		t.Errorf("expected one untextured mesh, got %+v", result.Meshes)
	}
}

func TestE2ESaveLoadAcrossApps(t *testing.T) {
	path := filepath.ToSlash(filepath.Join(t.TempDir(), "net.txt"))

	first := NewApp().Evaluate(sheet + `(patch-continue 0 :dir :e)
(patches-save "` + path + `")`)
	if len(first.Errors) > 0 {
		t.Fatalf("save errors: %v", first.Errors)
	}

	second := NewApp().Evaluate(`(patches-load "` + path + `")`)
	if len(second.Errors) > 0 {
		t.Fatalf("load errors: %v", second.Errors)
	}
	if len(second.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(second.Meshes))
	}
	for _, m := range second.Meshes {
		if m.Material != "emerald" {
			t.Errorf("expected loaded patches to use the default material, got %s", m.Material)
		}
	}
}

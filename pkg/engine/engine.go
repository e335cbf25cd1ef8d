// Package engine provides the script console for hyperweave. It wraps
// zygomys in a sandboxed environment whose builtins drive a Workspace of
// composite curves and patches.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/hyperweave/pkg/composite"
	"github.com/chazu/hyperweave/pkg/config"
	"github.com/chazu/hyperweave/pkg/logging"
	"github.com/chazu/hyperweave/pkg/texture"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a rejected geometry operation.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Workspace is the state scripts operate on. It persists across
// evaluations until cleared by a script.
type Workspace struct {
	Curves  *composite.CurveSet
	Patches *composite.PatchSet
}

// defaults are the parameters builtins use when a keyword is omitted.
type defaults struct {
	curveOrder int
	curveScale float64
	curveAlpha float64
	patchOrder int
	patchAlpha float64
}

// Engine wraps the zygomys interpreter. Each call to Evaluate creates a
// fresh sandbox; the workspace is shared and guarded by one mutex, so
// script runs and image reads are serialised.
type Engine struct {
	mu         sync.Mutex // guards generation
	generation uint64

	wsMu sync.Mutex
	ws   *Workspace

	def     defaults
	timeout time.Duration
	log     *slog.Logger
}

// New creates an engine with an empty workspace sized by cfg. Textures are
// decoded with dec, or texture.FileDecoder when dec is nil.
func New(cfg config.Config, dec texture.Decoder) *Engine {
	return &Engine{
		ws: &Workspace{
			Curves:  composite.NewCurveSet(cfg.Curves),
			Patches: composite.NewPatchSet(cfg.Patches, dec),
		},
		def: defaults{
			curveOrder: cfg.Curves.MaxOrder,
			curveScale: cfg.Curves.DerivativeScale,
			curveAlpha: cfg.Curves.LoadAlpha,
			patchOrder: cfg.Patches.LoadOrder,
			patchAlpha: cfg.Patches.LoadAlpha,
		},
		timeout: cfg.Engine.EvalTimeout(),
		log:     logging.WithComponent("engine"),
	}
}

// NewEngine creates an engine with the default configuration.
func NewEngine() *Engine {
	return New(config.Defaults(), nil)
}

// View runs fn with exclusive access to the workspace. Renderers use it to
// read images between evaluations.
func (e *Engine) View(fn func(*Workspace)) {
	e.wsMu.Lock()
	defer e.wsMu.Unlock()
	fn(e.ws)
}

// Evaluate runs source against the workspace.
//
// Return semantics:
//   - On success: nil eval errors + nil error
//   - On parse/eval failure: eval errors + nil error; operations that ran
//     before the failing form keep their effect
//   - On fatal failure (timeout, panic): nil + error
func (e *Engine) Evaluate(source string) ([]EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		e.wsMu.Lock()
		defer e.wsMu.Unlock()
		evalErrs := e.evaluate(source)
		ch <- evalResult{errors: evalErrs}
	}()

	evalErrs, err := waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
	switch {
	case err != nil:
		e.log.Error("evaluation failed", "gen", gen, "err", err)
	case len(evalErrs) > 0:
		e.log.Warn("evaluation reported errors", "gen", gen, "count", len(evalErrs), "first", evalErrs[0].Error())
	default:
		e.log.Debug("evaluation finished", "gen", gen, "elapsed", time.Since(start))
	}
	return evalErrs, err
}

// evaluate performs the zygomys evaluation in a fresh sandbox. The caller
// holds the workspace lock.
func (e *Engine) evaluate(source string) []EvalError {
	if strings.TrimSpace(source) == "" {
		return nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls;
	// only the registered builtins touch files.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, e.ws, e.def)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return parseZygomysError(err)
	}
	return nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting line information when the message carries it.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}

// Command hyperweave runs geometry scripts against a workspace of
// hyperbolic curves and patches and prints the resulting images as JSON.
//
// Usage:
//
//	hyperweave [-config path] [-full] run <script>
//	hyperweave version
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/hyperweave/pkg/config"
	"github.com/chazu/hyperweave/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// summary is the default run output.
type summary struct {
	Script    string          `json:"script"`
	Curves    int             `json:"curves"`
	Meshes    int             `json:"meshes"`
	Triangles int             `json:"triangles"`
	Selection *SelectionData  `json:"selection,omitempty"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hyperweave", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "path to a YAML configuration file")
	full := fs.Bool("full", false, "print complete images instead of a summary")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, "usage: hyperweave [-config path] [-full] run <script> | version")
		return 2
	}

	switch rest[0] {
	case "version":
		fmt.Fprintln(stdout, "hyperweave", version)
		return 0
	case "run":
		if len(rest) != 2 {
			fmt.Fprintln(stderr, "usage: hyperweave run <script>")
			return 2
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	opts := cfg.Logging.LogOptions()
	opts.Version = version
	opts.Writer = stderr
	logging.Init(opts)

	script := rest[1]
	source, err := os.ReadFile(script)
	if err != nil {
		logging.L().Error("read script", "path", script, "err", err)
		return 1
	}

	result := NewAppWithConfig(cfg).Evaluate(string(source))

	var out any = result
	if !*full {
		s := summary{
			Script:    script,
			Curves:    len(result.Curves),
			Meshes:    len(result.Meshes),
			Selection: result.Selection,
			Errors:    result.Errors,
			Warnings:  result.Warnings,
		}
		for _, m := range result.Meshes {
			s.Triangles += len(m.Indices) / 3
		}
		out = s
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logging.L().Error("write result", "err", err)
		return 1
	}
	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

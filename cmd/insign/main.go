// Command insign is the CLI for the Insign DSL compiler.
// It reads sign/book annotation units as JSON and emits the canonical
// region document, mirroring the teacher's noun-first kong CLI layout.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/unit"
	"github.com/insignlang/insign/internal/obslog"

	insign "github.com/insignlang/insign"
)

const version = "0.1.0"

// CLI defines the command-line interface for insign.
var CLI struct {
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	Compile CompileCmd `cmd:"" default:"1" help:"Compile sign/book annotation units into a region document"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// CompileCmd compiles a JSON envelope (array or JSON-lines) into the
// canonical region document.
type CompileCmd struct {
	Path string `arg:"" optional:"" help:"Input file path (reads stdin if omitted)" type:"existingfile"`

	Pretty               bool `help:"Indent the output JSON without changing key order"`
	BooleanOps           bool `help:"Enable Phase 1 boolean expression operators (-, &, ^)"`
	Debug                bool `help:"Echo resolved capabilities as a $capabilities field"`
	MaxUnits             int  `help:"Reject requests with more than this many units (0 = unbounded)"`
	MaxStatementsPerUnit int  `help:"Reject units with more than this many statements (0 = unbounded)"`
}

func (c *CompileCmd) Run() error {
	ctx := obslog.WithRequestID(context.Background(), uuid.NewString())

	input, err := readInput(c.Path)
	if err != nil {
		return c.fail(1, ierr.NewNoLocation(ierr.InvalidInput, "failed to read input: %s", err.Error()))
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "insign: read %s from %s\n", humanize.Bytes(uint64(len(input))), sourceLabel(c.Path))
	}

	raw, err := decode(input)
	if err != nil {
		return c.fail(1, err)
	}

	start := time.Now()
	out, err := insign.Compile(ctx, raw, insign.Options{
		Pretty:               c.Pretty,
		BooleanOps:           c.BooleanOps,
		Debug:                c.Debug,
		MaxUnits:             c.MaxUnits,
		MaxStatementsPerUnit: c.MaxStatementsPerUnit,
	})
	if err != nil {
		code := 2
		var ce *ierr.CompileError
		if ierr.As(err, &ce) && ce.Kind == ierr.InvalidInput {
			code = 1
		}
		return c.fail(code, err)
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "insign: compiled in %s\n", time.Since(start))
	}

	os.Stdout.Write(out)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// fail writes the spec §6 error-JSON document to stdout — the exit code,
// not which stream carries output, is what distinguishes success from
// failure — and reserves stderr for the human-readable diagnostics the
// terminal-only log lines above already use.
func (c *CompileCmd) fail(code int, err error) error {
	os.Stdout.Write(insign.EncodeError(err))
	fmt.Fprintln(os.Stdout)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "insign: failed (exit %d): %s\n", code, err)
	}
	return exitError{code: code, err: err}
}

func decode(input []byte) ([]unit.RawUnit, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		return insign.DecodeEnvelope(input)
	default:
		return insign.DecodeJSONLines(input)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func sourceLabel(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("insign version %s (abi %d)\n", version, insign.ABIVersion)
	return nil
}

// exitError carries a process exit code alongside the underlying error, so
// main can set os.Exit without every Run() method reaching for os.Exit
// itself (kong's ctx.FatalIfErrorf already prints the error message).
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("insign"),
		kong.Description("Insign — deterministic sign/book annotation compiler"),
		kong.UsageOnError(),
	)

	obslog.Init(parseLogLevel(CLI.LogLevel), parseLogFormat(CLI.LogFormat))

	err := ctx.Run()
	if err == nil {
		return
	}

	var ee exitError
	if errors.As(err, &ee) {
		// Run() already wrote the error-JSON document to stdout via fail();
		// nothing more belongs on stderr here.
		os.Exit(ee.code)
	}
	ctx.FatalIfErrorf(err)
}

func parseLogLevel(s string) obslog.Level {
	switch s {
	case "debug":
		return obslog.LevelDebug
	case "info":
		return obslog.LevelInfo
	case "error":
		return obslog.LevelError
	default:
		return obslog.LevelWarn
	}
}

func parseLogFormat(s string) obslog.Format {
	if s == "json" {
		return obslog.FormatJSON
	}
	return obslog.FormatText
}

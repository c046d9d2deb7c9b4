package insign

import (
	"context"
	"time"

	"github.com/insignlang/insign/core/canon"
	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/region"
	"github.com/insignlang/insign/core/scan"
	"github.com/insignlang/insign/core/unit"
	"github.com/insignlang/insign/internal/obslog"
)

// Options configures one compile call. The zero value is spec-compliant
// Phase 0 behavior: Phase 1 boolean operators disabled, compact output,
// no debug capability echo.
type Options struct {
	// BooleanOps gates the Phase 1 expression operators (-, &, ^), per
	// spec §4.3's "must gate Phase 1 behind a compile-time capability"
	// requirement — implemented as a runtime field rather than a Go
	// build tag so a single compiled binary supports both (see
	// DESIGN.md's Open Question resolution).
	BooleanOps bool

	// Pretty indents the output JSON without changing key order or
	// content (spec §6's CLI --pretty flag plumbed through to the
	// library so non-CLI embedders can use it too).
	Pretty bool

	// Debug, when set, adds a "$capabilities" field to a successful
	// output echoing the Capabilities this call resolved with. Off by
	// default so the default output matches spec §4.5 byte-for-byte
	// with no extra keys.
	Debug bool

	// MaxUnits and MaxStatementsPerUnit are soft caps a caller may set to
	// bound the work one compile call can demand; spec §5 leaves sizing
	// to the caller, so both default to 0, meaning unbounded.
	MaxUnits             int
	MaxStatementsPerUnit int
}

// Capabilities reflects the feature set a particular compile call ran
// with, for the optional debug echo and for a future capability-probe
// surface (spec §6).
type Capabilities struct {
	BooleanOps bool `json:"boolean_ops"`
}

func (o Options) capabilities() Capabilities {
	return Capabilities{BooleanOps: o.BooleanOps}
}

// Compile runs the full pipeline (normalize, split, parse, resolve,
// serialize) over raw, and returns the canonical JSON document, or an
// error satisfying errors.As(err, new(*ierr.CompileError)). It is
// synchronous, allocates no package-level mutable state, and is safe to
// call concurrently from multiple goroutines (spec §5).
func Compile(ctx context.Context, raw []unit.RawUnit, opts Options) ([]byte, error) {
	start := time.Now()
	obslog.CompileRequest(ctx, len(raw), rawByteLen(raw))

	out, err := compile(raw, opts)

	if err != nil {
		var ce *ierr.CompileError
		code := ""
		if ierr.As(err, &ce) {
			code = string(ce.Kind)
		}
		obslog.CompileResult(ctx, false, code, time.Since(start))
		return nil, err
	}
	obslog.CompileResult(ctx, true, "", time.Since(start))
	return out, nil
}

func compile(raw []unit.RawUnit, opts Options) ([]byte, error) {
	if opts.MaxUnits > 0 && len(raw) > opts.MaxUnits {
		return nil, ierr.NewNoLocation(ierr.InvalidInput, "request has %d units, exceeding the configured limit of %d", len(raw), opts.MaxUnits)
	}

	units, err := unit.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if opts.MaxStatementsPerUnit > 0 {
		for _, u := range units {
			stmts, err := scan.Split(int(u.Index), u.Text)
			if err != nil {
				return nil, err
			}
			if len(stmts) > opts.MaxStatementsPerUnit {
				return nil, ierr.New(ierr.InvalidInput, int(u.Index), 0, "unit has %d statements, exceeding the configured limit of %d", len(stmts), opts.MaxStatementsPerUnit)
			}
		}
	}

	doc, err := region.Resolve(units, region.Options{BooleanOps: opts.BooleanOps})
	if err != nil {
		return nil, err
	}

	canonOpts := canon.Options{Pretty: opts.Pretty}
	if opts.Debug {
		canonOpts.Extra = map[string]interface{}{"$capabilities": opts.capabilities()}
	}

	return canon.Marshal(doc, canonOpts)
}

func rawByteLen(raw []unit.RawUnit) int {
	n := 0
	for _, r := range raw {
		n += len(r.Text)
	}
	return n
}

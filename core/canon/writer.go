package canon

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/insignlang/insign/core/ierr"
)

// objectWriter streams a JSON object's `{"k":v,"k2":v2}` shell while the
// caller supplies keys in whatever order it has already decided on.
type objectWriter struct {
	buf *bytes.Buffer
	n   int
}

func newObjectWriter(buf *bytes.Buffer) *objectWriter {
	buf.WriteByte('{')
	return &objectWriter{buf: buf}
}

func (w *objectWriter) comma() {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
}

func (w *objectWriter) writeKey(key string) error {
	w.comma()
	enc, err := encodeValue(key)
	if err != nil {
		return err
	}
	w.buf.Write(enc)
	w.buf.WriteByte(':')
	return nil
}

// field writes "key":<json-encoding of v>, delegating entirely to
// encoding/json — correct here because v is a leaf value, an array, a
// map[string]interface{}, or (for an Options.Extra entry) a plain struct,
// all of which encoding/json renders with RFC 8259 escaping and a fixed
// key order (sorted keys for maps at every nesting depth, declaration
// order for struct fields).
func (w *objectWriter) field(key string, v interface{}) error {
	if err := w.writeKey(key); err != nil {
		return err
	}
	enc, err := encodeValue(v)
	if err != nil {
		return err
	}
	w.buf.Write(enc)
	return nil
}

// fieldFunc writes "key": followed by whatever write appends to the
// buffer, for the hand-assembled per-region object shell.
func (w *objectWriter) fieldFunc(key string, write func(*bytes.Buffer) error) error {
	if err := w.writeKey(key); err != nil {
		return err
	}
	return write(w.buf)
}

func (w *objectWriter) close() {
	w.buf.WriteByte('}')
}

// encodeValue renders v with strict RFC 8259 escaping and HTML escaping
// disabled (there is no HTML context here, and the default escaping of
// '<', '>', '&' would otherwise diverge from a plain reading of RFC 8259
// for no benefit). Every json.Number reachable inside v — at any nesting
// depth — is canonicalized first (spec.md §4: integers without a decimal
// point, non-integer numbers in shortest round-trippable decimal form),
// rather than re-emitted as the author's original literal text.
func encodeValue(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canonicalizeNumbers(v)); err != nil {
		return nil, ierr.NewNoLocation(ierr.SerializationError, "failed to encode value: %s", err.Error())
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// canonicalizeNumbers walks v, replacing every json.Number with its
// canonical rendering. Maps and slices are copied rather than mutated in
// place since the caller-supplied Document/metadata values may be reused
// across multiple Marshal calls (determinism requires every call to see
// the same input).
func canonicalizeNumbers(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		return canonicalizeNumber(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, vv := range val {
			out[k] = canonicalizeNumbers(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, vv := range val {
			out[i] = canonicalizeNumbers(vv)
		}
		return out
	default:
		return v
	}
}

// canonicalizeNumber re-renders n per spec.md's number-formatting rule: a
// value with no fractional part is emitted as a plain integer literal
// regardless of how it was written ("5.0", "5e0", "5" all become "5");
// everything else is emitted via strconv's shortest round-trippable
// decimal form, which — unlike 'g'/'e' — never falls back to exponent
// notation, avoiding any locale- or platform-dependent formatting.
func canonicalizeNumber(n json.Number) json.Number {
	s := string(n)

	if !strings.ContainsAny(s, ".eE") {
		// Already a bare integer literal. Re-parse through Int64 when it
		// fits, to drop any redundant leading zeros a hand-authored value
		// could carry; fall back to the literal untouched for integers
		// wider than int64, which remain syntactically minimal as-is.
		if i, err := n.Int64(); err == nil {
			return json.Number(strconv.FormatInt(i, 10))
		}
		return n
	}

	f, err := n.Float64()
	if err != nil {
		return n
	}
	if f == math.Trunc(f) {
		if i := int64(f); float64(i) == f {
			return json.Number(strconv.FormatInt(i, 10))
		}
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

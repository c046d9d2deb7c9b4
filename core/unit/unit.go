// Package unit implements the input normalizer (spec §4.1): it validates
// the caller's request envelope and assigns each source record its
// zero-based index, the anchor for deterministic anonymous region ids.
//
// Grounded on the teacher's request-validation style in
// core/ir's document loader: reject the whole envelope on the first
// structural problem rather than partially accepting it.
package unit

import (
	"github.com/insignlang/insign/core/ierr"
)

// RawUnit is one caller-supplied `{pos, text}` record, already decoded
// from JSON by the caller (the insign façade) into Go values. Pos is a
// fixed [3]int32, so its arity and range are guaranteed by the type; the
// insign envelope decoders check both with ValidatePos before building a
// RawUnit.
type RawUnit struct {
	Pos  [3]int32
	Text string
}

// SourceUnit is one normalized, immutable input record (spec §3).
type SourceUnit struct {
	Index uint32
	Pos   [3]int32
	Text  string
}

// Normalize indexes an ordered sequence of RawUnit records; it performs no
// further checks, since RawUnit's types already rule out a malformed Pos.
// An empty envelope is valid (yields an empty document).
func Normalize(raw []RawUnit) ([]SourceUnit, error) {
	if raw == nil {
		return nil, nil
	}
	units := make([]SourceUnit, len(raw))
	for i, r := range raw {
		units[i] = SourceUnit{
			Index: uint32(i),
			Pos:   r.Pos,
			Text:  r.Text,
		}
	}
	return units, nil
}

// ValidatePos reports whether pos looks like three finite 32-bit
// coordinates, returning InvalidInput otherwise. The JSON-envelope
// decoders in the insign package call it for every record (wrong arity,
// out-of-range components) after encoding/json has rejected malformed
// arrays and non-integer coordinates; callers who decode the envelope
// field-by-field can use it the same way before constructing a RawUnit.
func ValidatePos(pos []int64) ([3]int32, error) {
	if len(pos) != 3 {
		return [3]int32{}, ierr.NewNoLocation(ierr.InvalidInput, "pos must have exactly 3 components, got %d", len(pos))
	}
	var out [3]int32
	for i, v := range pos {
		if v < int64(minInt32) || v > int64(maxInt32) {
			return [3]int32{}, ierr.NewNoLocation(ierr.InvalidInput, "pos component %d out of int32 range: %d", i, v)
		}
		out[i] = int32(v)
	}
	return out, nil
}

const (
	minInt32 = -2147483648
	maxInt32 = 2147483647
)

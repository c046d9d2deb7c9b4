// Package insign is the compiler's library entry point: it decodes the
// request envelope (spec §6), drives the five pipeline stages, and
// encodes either the canonical success document or a structured error
// response. Everything below this package (core/*) is pure; this is the
// only layer that touches JSON envelopes, options, and logging.
package insign

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/unit"
)

// ABIVersion is the numeric capability probe callers use to detect
// breaking changes in the envelope or output shape (spec §6).
const ABIVersion = 1

// rawRecord mirrors one element of the request array /
// one JSON-lines record: `{"pos":[x,y,z],"text":"..."}`.
type rawRecord struct {
	Pos  []int64 `json:"pos"`
	Text *string `json:"text"`
}

// DecodeEnvelope parses a JSON array request body into the
// []unit.RawUnit the core expects, per spec §6's request shape. Missing
// or mistyped required fields are reported as InvalidInput; unknown
// extra keys on a record are tolerated.
func DecodeEnvelope(data []byte) ([]unit.RawUnit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []rawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, ierr.NewNoLocation(ierr.InvalidInput, "request envelope must be a JSON array of {pos,text} records: %s", err.Error())
	}
	return recordsToUnits(records)
}

// DecodeJSONLines parses newline-delimited `{"pos":...,"text":...}`
// records into the same ordered []unit.RawUnit, an additive input shape
// cmd/insign offers alongside the JSON-array envelope (SPEC_FULL.md §6).
func DecodeJSONLines(data []byte) ([]unit.RawUnit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []rawRecord
	for {
		var rec rawRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, ierr.NewNoLocation(ierr.InvalidInput, "malformed JSON-lines record: %s", err.Error())
		}
		records = append(records, rec)
	}
	return recordsToUnits(records)
}

func recordsToUnits(records []rawRecord) ([]unit.RawUnit, error) {
	units := make([]unit.RawUnit, len(records))
	for i, rec := range records {
		if rec.Text == nil {
			return nil, ierr.NewNoLocation(ierr.InvalidInput, "record %d is missing required field \"text\"", i)
		}
		pos, err := unit.ValidatePos(rec.Pos)
		if err != nil {
			return nil, err
		}
		units[i] = unit.RawUnit{Pos: pos, Text: *rec.Text}
	}
	return units, nil
}

// errorResponse is the JSON shape of a failed compile, per spec §6.
type errorResponse struct {
	Status   string         `json:"status"`
	Code     ierr.ErrorKind `json:"code"`
	Message  string         `json:"message"`
	Location *location      `json:"location,omitempty"`
	Locations []location    `json:"locations,omitempty"`
}

type location struct {
	UnitIndex      uint32 `json:"tuple_index"`
	StatementIndex uint32 `json:"statement_index"`
}

// EncodeError renders err as the spec §6 error-response JSON. Non-
// *ierr.CompileError errors (should not normally reach here) are reported
// as an internal SerializationError so the CLI never panics on an
// unexpected Go error value.
func EncodeError(err error) []byte {
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) {
		ce = ierr.NewNoLocation(ierr.SerializationError, "internal error: %s", err.Error())
	}

	resp := errorResponse{
		Status:  "error",
		Code:    ce.Kind,
		Message: ce.Message,
	}
	if ce.Location != nil {
		resp.Location = &location{UnitIndex: uint32(ce.Location.UnitIndex), StatementIndex: uint32(ce.Location.StatementIndex)}
	}
	for _, l := range ce.Locations {
		resp.Locations = append(resp.Locations, location{UnitIndex: uint32(l.UnitIndex), StatementIndex: uint32(l.StatementIndex)})
	}

	out, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		// Unreachable for a well-formed errorResponse, but fall back to a
		// fixed minimal payload rather than ever returning invalid JSON.
		return []byte(fmt.Sprintf(`{"status":"error","code":"SerializationError","message":%q}`, marshalErr.Error()))
	}
	return out
}

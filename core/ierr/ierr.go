// Package ierr defines insign's error taxonomy: the fixed set of error
// codes a compile request can fail with, and the structured error type
// that carries a statement origin (or several, for conflicts) alongside
// a human-readable message.
//
// Grounded on the teacher's core/errors package: a handful of sentinel
// base errors plus typed structs that implement error and Unwrap, so
// callers can use errors.Is / errors.As the same way.
package ierr

import (
	"errors"
	"fmt"
)

// ErrorKind is one of the fixed §7 error codes.
type ErrorKind string

// The fixed set of error codes a CompileError can carry.
const (
	InvalidInput        ErrorKind = "InvalidInput"
	UnexpectedCharacter  ErrorKind = "UnexpectedCharacter"
	UnterminatedGroup    ErrorKind = "UnterminatedGroup"
	UnterminatedString   ErrorKind = "UnterminatedString"
	ParseErrorKind       ErrorKind = "ParseError"
	UnknownOperator      ErrorKind = "UnknownOperator"
	NoCurrentRegion      ErrorKind = "NoCurrentRegion"
	RegionModeConflict   ErrorKind = "RegionModeConflict"
	UnknownRegion        ErrorKind = "UnknownRegion"
	CyclicDefinition     ErrorKind = "CyclicDefinition"
	MetadataConflict     ErrorKind = "MetadataConflict"
	SerializationError   ErrorKind = "SerializationError"
)

// Sentinel base errors, one per broad failure category, so call sites can
// test "is this an input problem" without matching on every ErrorKind.
var (
	ErrInput    = errors.New("invalid input envelope")
	ErrSyntax   = errors.New("syntax error")
	ErrCompile  = errors.New("compile error")
	ErrInternal = errors.New("internal error")
)

func baseFor(kind ErrorKind) error {
	switch kind {
	case InvalidInput:
		return ErrInput
	case UnexpectedCharacter, UnterminatedGroup, UnterminatedString, ParseErrorKind, UnknownOperator, NoCurrentRegion:
		return ErrSyntax
	case RegionModeConflict, UnknownRegion, CyclicDefinition, MetadataConflict:
		return ErrCompile
	case SerializationError:
		return ErrInternal
	default:
		return ErrInternal
	}
}

// Location identifies the (unit_index, statement_index) a diagnosable
// error was attributed to.
type Location struct {
	UnitIndex      int `json:"tuple_index"`
	StatementIndex int `json:"statement_index"`
}

// CompileError is the structured error every pipeline stage returns on
// failure. Location is nil when no single statement origin applies;
// Locations carries every participating origin for multi-origin errors
// such as MetadataConflict and CyclicDefinition.
type CompileError struct {
	Kind      ErrorKind
	Message   string
	Location  *Location
	Locations []Location
}

func (e *CompileError) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s at unit %d, statement %d: %s", e.Kind, e.Location.UnitIndex, e.Location.StatementIndex, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the broad sentinel category for this error's kind.
func (e *CompileError) Unwrap() error {
	return baseFor(e.Kind)
}

// New builds a CompileError with a single statement origin.
func New(kind ErrorKind, unitIdx, stmtIdx int, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: &Location{UnitIndex: unitIdx, StatementIndex: stmtIdx},
	}
}

// NewNoLocation builds a CompileError with no attributable statement
// origin (e.g. a malformed envelope rejected before any unit exists).
func NewNoLocation(kind ErrorKind, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewMulti builds a CompileError carrying every participating origin,
// for MetadataConflict and CyclicDefinition.
func NewMulti(kind ErrorKind, locations []Location, format string, args ...interface{}) *CompileError {
	e := &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Locations: locations}
	if len(locations) > 0 {
		e.Location = &locations[0]
	}
	return e
}

// Is reports whether err wraps target, delegating to errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// As delegates to errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

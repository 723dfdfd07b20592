// Package apperr defines the small error taxonomy shared by every stage of
// the query-planning pipeline, so the HTTP layer can map a failure to a
// status code without inspecting stage-specific error types.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by which stage produced it.
type Kind string

const (
	KindParse       Kind = "parse_error"
	KindQueryBuild  Kind = "query_build_error"
	KindUnknownType Kind = "unknown_type"
	KindStorage     Kind = "storage_error"
	KindUnknown     Kind = "unknown_error"
)

// Error wraps an underlying cause with a Kind so callers can branch on it
// with errors.As instead of string matching.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// ParseError reports malformed filter text, an unknown operator token, or a
// terminal with the wrong number of tokens.
func ParseError(format string, args ...any) *Error {
	return newErr(KindParse, fmt.Sprintf(format, args...))
}

// QueryBuildError reports attributes that cannot be joined, a reference to
// an attribute the catalog doesn't know about, or a graph lookup against an
// absent table.
func QueryBuildError(format string, args ...any) *Error {
	return newErr(KindQueryBuild, fmt.Sprintf(format, args...))
}

// WrapQueryBuildError attaches the query-build kind to an underlying cause
// (typically a schemagraph.ErrTableNotFound).
func WrapQueryBuildError(err error) *Error {
	return wrapErr(KindQueryBuild, "query cannot be built", err)
}

// UnknownTypeError reports a native type string the storage adapter doesn't
// know how to translate to the closed TypeKind set.
func UnknownTypeError(native string) *Error {
	return newErr(KindUnknownType, fmt.Sprintf("unknown native type %q", native))
}

// StorageError wraps an I/O, authentication, or execution failure reported
// by the Storage implementation.
func StorageError(err error) *Error {
	return wrapErr(KindStorage, "storage operation failed", err)
}

// UnknownError wraps a fault that doesn't fit any other kind.
func UnknownError(err error) *Error {
	return wrapErr(KindUnknown, "unexpected error", err)
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the Kind carried by err, or KindUnknown if err isn't one of
// ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Package engerr defines the error taxonomy shared across the engine.
//
// Every engine-level failure is surfaced as an *Error carrying a Kind. The
// out-of-scope HTTP router maps Kind to a status code; nothing in this
// package imports net/http, it only documents the intended mapping.
package engerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error. See spec §7 for the canonical mapping
// to HTTP status codes (documented in the comment next to each constant,
// not enforced here).
type Kind string

const (
	KindValidation     Kind = "validation"      // 400
	KindAuth           Kind = "auth"            // 401
	KindNotFound       Kind = "not_found"       // 404
	KindConflict       Kind = "conflict"        // 409
	KindPayloadTooBig  Kind = "payload_too_big" // 413
	KindUnprocessable  Kind = "unprocessable"   // 422
	KindNoQuestions    Kind = "no_questions"    // 500, explicit message
	KindTimeout        Kind = "timeout"         // 504
	KindConnectivity   Kind = "connectivity"    // 502
	KindInternal       Kind = "internal"        // 500
	KindConstraint     Kind = "constraint"      // 409 (store uniqueness/check violation)
	KindQuery          Kind = "query"           // 400 (malformed store input)
	KindShortBatch     Kind = "short_batch"      // batch manager: batch_fn returned too few results
	KindShutdown       Kind = "shutdown"         // batch manager: processor stopped before dispatch
	KindIncompleteResp Kind = "incomplete_response"
	KindSchema         Kind = "schema"
	KindTransport      Kind = "transport"
	KindPersist        Kind = "persist"
)

// Error is the concrete error type returned across package boundaries in
// this engine.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets a *Error compare equal-by-kind against another *Error target, as
// in errors.Is(err, &engerr.Error{Kind: engerr.KindX}); a bare Kind is not
// an error value, so KindOf(err) == KindX is the simpler check.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewValidationError(format string, args ...any) *Error { return newErr(KindValidation, format, args...) }
func NewAuthError(format string, args ...any) *Error       { return newErr(KindAuth, format, args...) }
func NewNotFoundError(format string, args ...any) *Error   { return newErr(KindNotFound, format, args...) }
func NewConflictError(format string, args ...any) *Error   { return newErr(KindConflict, format, args...) }
func NewPayloadTooBigError(format string, args ...any) *Error {
	return newErr(KindPayloadTooBig, format, args...)
}
func NewUnprocessableError(format string, args ...any) *Error {
	return newErr(KindUnprocessable, format, args...)
}
func NewNoQuestionsError(format string, args ...any) *Error {
	return newErr(KindNoQuestions, format, args...)
}
func NewInternalError(format string, args ...any) *Error { return newErr(KindInternal, format, args...) }

func WrapTimeoutError(err error, format string, args ...any) *Error {
	return wrapErr(KindTimeout, err, format, args...)
}
func WrapConnectivityError(err error, format string, args ...any) *Error {
	return wrapErr(KindConnectivity, err, format, args...)
}
func WrapConstraintError(err error, format string, args ...any) *Error {
	return wrapErr(KindConstraint, err, format, args...)
}
func WrapQueryError(err error, format string, args ...any) *Error {
	return wrapErr(KindQuery, err, format, args...)
}
func WrapInternalError(err error, format string, args ...any) *Error {
	return wrapErr(KindInternal, err, format, args...)
}
func WrapPersistError(err error, format string, args ...any) *Error {
	return wrapErr(KindPersist, err, format, args...)
}

func NewShortBatchError(shortBy int) *Error {
	return newErr(KindShortBatch, "batch_fn returned %d fewer results than requested", shortBy)
}

func NewShutdownError() *Error {
	return newErr(KindShutdown, "processor is shutting down")
}

func NewIncompleteResponseError(finishReason string) *Error {
	return newErr(KindIncompleteResp, "generator returned incomplete response (finish_reason=%q)", finishReason)
}

func WrapSchemaError(err error, format string, args ...any) *Error {
	return wrapErr(KindSchema, err, format, args...)
}

func WrapTransportError(err error, format string, args ...any) *Error {
	return wrapErr(KindTransport, err, format, args...)
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, otherwise returns KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err's Kind equals kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

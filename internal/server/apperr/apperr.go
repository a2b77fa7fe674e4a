// Package apperr defines the closed set of error kinds surfaced by the storage
// and credential layers. Engine-specific errors never cross a package boundary:
// each adapter translates them into an *Error before returning. Callers match
// kinds with Is or KindOf.
package apperr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal covers anything the storage or crypto engine reported that is
	// not one of the other kinds. It is the zero value so that unknown errors
	// classify as internal.
	KindInternal Kind = iota
	// KindConflict means a uniqueness constraint was violated.
	KindConflict
	// KindForbidden means the caller is authenticated but not entitled.
	KindForbidden
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindUnauthorized means the credential is missing, invalid or expired.
	KindUnauthorized
	// KindValidation means caller-supplied data is malformed.
	KindValidation
)

// InternalMessage is the only text ever exposed for internal errors.
const InternalMessage = "Something went wrong"

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "CONFLICT"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindValidation:
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// Error is an application error of a known Kind.
//
// For KindInternal, Message is always InternalMessage and the engine text is
// kept in Diagnostic together with the Origin (file:line) of translation.
// Neither is part of Error(); they are meant for logs only.
type Error struct {
	Kind       Kind
	Message    string
	Diagnostic string
	Origin     string
	// Details holds per-field messages for KindValidation.
	Details map[string]string
}

// Error returns the user-facing message. It never includes the diagnostic.
func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match on kind: errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// Forbidden returns a KindForbidden error.
func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

// Validation returns a KindValidation error with optional field details.
func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Internal wraps an engine error. The origin is the caller of Internal.
func Internal(err error) *Error {
	return internalAt(err, 2)
}

// InternalCaller is Internal for translation helpers: the origin is taken
// skip frames above the function that called InternalCaller.
func InternalCaller(err error, skip int) *Error {
	return internalAt(err, skip+2)
}

func internalAt(err error, skip int) *Error {
	diag := "<nil>"
	if err != nil {
		diag = err.Error()
	}
	origin := "unknown"
	if _, file, line, ok := runtime.Caller(skip); ok {
		origin = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return &Error{
		Kind:       KindInternal,
		Message:    InternalMessage,
		Diagnostic: diag,
		Origin:     origin,
	}
}

// KindOf returns the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Public returns the message that may be shown to a caller.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return InternalMessage
}

// From converts any error into an *Error, wrapping unknown errors as internal.
// A nil err yields nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalAt(err, 2)
}

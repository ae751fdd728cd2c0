package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation the error occurred in
type Phase string

const (
	PhaseOpen      Phase = "open"      // document loading
	PhasePage      Phase = "page"      // page load/close
	PhaseRender    Phase = "render"    // rasterization
	PhaseLifecycle Phase = "lifecycle" // engine init/teardown
)

// Kind categorizes the error
type Kind string

const (
	KindFile         Kind = "file"          // bad/unreadable descriptor or zero-length file
	KindFormat       Kind = "format"        // not a PDF or corrupted
	KindPassword     Kind = "password"      // encrypted, wrong or missing password
	KindSecurity     Kind = "security"      // unsupported protection scheme
	KindPage         Kind = "page"          // page-level content fault
	KindUnknown      Kind = "unknown"       // uncategorized engine error
	KindIllegalState Kind = "illegal_state" // invalid handle where a live one is required
	KindRange        Kind = "range"         // inverted load-range request
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of err if it is a structured Error.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return "", false
}

// Engine last-error codes as reported by FPDF_GetLastError.
const (
	CodeSuccess  uint32 = 0
	CodeUnknown  uint32 = 1
	CodeFile     uint32 = 2
	CodeFormat   uint32 = 3
	CodePassword uint32 = 4
	CodeSecurity uint32 = 5
	CodePage     uint32 = 6
)

// FromCode translates an engine last-error code into a typed open failure.
// The descriptions mirror the engine's documented meanings. A success code
// still yields an Unknown error: callers only translate after a failed load.
func FromCode(code uint32) *Error {
	switch code {
	case CodeFile:
		return &Error{Phase: PhaseOpen, Kind: KindFile, Detail: "File not found or could not be opened."}
	case CodeFormat:
		return &Error{Phase: PhaseOpen, Kind: KindFormat, Detail: "File not in PDF format or corrupted."}
	case CodePassword:
		return &Error{Phase: PhaseOpen, Kind: KindPassword, Detail: "Incorrect password."}
	case CodeSecurity:
		return &Error{Phase: PhaseOpen, Kind: KindSecurity, Detail: "Unsupported security scheme."}
	case CodePage:
		return &Error{Phase: PhaseOpen, Kind: KindPage, Detail: "Page not found or content error."}
	default:
		return &Error{Phase: PhaseOpen, Kind: KindUnknown, Detail: fmt.Sprintf("Unknown error (code %d).", code)}
	}
}

// Convenience constructors for common error patterns

// File creates a file-access error for the open phase
func File(detail string) *Error {
	return &Error{Phase: PhaseOpen, Kind: KindFile, Detail: detail}
}

// IllegalState creates an invalid-handle error
func IllegalState(phase Phase, detail string) *Error {
	return &Error{Phase: phase, Kind: KindIllegalState, Detail: detail}
}

// Range creates an inverted load-range error
func Range(from, to int) *Error {
	return &Error{
		Phase:  PhasePage,
		Kind:   KindRange,
		Detail: fmt.Sprintf("invalid page range [%d, %d]", from, to),
	}
}

// Lifecycle wraps an engine init/teardown failure
func Lifecycle(cause error, detail string) *Error {
	return &Error{Phase: PhaseLifecycle, Kind: KindUnknown, Detail: detail, Cause: cause}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}

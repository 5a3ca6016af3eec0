// Package diag holds the error/diagnostic taxonomy shared by every
// pdftree subpackage (parse, filter, enumerate, write) and re-exported
// by the root package. It exists so those subpackages can report
// typed diagnostics without importing the root package (which in turn
// imports all of them) — the same flat, dependency-free-core shape
// the teacher favors (types.PDFEncryption, types.FormData sit in their
// own package for exactly this reason).
package diag

import "fmt"

// Kind classifies a diagnostic or error (spec.md section 7).
type Kind int

const (
	KindMalformedHeader Kind = iota
	KindParseError
	KindTrailerMissing
	KindInvalidIndirect
	KindStreamTruncated
	KindLengthMismatch
	KindUnresolvedReference
	KindInflateFailure
	KindDeflateFailure
	KindValidationError
	KindDoubleEmit
	KindRoundTripFailure
)

func (k Kind) String() string {
	switch k {
	case KindMalformedHeader:
		return "MalformedHeader"
	case KindParseError:
		return "ParseError"
	case KindTrailerMissing:
		return "TrailerMissing"
	case KindInvalidIndirect:
		return "InvalidIndirect"
	case KindStreamTruncated:
		return "StreamTruncated"
	case KindLengthMismatch:
		return "LengthMismatch"
	case KindUnresolvedReference:
		return "UnresolvedReference"
	case KindInflateFailure:
		return "InflateFailure"
	case KindDeflateFailure:
		return "DeflateFailure"
	case KindValidationError:
		return "ValidationError"
	case KindDoubleEmit:
		return "DoubleEmit"
	case KindRoundTripFailure:
		return "RoundTripFailure"
	default:
		return "Unknown"
	}
}

// Error is the fatal-error shape returned by Parse/Serialize and by
// every subpackage's entry points. Offset is -1 when no single byte
// offset applies.
type Error struct {
	Kind    Kind
	Message string
	Offset  int64
	Err     error
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a fatal *Error with no wrapped cause.
func New(kind Kind, offset int64, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Wrap builds a fatal *Error wrapping cause.
func Wrap(kind Kind, offset int64, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: offset, Err: cause}
}

// Diagnostic is one non-fatal warning.
type Diagnostic struct {
	Kind    Kind
	Message string
	Offset  int64
}

func (d Diagnostic) String() string {
	return d.Kind.String() + ": " + d.Message
}

// Sink receives non-fatal diagnostics. A nil Sink is never passed
// around directly; callers use Discard{} or wrap one in NopIfNil.
type Sink interface {
	Warn(Diagnostic)
}

// Discard is a Sink that drops every diagnostic.
type Discard struct{}

func (Discard) Warn(Diagnostic) {}

// NopIfNil returns s, or Discard{} if s is nil.
func NopIfNil(s Sink) Sink {
	if s == nil {
		return Discard{}
	}
	return s
}

package pdftree

import "github.com/benedoc-inc/pdftree/diag"

// Kind, Error, Diagnostic, and Sink are re-exported from package diag
// so callers only ever need to import the root package, even though
// the taxonomy itself is shared with every internal subpackage (see
// diag.go's package comment).
type Kind = diag.Kind

const (
	KindMalformedHeader     = diag.KindMalformedHeader
	KindParseError          = diag.KindParseError
	KindTrailerMissing      = diag.KindTrailerMissing
	KindInvalidIndirect     = diag.KindInvalidIndirect
	KindStreamTruncated     = diag.KindStreamTruncated
	KindLengthMismatch      = diag.KindLengthMismatch
	KindUnresolvedReference = diag.KindUnresolvedReference
	KindInflateFailure      = diag.KindInflateFailure
	KindDeflateFailure      = diag.KindDeflateFailure
	KindValidationError     = diag.KindValidationError
	KindDoubleEmit          = diag.KindDoubleEmit
	KindRoundTripFailure    = diag.KindRoundTripFailure
)

// Error is the fatal-error type returned by Parse and Serialize.
type Error = diag.Error

func newError(kind Kind, offset int64, format string, args ...interface{}) *Error {
	return diag.New(kind, offset, format, args...)
}

func wrapError(kind Kind, offset int64, cause error, format string, args ...interface{}) *Error {
	return diag.Wrap(kind, offset, cause, format, args...)
}

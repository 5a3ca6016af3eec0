package pdftree

import (
	"log"

	"github.com/benedoc-inc/pdftree/diag"
)

// Diagnostic and Sink are re-exported from package diag; see errors.go.
type Diagnostic = diag.Diagnostic
type Sink = diag.Sink

// StdLogSink adapts a *log.Logger into a Sink — the structured
// equivalent of the teacher's bare log.Printf(...) calls gated behind
// a verbose flag (core/parse/get_object.go). Use NewStdLogSink(nil) to
// log through the standard library's default logger.
type StdLogSink struct {
	logger *log.Logger
}

// NewStdLogSink wraps logger (or the standard library's default
// logger, if nil) as a Sink.
func NewStdLogSink(logger *log.Logger) *StdLogSink {
	return &StdLogSink{logger: logger}
}

func (s *StdLogSink) Warn(d Diagnostic) {
	if s.logger != nil {
		s.logger.Printf("%s", d.String())
		return
	}
	log.Printf("%s", d.String())
}

package pdftree

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/go-playground/validator/v10"
)

// Flags are the document-level options from spec.md section 6. They
// are the direct analogue of the teacher's PDFWriter boolean settings
// (UseXRefStream, UseObjectStream in core/write/writer.go) generalized
// to the full flag set spec.md names, plus struct-tag validation in
// the style of sassoftware-pdf-xtract's Config.Validate().
type Flags struct {
	Compress   bool
	Decompress bool
	Minify     bool
	Optimize   bool

	NoCompress      bool
	NoMinify        bool
	NoObjectStreams bool
	NoOptimize      bool

	UseObjectStreams        bool
	PreserveBinarySignature bool

	ValidateStrict bool // "validate": validation errors become fatal
	NoValidate     bool // "novalidate": skip validation entirely

	// Version is the requested PDF minor version N in "1.N". 0 means
	// "let the writer choose" (spec.md section 6: "N is chosen as
	// max(5, requested) when object streams are enabled, else 4").
	Version int `validate:"omitempty,min=1,max=9"`

	// Sink receives non-fatal diagnostics (section 7). Nil means
	// discard, matching Flags{}'s zero value being immediately usable.
	Sink Sink `validate:"-"`
}

// Validate checks Flags for structurally invalid combinations. This
// does not implement the "negation wins" resolution (that happens in
// resolve(), since it is not a validity question but a precedence
// rule) — it catches requests that can never be satisfied, such as
// asking for PDF 1.N object streams with N below 5.
func (f Flags) Validate() error {
	if f.UseObjectStreams && f.Version != 0 && f.Version < 5 {
		return newError(KindValidationError, -1,
			"use_object_streams requires PDF >= 1.5, got requested version 1.%d", f.Version)
	}
	validate := validator.New()
	if err := validate.Struct(&f); err != nil {
		return wrapError(KindValidationError, -1, err, "invalid flags")
	}
	return nil
}

// resolved is the effective, conflict-free policy derived from Flags
// by applying spec.md's precedence rules: "optimize" expands to its
// three constituents, and any "no_*" negation wins over the positive
// flag it negates.
type resolved struct {
	compress         bool
	decompress       bool
	minify           bool
	useObjectStreams bool
	preserveBinary   bool
	validateStrict   bool
	noValidate       bool
	version          int
}

func (f Flags) resolve() resolved {
	compress := f.Compress
	minify := f.Minify
	useObjStm := f.UseObjectStreams

	if f.Optimize {
		compress = true
		minify = true
		useObjStm = true
	}

	if f.NoCompress {
		compress = false
	}
	if f.NoMinify {
		minify = false
	}
	if f.NoObjectStreams {
		useObjStm = false
	}
	if f.NoOptimize {
		compress = false
		minify = false
		useObjStm = false
	}

	return resolved{
		compress:         compress,
		decompress:       f.Decompress && !compress,
		minify:           minify,
		useObjectStreams: useObjStm,
		preserveBinary:   f.PreserveBinarySignature,
		validateStrict:   f.ValidateStrict && !f.NoValidate,
		noValidate:       f.NoValidate,
		version:          f.Version,
	}
}

func (f Flags) sink() Sink {
	return diag.NopIfNil(f.Sink)
}

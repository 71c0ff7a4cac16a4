// Package diag implements the three-severity error model of spec §7:
// recoverable diagnostics that accumulate an error count, fatal errors
// that abort the current top-level operation, and internal errors
// (programmer bugs) that panic with a stack trace. Grounded on the
// teacher's own structured Report/ReportError/AsReport/WrapReport error
// type.
package diag

import (
	"errors"
	"fmt"

	"github.com/nvchdl/velab/internal/tree"
)

// Severity is one of the three kinds spec §7 defines.
type Severity int

const (
	// SeverityDiagnostic is recoverable: elaboration continues so that
	// multiple problems surface in one run.
	SeverityDiagnostic Severity = iota
	// SeverityFatal means the input violates a precondition the core
	// cannot repair; the current top-level operation aborts.
	SeverityFatal
	// SeverityInternal is a programmer bug (illegal slot access, unknown
	// tree kind) — it panics rather than returning an error.
	SeverityInternal
)

func (s Severity) String() string {
	switch s {
	case SeverityDiagnostic:
		return "diagnostic"
	case SeverityFatal:
		return "fatal"
	case SeverityInternal:
		return "internal error"
	default:
		return "unknown severity"
	}
}

// Report is one reported problem: a severity, an optional phase/code tag
// for grouping, a message, an optional source location, and a free-form
// data bag for structured fields a renderer might want (e.g. the actual
// and formal widths of a net-width mismatch).
type Report struct {
	Severity Severity
	Phase    string
	Code     string
	Message  string
	Loc      *tree.Loc
	Data     map[string]any
	Cause    error
}

func (r *Report) Error() string {
	prefix := ""
	if r.Loc != nil && r.Loc.File != "" {
		prefix = fmt.Sprintf("%s:%d:%d: ", r.Loc.File, r.Loc.LineStart, r.Loc.ColumnStart)
	}
	if r.Code != "" {
		return fmt.Sprintf("%s%s [%s]: %s", prefix, r.Severity, r.Code, r.Message)
	}
	return fmt.Sprintf("%s%s: %s", prefix, r.Severity, r.Message)
}

func (r *Report) Unwrap() error { return r.Cause }

// New constructs a Report with the given severity, phase tag, and message.
func New(sev Severity, phase, message string) *Report {
	return &Report{Severity: sev, Phase: phase, Message: message}
}

// At attaches a source location and returns r for chaining.
func (r *Report) At(loc tree.Loc) *Report {
	r.Loc = &loc
	return r
}

// WithCode attaches a short phase-scoped error code and returns r.
func (r *Report) WithCode(code string) *Report {
	r.Code = code
	return r
}

// WithData attaches a structured field and returns r.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// ReportError is the error value propagated through Go's error interface
// when a Report needs to travel as a plain `error` return (e.g. out of
// internal/elaborate). Most callers construct a Report and hand it
// directly to a Sink instead; ReportError exists for call sites that must
// return `error` rather than call a Sink inline.
type ReportError struct{ *Report }

func (e *ReportError) Error() string { return e.Report.Error() }
func (e *ReportError) Unwrap() error { return e.Report.Cause }

// AsError wraps r as an error.
func (r *Report) AsError() error { return &ReportError{r} }

// WrapReport wraps a lower-level error as a Report of the given severity,
// preserving the original via errors.Unwrap.
func WrapReport(err error, sev Severity, phase, code string) *ReportError {
	return &ReportError{&Report{Severity: sev, Phase: phase, Code: code, Message: err.Error(), Cause: err}}
}

// AsReport unwraps err looking for a *ReportError, returning its Report.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Report, true
	}
	return nil, false
}

package diag

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/fatih/color"
)

// Sink collects every Report raised during one elaboration run and
// renders it to an io.Writer, colorized the same way the teacher's CLI
// colorizes its own pass/fail output, honouring NVC_NO_COLOR.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	reports []*Report
	errors  int

	fatal  func(a ...interface{}) string
	diagn  func(a ...interface{}) string
	intern func(a ...interface{}) string
}

// NewSink creates a Sink writing rendered reports to w.
func NewSink(w io.Writer) *Sink {
	if os.Getenv("NVC_NO_COLOR") != "" {
		color.NoColor = true
	}
	return &Sink{
		w:      w,
		fatal:  color.New(color.FgRed, color.Bold).SprintFunc(),
		diagn:  color.New(color.FgYellow).SprintFunc(),
		intern: color.New(color.FgRed, color.Bold, color.Underline).SprintFunc(),
	}
}

// Report records r and renders it immediately. Diagnostic and Fatal
// reports both count toward ErrorCount; per spec §7 a non-zero count
// means elaboration must return null and the library must not be saved.
func (s *Sink) Report(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	if r.Severity == SeverityDiagnostic || r.Severity == SeverityFatal {
		s.errors++
	}
	s.render(r)
}

func (s *Sink) render(r *Report) {
	var colorize func(a ...interface{}) string
	switch r.Severity {
	case SeverityFatal:
		colorize = s.fatal
	case SeverityInternal:
		colorize = s.intern
	default:
		colorize = s.diagn
	}
	fmt.Fprintln(s.w, colorize(r.Error()))
}

// ErrorCount returns the number of Diagnostic and Fatal reports seen so far.
func (s *Sink) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// HasErrors reports whether any Diagnostic or Fatal report was recorded.
func (s *Sink) HasErrors() bool { return s.ErrorCount() > 0 }

// Reports returns a snapshot of every report recorded so far.
func (s *Sink) Reports() []*Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Internalf panics with a SeverityInternal Report — the programmer-bug
// path of spec §7. It is meant for conditions that indicate a defect in
// this program, not a problem in the VHDL being elaborated (illegal slot
// access, an unreachable tree Kind in a switch, and the like).
func Internalf(phase, format string, args ...any) {
	panic(&Report{Severity: SeverityInternal, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

// RecoverInternal must be called directly from a deferred statement
// (`defer diag.RecoverInternal(os.Stderr)`); recover only observes a
// panic when invoked by the function defer called directly, which
// RecoverInternal itself is. It prints the internal-error message and a
// stack trace and reports ok=false; any panic value that is not one of
// our own Reports is re-raised unchanged.
func RecoverInternal(w io.Writer) (ok bool) {
	r := recover()
	if r == nil {
		return true
	}
	rep, isReport := r.(*Report)
	if !isReport || rep.Severity != SeverityInternal {
		panic(r)
	}
	fmt.Fprintf(w, "%s\n%s\n", rep.Error(), debug.Stack())
	return false
}

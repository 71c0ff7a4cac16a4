// Package logging provides the operational trace logger used by the CLI
// and the library manager: library creation and lookup. It is distinct
// from internal/diag, which reports
// VHDL-source-level diagnostics rather than implementation-level trace.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Level orders the four severities a Logger understands.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is a small leveled, colorized writer, the same red/yellow/green
// SprintFunc idiom the CLI's own main.go uses, generalized into a
// reusable package instead of package-main globals.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	level Level

	debug, info, warn, errFn func(a ...interface{}) string
}

// New constructs a Logger writing to w. verbose lowers the suppression
// threshold to LevelDebug; otherwise only Info and above are printed.
func New(w io.Writer, verbose bool) *Logger {
	if os.Getenv("NVC_NO_COLOR") != "" {
		color.NoColor = true
	}
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return &Logger{
		w:     w,
		level: level,
		debug: color.New(color.FgHiBlack).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		errFn: color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// SetVerbose adjusts l's suppression threshold after construction (the CLI
// flips this once global flags are parsed).
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if verbose {
		l.level = LevelDebug
	} else {
		l.level = LevelInfo
	}
}

func (l *Logger) logf(lvl Level, tag string, colorFn func(a ...interface{}) string, format string, args ...any) {
	if lvl < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, colorFn(fmt.Sprintf("[%s] %s", tag, msg)))
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, "DEBUG", l.debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, "INFO", l.info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, "WARN", l.warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, "ERROR", l.errFn, format, args...) }

// Default is the process-wide logger used by packages (internal/library)
// that trace operational events but don't hold a reference to a
// caller-supplied Logger. The CLI driver calls SetVerbose on it once flags
// are parsed.
var Default = New(os.Stderr, false)

func Debugf(format string, args ...any) { Default.Debugf(format, args...) }
func Infof(format string, args ...any)  { Default.Infof(format, args...) }
func Warnf(format string, args ...any)  { Default.Warnf(format, args...) }
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

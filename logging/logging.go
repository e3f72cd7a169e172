// Package logging is a thin layer over github.com/charmbracelet/log.
//
// Loggers are named, like the per-class loggers of older logging
// frameworks, and New returns the same *Logger for the same name.
// Package-level settings (SetLevel, SetOutput, SetFormat) apply to
// every registered logger, so a command can turn on debugging for
// all the libraries it uses with one call.
//
// A Logger can be adapted to log/slog (Slog), to the standard library
// logger (StdLogger), or to a plain io.Writer (Writer).
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Level is a logging level.
type Level = log.Level

const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
	FatalLevel = log.FatalLevel
)

// DefaultTimeFormat is used when timestamps are reported and no
// other format is given.
const DefaultTimeFormat = "2006/01/02 15:04:05"

// Format selects how log records are rendered.
type Format int

const (
	// FormatText is a human-readable line per record.
	FormatText Format = iota

	// FormatJSON is one JSON object per record.
	FormatJSON

	// FormatLogfmt is one logfmt line per record.
	FormatLogfmt
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatLogfmt:
		return "logfmt"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) formatter() log.Formatter {
	switch f {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ParseFormat understands "text", "json" and "logfmt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "logfmt":
		return FormatLogfmt, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// ParseLevel parses a level name.  Besides debug, info, warn, error
// and fatal, the names used by java.util.logging and friends are
// accepted: trace, finest, finer, fine (debug), config (info),
// warning (warn) and severe (error).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace", "fine", "finer", "finest":
		return DebugLevel, nil
	case "info", "config":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error", "severe":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Options configure a Logger.
type Options struct {
	Level           Level
	Format          Format
	Output          io.Writer
	ReportTimestamp bool

	// TimeFormat defaults to DefaultTimeFormat.
	TimeFormat string
}

func (o Options) charm(name string) log.Options {
	tf := o.TimeFormat
	if tf == "" {
		tf = DefaultTimeFormat
	}
	return log.Options{
		Prefix:          name,
		Level:           o.Level,
		ReportTimestamp: o.ReportTimestamp,
		TimeFormat:      tf,
		Formatter:       o.Format.formatter(),
	}
}

// Logger is a named charmbracelet Logger.
type Logger struct {
	*log.Logger
	name string
}

// NewWithOptions makes a Logger that isn't registered, so package
// settings don't affect it.
func NewWithOptions(name string, o Options) *Logger {
	out := o.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		Logger: log.NewWithOptions(out, o.charm(name)),
		name:   name,
	}
}

// Name returns the name given to New.
func (l *Logger) Name() string {
	return l.name
}

// Slog adapts l to a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.Logger)
}

// StdLogger adapts l to a standard library *log.Logger.  Everything
// printed to the returned logger is logged at the given level.
func (l *Logger) StdLogger(level Level) *stdlog.Logger {
	return l.Logger.StandardLog(log.StandardLogOptions{
		ForceLevel: level,
	})
}

// Writer returns an io.WriteCloser that logs each complete line
// written to it at the given level.  Close logs any trailing partial
// line.
func (l *Logger) Writer(level Level) io.WriteCloser {
	return &lineWriter{
		l:     l,
		level: level,
	}
}

var (
	mu       sync.Mutex
	defaults = Options{
		Level:  WarnLevel,
		Format: FormatText,
	}
	registry = make(map[string]*Logger)
)

// New returns the registered Logger with the given name, creating it
// with the current package settings if necessary.
func New(name string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, have := registry[name]; have {
		return l
	}
	l := NewWithOptions(name, defaults)
	registry[name] = l
	return l
}

func each(f func(*Logger)) {
	for _, l := range registry {
		f(l)
	}
}

// SetLevel sets the level for all registered loggers and for those
// created later.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	defaults.Level = level
	each(func(l *Logger) { l.SetLevel(level) })
}

// GetLevel returns the package default level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return defaults.Level
}

// SetOutput sets the output for all registered loggers and for those
// created later.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaults.Output = w
	each(func(l *Logger) { l.SetOutput(w) })
}

// SetFormat sets the format for all registered loggers and for those
// created later.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	defaults.Format = f
	each(func(l *Logger) { l.SetFormatter(f.formatter()) })
}

// SetReportTimestamp turns timestamps on or off for all registered
// loggers and for those created later.
func SetReportTimestamp(on bool) {
	mu.Lock()
	defer mu.Unlock()
	defaults.ReportTimestamp = on
	each(func(l *Logger) { l.SetReportTimestamp(on) })
}

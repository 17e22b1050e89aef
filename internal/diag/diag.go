// Package diag is wires' diagnostic channel: leveled notices, warnings, and
// errors, all carrying the same prefix.
package diag

import (
	"io"
	"os"

	"github.com/amonks/wires/internal/styles"
	charmlog "github.com/charmbracelet/log"
)

// Logger receives diagnostics. Only the command line tool decides that an
// error is fatal; library code reports and carries on.
type Logger interface {
	Notice(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Notice(string, ...any) {}
func (discard) Warn(string, ...any)   {}
func (discard) Error(string, ...any)  {}

// Options configure a charm-backed Logger.
type Options struct {
	// Verbose lowers the level so that notices are shown. Otherwise only
	// warnings and errors are.
	Verbose bool

	// JSON switches to structured JSON output.
	JSON bool
}

// Charm is a Logger writing through charmbracelet/log.
type Charm struct {
	l *charmlog.Logger
}

var _ Logger = &Charm{}

// New creates a Logger writing to w.
func New(w io.Writer, opts Options) *Charm {
	level := charmlog.WarnLevel
	if opts.Verbose {
		level = charmlog.InfoLevel
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix: "wires",
		Level:  level,
	})
	if opts.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetStyles(charmStyles())
	}
	return &Charm{l: l}
}

// Default returns a Logger writing to stderr.
func Default(verbose bool) *Charm {
	return New(os.Stderr, Options{Verbose: verbose})
}

func (c *Charm) Notice(msg string, keyvals ...any) { c.l.Info(msg, keyvals...) }
func (c *Charm) Warn(msg string, keyvals ...any)   { c.l.Warn(msg, keyvals...) }
func (c *Charm) Error(msg string, keyvals ...any)  { c.l.Error(msg, keyvals...) }

// Fatal logs at error level and exits with status 1.
func (c *Charm) Fatal(msg string, keyvals ...any) { c.l.Fatal(msg, keyvals...) }

func charmStyles() *charmlog.Styles {
	s := charmlog.DefaultStyles()
	s.Levels[charmlog.InfoLevel] = styles.Notice.SetString("NOTICE")
	s.Levels[charmlog.WarnLevel] = styles.Warning.SetString("WARN")
	s.Levels[charmlog.ErrorLevel] = styles.Error.SetString("ERROR")
	s.Levels[charmlog.FatalLevel] = styles.Error.SetString("FATAL")
	return s
}

// Recorder is a Logger that remembers what it was told, for tests.
type Recorder struct {
	Entries []Entry
}

// Entry is one recorded diagnostic.
type Entry struct {
	Level   string
	Msg     string
	Keyvals []any
}

var _ Logger = &Recorder{}

func (r *Recorder) Notice(msg string, keyvals ...any) { r.add("notice", msg, keyvals) }
func (r *Recorder) Warn(msg string, keyvals ...any)   { r.add("warn", msg, keyvals) }
func (r *Recorder) Error(msg string, keyvals ...any)  { r.add("error", msg, keyvals) }

func (r *Recorder) add(level, msg string, keyvals []any) {
	r.Entries = append(r.Entries, Entry{Level: level, Msg: msg, Keyvals: keyvals})
}

// Messages returns the recorded messages at the given level.
func (r *Recorder) Messages(level string) []string {
	var msgs []string
	for _, e := range r.Entries {
		if e.Level == level {
			msgs = append(msgs, e.Msg)
		}
	}
	return msgs
}

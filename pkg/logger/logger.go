// pkg/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is an alias so callers don't need to import logrus directly.
type Fields = logrus.Fields

// Logger wraps a logrus entry tagged with the component that owns it.
type Logger struct {
	*logrus.Entry
}

// Options controls the shared base logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

var base = newBase(Options{})

func newBase(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}
	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetLevel(logrus.InfoLevel)
	if opts.Level != "" {
		if lvl, err := logrus.ParseLevel(opts.Level); err == nil {
			l.SetLevel(lvl)
		}
	}
	return l
}

// Configure replaces the base logger. Loggers created before the call keep
// the old settings, so call it once at startup.
func Configure(opts Options) error {
	if opts.Level != "" {
		if _, err := logrus.ParseLevel(opts.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	base = newBase(opts)
	return nil
}

// New creates a new logger instance tagged with component.
func New(component string) *Logger {
	return &Logger{Entry: base.WithField("component", component)}
}

// With returns a child logger carrying the extra fields.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(fields)}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Entry: logrus.NewEntry(l)}
}

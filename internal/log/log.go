// Package log provides structured file logging for scribe.
// Entries carry a level and a category and are also published on a broker so
// the frontend can tail them. Logging is off until Init is called.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/scribe/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatDoc     Category = "doc"     // Document load/save and edits
	CatSyntax  Category = "syntax"  // Pattern compilation and highlighting
	CatTerm    Category = "term"    // Terminal emulator and child process
	CatLSP     Category = "lsp"     // Language server glue
	CatConfig  Category = "config"  // Configuration loading/reloading
	CatWatcher Category = "watcher" // File watcher events
	CatEditor  Category = "editor"  // Driver, panes and tabs
	CatCache   Category = "cache"   // Cache operations
	CatUI      Category = "ui"      // Frontend
)

// Logger writes formatted entries to a writer.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
	now      func() time.Time
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init opens path for appending and installs it as the global logger.
// The returned function closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := newLogger(f)
	l.closer = f
	install(l)
	return func() {
		install(nil)
		_ = f.Close()
	}, nil
}

// InitWriter installs a logger writing to w. Mostly useful in tests.
func InitWriter(w io.Writer) *Logger {
	l := newLogger(w)
	install(l)
	return l
}

func newLogger(w io.Writer) *Logger {
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
		now:      time.Now,
	}
}

func install(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil && defaultLogger != l {
		defaultLogger.broker.Close()
	}
	defaultLogger = l
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel drops entries below level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := format(l.now(), level, cat, msg, fields)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// format renders "2006-01-02T15:04:05 [LEVEL] [cat] msg k=v k2=v2\n".
func format(ts time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// Listener tails log entries inside a bubbletea program.
type Listener = pubsub.ContinuousListener[string]

// NewListener subscribes to the global logger. Returns nil when logging is
// not initialised.
func NewListener(ctx context.Context) *Listener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener[string](ctx, l.broker)
}

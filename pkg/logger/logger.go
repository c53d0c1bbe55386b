package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"research-news/internal/domain"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// AppLogger implements the domain.Logger interface. Output is one line per
// entry: timestamp, level, message and key=value fields.
type AppLogger struct {
	level  LogLevel
	fields []interface{}

	mu     *sync.Mutex
	logger *log.Logger
	now    func() time.Time
}

// NewLogger creates a logger writing to stdout.
func NewLogger(levelStr string) domain.Logger {
	return New(levelStr, os.Stdout)
}

// New creates a logger writing to w.
func New(levelStr string, w io.Writer) *AppLogger {
	return &AppLogger{
		level:  parseLogLevel(levelStr),
		mu:     &sync.Mutex{},
		logger: log.New(w, "", 0),
		now:    time.Now,
	}
}

// With returns a logger that adds fields to every entry.
func (l *AppLogger) With(fields ...interface{}) *AppLogger {
	child := *l
	child.fields = append(append([]interface{}{}, l.fields...), fields...)
	return &child
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.log(INFO, msg, fields...)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	l.log(ERROR, msg, append([]interface{}{"error", err}, fields...)...)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.log(DEBUG, msg, fields...)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.log(WARN, msg, fields...)
}

func (l *AppLogger) log(level LogLevel, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", l.now().Format("2006-01-02 15:04:05"), level, msg)
	writeFields(&b, l.fields)
	writeFields(&b, fields)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(b.String())
}

func writeFields(b *strings.Builder, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(b, " %v=%s", fields[i], formatValue(fields[i+1]))
	}
	// A dangling key is kept so the entry is not silently lost.
	if len(fields)%2 == 1 {
		fmt.Fprintf(b, " %v=<missing>", fields[len(fields)-1])
	}
}

func formatValue(v interface{}) string {
	var s string
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case error:
		s = val.Error()
	case time.Duration:
		s = val.String()
	case time.Time:
		s = val.UTC().Format(time.RFC3339)
	default:
		s = fmt.Sprintf("%v", val)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// parseLogLevel converts string log level to LogLevel enum
func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

package kaskade

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger is the minimal structured logging interface consumed by the
// executor. Key/value pairs follow the message, alternating key, value.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger is a console Logger writing leveled key=value lines to stderr.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger writing to stderr.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{
		logger: log.New(os.Stderr, "kaskade ", log.LstdFlags|log.Lmicroseconds),
	}
}

func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log("DEBUG", msg, keysAndValues...)
}

func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log("INFO", msg, keysAndValues...)
}

func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("WARN", msg, keysAndValues...)
}

func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log("ERROR", msg, keysAndValues...)
}

func (l *SimpleLogger) log(level, msg string, keysAndValues ...interface{}) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		fmt.Fprintf(&b, " %v", keysAndValues[len(keysAndValues)-1])
	}
	l.logger.Println(b.String())
}

// DebugConfig controls which executor events are logged when a Logger is
// configured. All flags default to on; logging as a whole is gated by
// Enabled.
type DebugConfig struct {
	Enabled   bool
	LogPolicy bool
	LogLayers bool
	LogAuth   bool
	LogMirror bool

	// ExecIDGen produces an identifier attached to every log line of one
	// Execute call so interleaved executions can be told apart.
	ExecIDGen func() string
}

// DefaultDebugConfig returns a DebugConfig with all event categories enabled
// and uuid-backed execution IDs. Enabled is left false.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:   false,
		LogPolicy: true,
		LogLayers: true,
		LogAuth:   true,
		LogMirror: true,
		ExecIDGen: uuid.NewString,
	}
}

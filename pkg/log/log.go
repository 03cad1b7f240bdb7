package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Color codes
const (
	reset      = "\033[0m"
	dim        = "\033[2m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	boldRed    = "\033[1;31m"
	boldGreen  = "\033[1;32m"
	boldYellow = "\033[1;33m"
)

// Emojis for different log types
const (
	infoEmoji    = "ℹ️ "
	successEmoji = "✅ "
	errorEmoji   = "❌ "
	warnEmoji    = "⚠️ "
	stepEmoji    = "👉 "
	debugEmoji   = "🔍 "
)

// Logger struct with debug flag
type Logger struct {
	debug bool
	color bool
	out   io.Writer
	file  io.WriteCloser
	mu    sync.Mutex
}

// New creates a new logger instance writing to stdout
func New(debug bool) *Logger {
	return &Logger{debug: debug, color: true, out: os.Stdout}
}

// NewWriter creates a logger that writes uncolored lines to w.
func NewWriter(w io.Writer, debug bool) *Logger {
	return &Logger{debug: debug, out: w}
}

// NewWithFile creates a stdout logger that also appends plain lines to a
// rotating log file at path.
func NewWithFile(debug bool, path string) *Logger {
	l := New(debug)
	if path == "" {
		return l
	}
	l.file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return l
}

// Close closes the rotating file sink, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// formatMessage adds padding and wraps long lines
func formatMessage(msg string) string {
	width := 80
	lines := strings.Split(msg, "\n")
	var formatted []string

	for _, line := range lines {
		if len(line) <= width {
			formatted = append(formatted, line)
			continue
		}

		words := strings.Fields(line)
		current := ""
		for _, word := range words {
			if len(current)+len(word)+1 > width {
				formatted = append(formatted, current)
				current = word
			} else {
				if current == "" {
					current = word
				} else {
					current += " " + word
				}
			}
		}
		if current != "" {
			formatted = append(formatted, current)
		}
	}

	return strings.Join(formatted, "\n")
}

func (l *Logger) write(color, emoji, level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.color {
		fmt.Fprintf(l.out, "%s%s%s%s\n", color, emoji, formatMessage(msg), reset)
	} else {
		fmt.Fprintf(l.out, "%s%s\n", emoji, msg)
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "%s %-5s %s\n", time.Now().Format(time.RFC3339), level, msg)
	}
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(blue, infoEmoji, "INFO", format, args...)
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	l.write(boldGreen, successEmoji, "INFO", format, args...)
}

// Error prints an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(boldRed, errorEmoji, "ERROR", format, args...)
}

// Warning prints a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.write(boldYellow, warnEmoji, "WARN", format, args...)
}

// Step prints a step message
func (l *Logger) Step(format string, args ...interface{}) {
	l.write(cyan, stepEmoji, "INFO", format, args...)
}

// Debug prints a debug message if debug is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.write(dim, debugEmoji, "DEBUG", format, args...)
}

// IsDebug returns whether debug logging is enabled
func (l *Logger) IsDebug() bool {
	return l.debug
}

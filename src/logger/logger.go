// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled, writing to stderr
// so that stdout stays free for rendered chains.
func NewCLILogger() *CLILogger {
	return &CLILogger{logger: log.New(os.Stderr, "", 0)}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Nop returns a Logger that discards everything.
func Nop() Logger {
	l := log.New(io.Discard, "", 0)
	return &CLILogger{logger: l}
}

// entry is one JSON log line.
type entry struct {
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// StructuredLogger writes one JSON object per message.
// It suppresses output entirely when silent.
//
// StructuredLogger is safe for concurrent use by multiple goroutines.
type StructuredLogger struct {
	mu        *sync.Mutex // shared with derived loggers
	writer    io.Writer
	silent    bool
	component string
}

// NewStructuredLogger creates a JSON logger. A nil writer discards output.
func NewStructuredLogger(writer io.Writer, silent bool) *StructuredLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &StructuredLogger{
		mu:     new(sync.Mutex),
		writer: writer,
		silent: silent,
	}
}

// WithComponent returns a logger sharing the same output and lock that tags
// every line with the given component name.
func (s *StructuredLogger) WithComponent(name string) *StructuredLogger {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &StructuredLogger{
		mu:        s.mu,
		writer:    s.writer,
		silent:    s.silent,
		component: name,
	}
}

// Printf formats and logs a structured message.
func (s *StructuredLogger) Printf(format string, v ...any) {
	s.write(fmt.Sprintf(format, v...))
}

// Println logs a structured message.
func (s *StructuredLogger) Println(v ...any) {
	s.write(fmt.Sprint(v...))
}

// SetOutput sets the output destination. A nil writer discards output.
func (s *StructuredLogger) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w == nil {
		s.writer = io.Discard
	} else {
		s.writer = w
	}
}

func (s *StructuredLogger) write(msg string) {
	if s.silent {
		return
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// Encode appends the trailing newline.
	if err := json.NewEncoder(buf).Encode(entry{
		Level:     "info",
		Component: s.component,
		Message:   msg,
	}); err != nil {
		return
	}

	s.mu.Lock()
	s.writer.Write(buf.Bytes())
	s.mu.Unlock()
}

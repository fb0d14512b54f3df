// Package logs builds the slog logger used by the command line tools.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects the log level and sinks
type Options struct {
	// Level is one of debug, info, warn, error
	Level string
	// Writer receives human readable text (default os.Stderr)
	Writer io.Writer
	// File, when set, additionally receives JSON records
	File string
}

// Logger owns the handlers and any opened log file.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return l, nil
}

// New builds a logger fanning out to text and optional JSON handlers
func New(opts Options) (*Logger, error) {
	level := new(slog.LevelVar)
	if opts.Level != "" {
		l, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level.Set(l)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}

	logger := &Logger{level: level}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger.file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	logger.Logger = slog.New(slogmulti.Fanout(handlers...))
	return logger, nil
}

// SetLevel changes the level of every handler
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the current level
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

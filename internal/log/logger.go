// Package log configures the process-wide zerolog logger and hands out
// component and per-session loggers.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Service string    // optional service name attached to every log entry
	Console bool      // human-readable lines instead of JSON
}

var (
	once sync.Once
	mu   sync.RWMutex
	base zerolog.Logger
)

// Configure initialises the global logger. Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))
		zerolog.TimeFieldFormat = time.RFC3339

		writer := cfg.Output
		if writer == nil {
			writer = os.Stderr
		}
		if cfg.Console {
			writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.TimeOnly, NoColor: writer != os.Stderr}
		}
		service := cfg.Service
		if service == "" {
			service = "campfire"
		}

		mu.Lock()
		base = zerolog.New(writer).With().
			Timestamp().
			Str("service", service).
			Logger()
		mu.Unlock()
	})
}

// parseLevel reads level, then LOG_LEVEL, falling back to info.
func parseLevel(level string) zerolog.Level {
	for _, s := range []string{level, os.Getenv("LOG_LEVEL")} {
		if s == "" {
			continue
		}
		if parsed, err := zerolog.ParseLevel(s); err == nil {
			return parsed
		}
	}
	return zerolog.InfoLevel
}

// OpenFile opens path for appending, creating its directory. The terminal
// front-end logs here because the screen owns stderr.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

// Base returns the configured base logger. If Configure was never called the
// defaults are applied first.
func Base() zerolog.Logger {
	Configure(Config{})
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// ForSession returns a component logger tagged with a game session id.
// Empty fields are left out.
func ForSession(component, sessionID string, fields map[string]string) zerolog.Logger {
	return Derive(func(c *zerolog.Context) {
		*c = c.Str("component", component)
		if sessionID != "" {
			*c = c.Str("session", sessionID)
		}
		for k, v := range fields {
			if v != "" {
				*c = c.Str(k, v)
			}
		}
	})
}

// Derive attaches arbitrary fields to a child logger using the provided builder function.
func Derive(build func(*zerolog.Context)) zerolog.Logger {
	ctx := Base().With()
	if build != nil {
		build(&ctx)
	}
	return ctx.Logger()
}

// Package logging builds the zerolog loggers used by the server, the
// pipeline and the CLI. Output always goes to the writer given, which is
// stderr in practice because stdout carries the MCP protocol.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "FEATURE_MCP_LOG_LEVEL"
	EnvFormat = "FEATURE_MCP_LOG_FORMAT"
)

// Format selects the log encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// New returns a timestamped logger writing to w at level. The console
// format is human-readable and uncolored.
func New(w io.Writer, level zerolog.Level, format Format) zerolog.Logger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// FromEnv builds a logger from FEATURE_MCP_LOG_LEVEL (default info) and
// FEATURE_MCP_LOG_FORMAT (json or console, default json). Unparseable
// levels fall back to info.
func FromEnv(w io.Writer) zerolog.Logger {
	return New(w, ParseLevel(os.Getenv(EnvLevel)), ParseFormat(os.Getenv(EnvFormat)))
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// ParseFormat maps a format name, defaulting to JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatConsole)) {
		return FormatConsole
	}
	return FormatJSON
}

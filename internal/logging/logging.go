// Package logging builds the process-wide zerolog logger.
//
// Operational logs go to stderr so that stdout stays reserved for the
// per-contact status lines printed by the reporter.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"wa-bulk-sender/internal/config"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

func NewWithWriter(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	zerolog.ErrorFieldName = "err"

	var w io.Writer = out
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// GormLevel keeps SQL chatter out of the console unless debug logging is on.
func GormLevel(level zerolog.Level) gormlogger.LogLevel {
	switch {
	case level == zerolog.Disabled:
		return gormlogger.Silent
	case level <= zerolog.DebugLevel:
		return gormlogger.Info
	case level <= zerolog.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

package logger

import (
	"io"
	"log"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type Config struct {
	Level      string
	JSON       bool
	Output     io.Writer
	TimeFormat string
}

var defaultLogger = New(Config{})

// New builds a charm logger. Zero values fall back to info level on stderr.
func New(cfg Config) *charmlog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "15:04:05"
	}
	l := charmlog.NewWithOptions(cfg.Output, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           ParseLevel(cfg.Level),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}

func ParseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Init replaces the package default.
func Init(cfg Config) {
	defaultLogger = New(cfg)
}

// StandardLog adapts the default logger for libraries that want a *log.Logger.
func StandardLog() *log.Logger {
	return defaultLogger.StandardLog()
}

func Debug(msg string, keyvals ...any) { defaultLogger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { defaultLogger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { defaultLogger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { defaultLogger.Error(msg, keyvals...) }

package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger with the default level. The
// APP_ENV environment variable selects the output format: "dev" gets the
// console writer, anything else JSON. All logs carry the component field.
func NewZerologLogger(component string) Logger {
	format := "json"
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = "console"
	}
	return newZerologLogger(component, "", format)
}

// NewZerologLoggerWithConfig creates a ZerologLogger honoring the configured
// minimum level ("debug", "info", "warn", "error") and format ("json" or
// "console"). Unknown levels fall back to zerolog's default.
func NewZerologLoggerWithConfig(component, level, format string) Logger {
	return newZerologLogger(component, level, format)
}

func newZerologLogger(component, level, format string) Logger {
	var out zerolog.Logger
	if format == "console" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		out = zerolog.New(writer)
	} else {
		out = zerolog.New(os.Stdout)
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil && level != "" {
		out = out.Level(lvl)
	}
	return &ZerologLogger{log: out.With().Timestamp().Str("component", component).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

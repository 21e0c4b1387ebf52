package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/trustcore/log/redact"
)

// Option configures a Logger
type Option func(*Logger)

// WithLevel sets the log level
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.Level(level)
	}
}

// WithCaller adds caller information to log events
func WithCaller() Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Caller().Logger()
	}
}

// WithRedaction sets the credential redaction hook
func WithRedaction(hook *redact.Hook) Option {
	return func(l *Logger) {
		l.redactHook = hook
	}
}

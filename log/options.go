package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/netservice/log/desensitize"
)

// Option configures a Logger
type Option func(*Logger)

// WithLevel sets the minimum level
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.Level(level)
	}
}

// WithCaller adds the caller location to every event
func WithCaller() Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Caller().Logger()
	}
}

// WithDesensitize masks sensitive values before they reach the sink
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(l *Logger) {
		l.desensitizeHook = hook
	}
}

// WithHeaderRedaction masks credentials carried in HTTP headers
func WithHeaderRedaction() Option {
	return WithDesensitize(desensitize.NewHook(desensitize.BuiltinRules()...))
}

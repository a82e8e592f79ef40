package log

import (
	"github.com/rs/zerolog"
)

// G is the process-wide logger used when no logger is injected. It logs at
// info level, so per-request debug lines stay quiet until SetGlobalLevel.
var G = New(WithLevel(zerolog.InfoLevel), WithHeaderRedaction())

// SetGlobalLogger replaces G
func SetGlobalLogger(logger *Logger) {
	G = logger
}

// SetGlobalLevel sets the level of G
func SetGlobalLevel(level zerolog.Level) {
	G.Logger = G.Logger.Level(level)
}

func Debug() *zerolog.Event {
	return G.Debug()
}

func Info() *zerolog.Event {
	return G.Info()
}

func Warn() *zerolog.Event {
	return G.Warn()
}

// Error returns an error event with the stack attached
func Error() *zerolog.Event {
	return G.Error().Stack()
}

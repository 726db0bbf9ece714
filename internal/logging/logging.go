package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Development mode writes
// human-readable output to out; other environments write JSON.
func Setup(appEnv, level string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}

	// Pretty console logging in development
	if appEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}

	// Set log level
	lvl := zerolog.InfoLevel
	if level != "" {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err == nil {
			lvl = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(lvl)

	log.Debug().
		Str("level", lvl.String()).
		Msg("Logger initialized")
}

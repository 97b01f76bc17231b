package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. An unknown level falls
// back to info; any format other than json writes human-readable console
// output.
func InitLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return log.Logger
}

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Unknown levels fall back to info;
// format "console" gives human-readable output, anything else JSON.
func Setup(level, format string) {
	SetupWriter(os.Stdout, level, format)
}

func SetupWriter(w io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", "geofence-attendance").Logger()
}

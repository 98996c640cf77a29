package logger

import (
	"booknotify/config"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const FormatJSON = "json"

func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// SetLogLevel applies SERVER_LOG_LEVEL and SERVER_LOG_FORMAT. Unknown levels mean trace.
func SetLogLevel(config *config.Config) {
	if config.Server.LogFormat == FormatJSON {
		log.Logger = log.Output(Output(config, os.Stdout))
	}

	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil || config.Server.LogLevel == "" {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}

// Output wraps out in a console writer unless the JSON format is configured.
func Output(config *config.Config, out io.Writer) io.Writer {
	if config.Server.LogFormat == FormatJSON {
		return out
	}

	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
}

// New returns a child of the global logger tagged with the application name.
// Pipeline components take it as a dependency so tests can swap in their own sink.
func New(config *config.Config) zerolog.Logger {
	return log.Logger.With().Str("app", config.App.Name).Logger()
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"endpoint-status/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Init(cfg *config.Config) *zerolog.Logger {
	return New(os.Stdout, cfg)
}

// New builds the base logger writing to out. Production gets JSON lines,
// everything else a coloured console writer with caller info.
func New(out io.Writer, cfg *config.Config) *zerolog.Logger {

	zerolog.SetGlobalLevel(parseLevel(cfg))

	var baseLogger zerolog.Logger

	if cfg.IsProduction() {
		baseLogger = zerolog.New(out)
	} else {
		baseLogger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    false,
			PartsOrder: []string{
				"time", "level", "caller", "service", "env", "component", "message", "err",
			},
			FormatLevel: func(i any) string {
				return strings.ToUpper(fmt.Sprintf("[%s]", i))
			},
			FormatCaller: func(caller any) string {
				return fmt.Sprintf("(%s)", caller)
			},
		})
	}

	baseLogger = baseLogger.With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("env", cfg.Env).
		Logger()

	// Add caller info for dev
	if !cfg.IsProduction() {
		baseLogger = baseLogger.With().Caller().Logger()
	}

	log.Logger = baseLogger

	return &baseLogger
}

// Component derives a child logger tagged with the owning component.
func Component(base *zerolog.Logger, name string) *zerolog.Logger {
	l := base.With().Str("component", name).Logger()
	return &l
}

func parseLevel(cfg *config.Config) zerolog.Level {
	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			return lvl
		}
	}
	if cfg.IsProduction() {
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

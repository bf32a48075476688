// Package logger arma el zerolog del proceso: JSON por defecto, consola legible en development.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config entorno, nivel y nombre del servicio que se estampa en cada línea.
type Config struct {
	Env     string
	Level   string
	Service string
}

// Logger zerolog.Logger con la configuración del servicio ya aplicada.
// Los casos de uso reciben el zerolog.Logger embebido y agregan su campo component.
type Logger struct {
	zerolog.Logger
}

// New construye el logger y lo deja también como logger global de zerolog.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	l := newWithWriter(w, cfg)
	zlog.Logger = l.Logger
	return l
}

func newWithWriter(w io.Writer, cfg Config) *Logger {
	ctx := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	return &Logger{Logger: ctx.Logger()}
}

// parseLevel nivel desconocido o vacío = info.
func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

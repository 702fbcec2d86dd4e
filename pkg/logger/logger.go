package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env   string // development -> consola legible; otro -> JSON
	Level string // trace, debug, info, warn, error
	App   string // se agrega como campo "app" si no está vacío
	Out   io.Writer // nil: os.Stdout
}

// Logger envuelve zerolog. Los componentes (http, movements, faceid...) se
// identifican con Named y se anidan con punto: "http.access".
type Logger struct {
	zl        zerolog.Logger
	base      zerolog.Logger // sin "component", para no repetir el campo al anidar
	component string
}

// New crea el logger raíz y lo deja como logger global de zerolog.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Out != nil {
		w = cfg.Out
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.App != "" {
		ctx = ctx.Str("app", cfg.App)
	}
	zl := ctx.Logger()
	log.Logger = zl

	return &Logger{zl: zl, base: zl}
}

// Nop descarta todo (tests).
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), base: zerolog.Nop()}
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Named devuelve un sublogger con el campo "component". Llamadas sucesivas se anidan.
func (l *Logger) Named(component string) *Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return &Logger{
		zl:        l.base.With().Str("component", component).Logger(),
		base:      l.base,
		component: component,
	}
}

// Component nombre del componente ("" en el logger raíz).
func (l *Logger) Component() string { return l.component }

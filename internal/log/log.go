package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// This package wraps zerolog behind a small key/value API so call sites stay
// one-liners: log.Info("fetch done", "range", name, "rows", n).

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	mu     sync.Mutex
	logger zerolog.Logger
	inited bool
)

// root returns the process-wide logger, initializing it on first use with a
// console writer at INFO level.
func root() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !inited {
		initLocked(os.Stderr, "info")
	}
	return logger
}

func initLocked(w io.Writer, level string) {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.ErrorFieldName = "err"
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
	logger = zerolog.New(cw).Level(parseLevel(level)).With().Timestamp().Logger()
	inited = true
}

// SetLevel reconfigures the minimum level. Accepted values: "debug", "info",
// "warn", "error" (case-insensitive); anything else keeps "info".
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	initLocked(os.Stderr, level)
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "info", "INFO", "":
		return zerolog.InfoLevel
	case "warn", "warning", "WARN", "WARNING":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func Debug(msg string, kv ...any) {
	l := root()
	emit(l.Debug(), msg, kv)
}

func Info(msg string, kv ...any) {
	l := root()
	emit(l.Info(), msg, kv)
}

func Warn(msg string, kv ...any) {
	l := root()
	emit(l.Warn(), msg, kv)
}

// Error logs msg with the error attached under "err".
func Error(msg string, err error, kv ...any) {
	l := root()
	emit(l.Error().Err(err), msg, kv)
}

// emit applies kv as key/value pairs. Keys must be strings; a non-string key
// ends the pair walk. An odd trailing value is ignored.
func emit(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			break
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

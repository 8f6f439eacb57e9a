package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// zlog is an optional structured logger. If unset, the global zerolog logger is used.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logger() *zerolog.Logger {
	if zlog != nil {
		return zlog
	}
	return &log.Logger
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("MODELREG_LOG_LEVEL"))

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logResult logs the outcome of a management request when the request's
// log level allows it. Errors log at LevelError and above.
func logResult(r *http.Request, msg string, status int, start time.Time, err error) {
	lvl := requestLogLevel(r)
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	l := logger()
	e := l.Info()
	if err != nil {
		e = l.Error().Err(err)
	}
	e = e.Str("path", r.URL.Path).Str("method", r.Method).Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	e.Msg(msg)
}

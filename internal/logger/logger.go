// Package logger configures the global zerolog logger and carries request
// ids through contexts.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	timeFormat    = "2006-01-02T15:04:05.000Z07:00"
	callerColumns = 30
	maxLoggedBody = 1000
)

// Options controls Init. Empty fields fall back to LOG_LEVEL and LOG_FILE.
type Options struct {
	Level  string    // trace, debug, info, warn, error
	File   string    // optional file that receives a copy of every line
	Out    io.Writer // defaults to stdout
	Caller bool      // annotate lines with file:line
}

// Init replaces the global logger. Output is a console writer, colored when
// DEV, DEV_MODE or DEVELOPMENT is "true".
func Init(opts Options) {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	zerolog.CallerMarshalFunc = padCaller

	level := ParseLevel(pick(opts.Level, os.Getenv("LOG_LEVEL")))
	zerolog.SetGlobalLevel(level)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	dev := devMode()
	sink := io.Writer(zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat, NoColor: !dev})
	if path := pick(opts.File, os.Getenv("LOG_FILE")); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			sink = io.MultiWriter(sink, f)
		}
	}

	zc := zerolog.New(sink).With().Timestamp()
	if opts.Caller {
		zc = zc.Caller()
	}
	log.Logger = zc.Logger()
	log.Debug().Stringer("level", level).Bool("dev", dev).Msg("Logger initialized")
}

// padCaller renders file:line in a fixed-width column so messages line up.
func padCaller(_ uintptr, file string, line int) string {
	s := fmt.Sprintf("%s:%d", filepath.Base(file), line)
	if len(s) >= callerColumns {
		return s[len(s)-callerColumns:]
	}
	return s + strings.Repeat(" ", callerColumns-len(s))
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func devMode() bool {
	for _, key := range []string{"DEV", "DEV_MODE", "DEVELOPMENT"} {
		if os.Getenv(key) == "true" {
			return true
		}
	}
	return false
}

// Get returns the global logger.
func Get() zerolog.Logger {
	return log.Logger
}

// NewRequestID returns a short random id for correlating log lines.
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ForRequest returns the global logger tagged with the request id in ctx.
func ForRequest(ctx context.Context) zerolog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.Logger.With().Str("requestId", id).Logger()
	}
	return log.Logger
}

// LogBody logs a request or response body at debug level, cut to
// maxLoggedBody bytes.
func LogBody(l zerolog.Logger, field string, body []byte) {
	if len(body) == 0 {
		return
	}
	ev := l.Debug()
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
		ev = ev.Bool("truncated", true)
	}
	ev.Str(field, string(body)).Msg("Body")
}

package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options tweak the handler returned by NewHandler.
type Options struct {
	Level  string
	Output io.Writer
}

func NewHandler(name string, opts ...Options) slog.Handler {
	o := Options{Output: os.Stderr}
	if len(opts) > 0 {
		if opts[0].Output != nil {
			o.Output = opts[0].Output
		}
		o.Level = opts[0].Level
	}

	return log.NewWithOptions(o.Output, log.Options{
		ReportTimestamp: true,
		Prefix:          name,
		Level:           parseLevel(o.Level),
	})
}

func New(name string, opts ...Options) *slog.Logger {
	return slog.New(NewHandler(name, opts...))
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.DebugLevel
	}
}

type ctxKey struct{}

// IntoContext adds a logger to a context. Use FromContext to
// pull the logger out.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the default slog
// logger when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// SubLogger derives a component logger by appending suffix to the
// charmbracelet prefix of base, e.g. "geostories" -> "geostories/registry".
func SubLogger(base *slog.Logger, suffix string) *slog.Logger {
	if cl, ok := base.Handler().(*log.Logger); ok {
		prefix := cl.GetPrefix()
		if prefix != "" {
			prefix = prefix + "/" + suffix
		} else {
			prefix = suffix
		}
		return slog.New(cl.WithPrefix(prefix))
	}

	return base.With("component", suffix)
}

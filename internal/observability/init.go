package observability

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// LogOptions selects the handler used by Init.
type LogOptions struct {
	// Format is "json" or "text" (default text).
	Format string
	// Level is "debug" | "info" | "warn" | "error" (default info).
	Level string
	// App is attached to every record as "app".
	App string
	// Output defaults to stdout.
	Output io.Writer
}

// Init configures the default slog logger with Cloud Logging field names
// and routes the standard library logger through it.
func Init(opts LogOptions) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	app := strings.TrimSpace(opts.App)
	if app == "" {
		app = "kreaite"
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       parseLevel(opts.Level),
		ReplaceAttr: cloudLoggingAttr,
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger := slog.New(handler).With(slog.String("app", app))
	slog.SetDefault(logger)

	// log.Printf calls in the service layer become structured records.
	log.SetFlags(0)
	log.SetOutput(&slogWriter{logger: logger, level: slog.LevelInfo})

	return logger
}

// cloudLoggingAttr renames level/msg to severity/message.
func cloudLoggingAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		a.Value = slog.StringValue(levelToSeverity(attrLevel(a.Value)))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

func attrLevel(v slog.Value) slog.Level {
	switch v.Kind() {
	case slog.KindInt64:
		return slog.Level(v.Int64())
	case slog.KindAny:
		switch lv := v.Any().(type) {
		case slog.Level:
			return lv
		case slog.Leveler:
			return lv.Level()
		case int64:
			return slog.Level(lv)
		}
	}
	return slog.LevelInfo
}

type slogWriter struct {
	logger *slog.Logger
	level  slog.Level
}

func (w *slogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}
	level := w.level
	if strings.HasPrefix(msg, "Warning:") {
		level = slog.LevelWarn
	}
	w.logger.Log(context.Background(), level, msg)
	return len(p), nil
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelToSeverity(l slog.Level) string {
	switch {
	case l <= slog.LevelDebug:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

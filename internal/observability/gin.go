package observability

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyRequestID = "request_id"
	ctxKeyTraceID   = "trace_id"
	ctxKeyLogger    = "logger"
)

// RequestContextMiddleware assigns a request id, captures the trace id and
// stores a request-scoped logger on the gin context.
func RequestContextMiddleware(projectID string) gin.HandlerFunc {
	projectID = strings.TrimSpace(projectID)

	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if reqID == "" {
			reqID = newRequestID()
		}
		c.Set(ctxKeyRequestID, reqID)
		c.Writer.Header().Set("X-Request-Id", reqID)

		logger := slog.Default().With(slog.String("request_id", reqID))
		if tc, ok := ParseTraceContext(c.Request); ok {
			c.Set(ctxKeyTraceID, tc.TraceID)
			if attrs := tc.LogAttrs(projectID); len(attrs) > 0 {
				logger = logger.With(attrs...)
			}
		}
		c.Set(ctxKeyLogger, logger)

		c.Next()
	}
}

// Logger returns the request-scoped logger, or the default one.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// RequestID returns the id assigned by RequestContextMiddleware.
func RequestID(c *gin.Context) string {
	return getString(c, ctxKeyRequestID)
}

// TraceID returns the incoming trace id, or "".
func TraceID(c *gin.Context) string {
	return getString(c, ctxKeyTraceID)
}

// AccessLogMiddleware emits one structured access log per request.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.Int("bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		Logger(c).LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}

func getString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func newRequestID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format(time.RFC3339Nano)
	}
	return hex.EncodeToString(b[:])
}

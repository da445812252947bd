package observability

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// TraceContext is the trace position carried by an incoming request.
type TraceContext struct {
	TraceID string
	// SpanID is 16 lowercase hex digits, or empty.
	SpanID  string
	Sampled bool
}

// ParseTraceContext reads X-Cloud-Trace-Context (TRACE_ID/SPAN_ID;o=1) and
// falls back to W3C traceparent (00-TRACE_ID-SPAN_ID-FLAGS).
func ParseTraceContext(r *http.Request) (TraceContext, bool) {
	if r == nil {
		return TraceContext{}, false
	}
	if h := strings.TrimSpace(r.Header.Get("X-Cloud-Trace-Context")); h != "" {
		if tc, ok := parseCloudTrace(h); ok {
			return tc, true
		}
	}
	if h := strings.TrimSpace(r.Header.Get("traceparent")); h != "" {
		return parseTraceparent(h)
	}
	return TraceContext{}, false
}

func parseCloudTrace(h string) (TraceContext, bool) {
	rest, opts, _ := strings.Cut(h, ";")
	traceID, span, _ := strings.Cut(rest, "/")
	if !isHexID(traceID, 32) {
		return TraceContext{}, false
	}

	tc := TraceContext{TraceID: strings.ToLower(traceID), Sampled: opts == "o=1"}
	// Cloud Trace sends the span id in decimal.
	if n, err := strconv.ParseUint(span, 10, 64); err == nil && n != 0 {
		tc.SpanID = fmt.Sprintf("%016x", n)
	}
	return tc, true
}

func parseTraceparent(h string) (TraceContext, bool) {
	parts := strings.Split(h, "-")
	if len(parts) != 4 || !isHexID(parts[1], 32) || !isHexID(parts[2], 16) {
		return TraceContext{}, false
	}
	flags, err := strconv.ParseUint(parts[3], 16, 8)
	if err != nil || len(parts[3]) != 2 {
		return TraceContext{}, false
	}
	return TraceContext{
		TraceID: strings.ToLower(parts[1]),
		SpanID:  strings.ToLower(parts[2]),
		Sampled: flags&0x01 == 1,
	}, true
}

// isHexID reports whether s is n hex digits and not all zero.
func isHexID(s string, n int) bool {
	if len(s) != n || strings.Trim(s, "0") == "" {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// LogAttrs returns the fields Cloud Logging uses to join log lines to a trace.
func (tc TraceContext) LogAttrs(projectID string) []any {
	var attrs []any
	if trace := CloudLoggingTrace(projectID, tc.TraceID); trace != "" {
		attrs = append(attrs, slog.String("logging.googleapis.com/trace", trace))
	}
	if tc.SpanID != "" {
		attrs = append(attrs, slog.String("logging.googleapis.com/spanId", tc.SpanID))
	}
	if tc.Sampled {
		attrs = append(attrs, slog.Bool("logging.googleapis.com/trace_sampled", true))
	}
	return attrs
}

// CloudLoggingTrace formats the trace resource name for projectID.
func CloudLoggingTrace(projectID, traceID string) string {
	projectID = strings.TrimSpace(projectID)
	traceID = strings.TrimSpace(traceID)
	if projectID == "" || traceID == "" {
		return ""
	}
	return "projects/" + projectID + "/traces/" + traceID
}

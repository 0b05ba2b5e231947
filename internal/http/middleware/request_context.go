package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/docqa-backend/internal/platform/ctxutil"
)

const (
	headerRequestID = "X-Request-Id"
	headerTraceID   = "X-Trace-Id"

	maxRequestIDLen = 64
)

// RequestContext tags each request with a request id and, when otelgin has
// started a span, its trace id. A caller-supplied X-Request-Id is kept only
// if it is a short token; anything else is replaced with a fresh uuid. Trace
// ids are never taken from the client.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := ctxutil.RequestInfo{RequestID: strings.TrimSpace(c.GetHeader(headerRequestID))}
		if !validRequestID(info.RequestID) {
			info.RequestID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			info.TraceID = sc.TraceID().String()
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestInfo(c.Request.Context(), info))
		c.Header(headerRequestID, info.RequestID)
		if info.TraceID != "" {
			c.Header(headerTraceID, info.TraceID)
		}
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}

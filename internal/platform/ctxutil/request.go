// Package ctxutil carries per-request identity through contexts so service
// logs can be joined with the access log line of the request that caused them.
package ctxutil

import "context"

type requestInfoKey struct{}

// RequestInfo identifies one HTTP request. TraceID is empty when no span is
// recording.
type RequestInfo struct {
	RequestID string
	TraceID   string
}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	if ctx == nil {
		return RequestInfo{}, false
	}
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

// LogFields returns request_id and trace_id key/value pairs for the request
// in ctx, skipping empty ids. It returns nil outside a request.
func LogFields(ctx context.Context) []any {
	info, ok := RequestInfoFrom(ctx)
	if !ok {
		return nil
	}
	var kv []any
	if info.RequestID != "" {
		kv = append(kv, "request_id", info.RequestID)
	}
	if info.TraceID != "" {
		kv = append(kv, "trace_id", info.TraceID)
	}
	return kv
}

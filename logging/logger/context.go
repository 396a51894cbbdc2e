package logger

import (
	"context"

	"github.com/taskhive/taskhive/ctxutil"
)

// contextFields extracts the request-scoped fields attached to every entry.
func contextFields(ctx context.Context) map[string]any {
	fields := map[string]any{}
	if ctx == nil {
		return fields
	}
	if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
		fields[ctxutil.TraceIDKey] = traceID
	}
	if uid := ctxutil.GetUserID(ctx); uid != "" {
		fields[ctxutil.UserIDKey] = uid
	}
	return fields
}

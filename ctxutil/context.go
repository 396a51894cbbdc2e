package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	// TraceIDKey is the log field and gin key holding the trace id.
	TraceIDKey = "trace_id"
	// UserIDKey is the gin key holding the authenticated user id.
	UserIDKey = "user_id"
	// EmailKey is the gin key holding the authenticated user email.
	EmailKey = "email"
)

// GetValue retrieves a value from the context.
func GetValue(ctx context.Context, key string) any {
	if c, ok := ctx.(*gin.Context); ok {
		if val, exists := c.Get(key); exists {
			return val
		}
		return c.Request.Context().Value(ctxKey(key))
	}
	return ctx.Value(ctxKey(key))
}

// SetValue sets a value to the context.
func SetValue(ctx context.Context, key string, val any) context.Context {
	return context.WithValue(ctx, ctxKey(key), val)
}

// SetUserID sets the authenticated user id.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, UserIDKey, uid)
}

// GetUserID gets the authenticated user id.
func GetUserID(ctx context.Context) string {
	if uid, ok := GetValue(ctx, UserIDKey).(string); ok {
		return uid
	}
	return ""
}

// SetEmail sets the authenticated user email.
func SetEmail(ctx context.Context, email string) context.Context {
	return SetValue(ctx, EmailKey, email)
}

// GetEmail gets the authenticated user email.
func GetEmail(ctx context.Context) string {
	if email, ok := GetValue(ctx, EmailKey).(string); ok {
		return email
	}
	return ""
}

// GetTraceID gets trace id from context.Context or gin.Context.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := GetValue(ctx, TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets trace id to context.Context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}

// BindGin copies the identity and trace values of the request context into
// the gin context keys and the other way round, so handlers and services see
// the same values.
func BindGin(c *gin.Context, ctx context.Context) {
	if uid := GetUserID(ctx); uid != "" {
		c.Set(UserIDKey, uid)
	}
	if email := GetEmail(ctx); email != "" {
		c.Set(EmailKey, email)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		c.Set(TraceIDKey, traceID)
	}
	c.Request = c.Request.WithContext(ctx)
}

// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithOrganizationName(ctx, "Acme")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	adminEmailKey       struct{}
	organizationNameKey struct{}
	requestIDKey        struct{}
	requestTimeKey      struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyAdminEmail       = adminEmailKey{}
	ContextKeyOrganizationName = organizationNameKey{}
	ContextKeyRequestID        = requestIDKey{}
	ContextKeyRequestTime      = requestTimeKey{}
)

// AdminEmail retrieves the authenticated admin email from the context.
func AdminEmail(ctx context.Context) string {
	if email, ok := ctx.Value(ContextKeyAdminEmail).(string); ok {
		return email
	}
	return ""
}

// WithAdminEmail injects an authenticated admin email into the context.
func WithAdminEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminEmail, email)
}

// OrganizationName retrieves the token-bound organization name from the context.
func OrganizationName(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyOrganizationName).(string); ok {
		return name
	}
	return ""
}

// WithOrganizationName injects a token-bound organization name into the context.
func WithOrganizationName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyOrganizationName, name)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// Now retrieves the request-scoped time from the context, falling back to
// wall-clock time when no middleware captured one. All store writes within a
// single request share the same timestamp.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

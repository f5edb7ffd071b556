package auth

import (
	"context"

	"github.com/rapidread/rapidread/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the Session.
	sessionContextKey contextKey = "session"
)

// ContextWithSession adds a Session to the context.
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext retrieves the Session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return sess
}

// MustSessionFromContext retrieves the Session from the context.
// Panics if not present (use only when auth middleware has run).
func MustSessionFromContext(ctx context.Context) *model.Session {
	sess := SessionFromContext(ctx)
	if sess == nil {
		panic("session not found - ensure auth middleware is applied")
	}
	return sess
}

// UserIDFromContext is a convenience function to get the user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.UserID
}

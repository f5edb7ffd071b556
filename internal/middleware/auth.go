package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rapidread/rapidread/internal/auth"
	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/service"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// SessionResolver resolves a bearer token to an active session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.Session, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Sessions SessionResolver
}

// Auth returns a middleware that authenticates API requests.
// It extracts the session token from the Authorization header,
// resolves it to a session, and injects the session into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			token := extractSessionToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			sess, err := cfg.Sessions.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "invalid_token"),
						slog.String("ip", getClientIP(r)),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}
				// A session store outage is not a bad credential.
				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthUnavailable(w)
				return
			}

			cfg.Logger.Info("authentication successful",
				slog.String("user_id", sess.UserID),
				slog.String("ip", getClientIP(r)),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken extracts the session token from the
// "Authorization: Bearer <token>" header.
func extractSessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	const prefix = "bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}

	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid or missing session token","code":"UNAUTHORIZED"}`))
}

// writeAuthUnavailable writes a 503 when sessions cannot be looked up.
func writeAuthUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":"session lookup is temporarily unavailable","code":"SERVICE_UNAVAILABLE"}`))
}

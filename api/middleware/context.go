package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// SessionIDHeader carries the caller's reconciliation session.
const SessionIDHeader = "X-Session-Id"

const maxSessionIDLength = 128

type contextKey string

const ctxSessionID contextKey = "session_id"

// SessionID copies the X-Session-Id header into the request context and log fields.
func SessionID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(SessionIDHeader))
			if len(sessionID) > maxSessionIDLength {
				sessionID = sessionID[:maxSessionIDLength]
			}
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session id set by SessionID.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

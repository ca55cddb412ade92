package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
)

// contextKey is unexported so no other package can read or shadow the session.
type contextKey string

const sessionKey contextKey = "session"

// CookieName is the cookie the session token may be carried in. Mobile
// clients send it as "Authorization: Bearer <token>" instead.
const CookieName = "token"

// WithSession returns a context carrying the session username.
func WithSession(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, sessionKey, username)
}

// SessionFromContext returns the session username, or ("", false) for an
// anonymous request.
func SessionFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(sessionKey).(string)
	return username, ok && username != ""
}

// Guard decides whether a request may act on behalf of a player.
//
// A Guard built with a nil TokenService is disabled: sessions are never
// loaded and every request is allowed, which is how the service runs when
// no JWT secret is configured.
type Guard struct {
	tokens *TokenService
}

func NewGuard(tokens *TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Enabled reports whether sessions are enforced.
func (g *Guard) Enabled() bool {
	return g != nil && g.tokens != nil
}

// LoadSession resolves the request token, if any, into a session on the
// context. Invalid or missing tokens leave the request anonymous; Authorize
// decides later whether that matters.
func (g *Guard) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Enabled() {
			if tokenStr := tokenFromRequest(r); tokenStr != "" {
				if username, err := g.tokens.Validate(tokenStr); err == nil {
					r = r.WithContext(WithSession(r.Context(), username))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize returns nil when the request may act as username: always when
// the guard is disabled, otherwise only when the session belongs to username.
func (g *Guard) Authorize(ctx context.Context, username string) error {
	if !g.Enabled() {
		return nil
	}
	session, ok := SessionFromContext(ctx)
	if !ok {
		return apperror.Unauthorized("a valid session is required")
	}
	if session != username {
		return apperror.Forbidden("session does not belong to " + username)
	}
	return nil
}

// tokenFromRequest prefers the Authorization header and falls back to the cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/cache"
	"github.com/legaltech/webgate/internal/model"
)

type contextKey string

const (
	ctxUser  contextKey = "user"
	ctxToken contextKey = "token"
)

// RequireUser is the authoritative server-side auth check for protected
// layouts. It reads the session cookie, fetches the current user from the
// backend (through the cache wrapper), and injects the user into the request
// context.
//
// A 401 from the backend redirects to sign-in; any other failure renders a
// 502 instead, so a backend outage surfaces as an infrastructure error
// rather than a sign-in loop.
func RequireUser(fetch cache.FetchFunc, signinPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(backend.SessionCookieName)
			if err != nil {
				http.Redirect(w, r, signinPath, http.StatusFound)
				return
			}

			user, err := fetch(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, backend.ErrUnauthenticated) {
					http.Redirect(w, r, signinPath, http.StatusFound)
					return
				}
				http.Error(w, "upstream authentication service unavailable", http.StatusBadGateway)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, user)
			ctx = context.WithValue(ctx, ctxToken, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromCtx extracts the authenticated user from context.
func UserFromCtx(ctx context.Context) *model.User {
	u, _ := ctx.Value(ctxUser).(*model.User)
	return u
}

// TokenFromCtx extracts the session token RequireUser validated.
func TokenFromCtx(ctx context.Context) string {
	t, _ := ctx.Value(ctxToken).(string)
	return t
}

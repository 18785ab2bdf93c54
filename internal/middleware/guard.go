package middleware

import (
	"net/http"
	"strings"

	"github.com/legaltech/webgate/internal/audit"
	"github.com/legaltech/webgate/internal/backend"
)

// Guard is the edge gate for protected path prefixes. It checks only that a
// session cookie is present: no token validation, no backend call, so it can
// never produce a false negative because of a network failure. Requests
// without the cookie are redirected to the sign-in path.
//
// The guard is deliberately one-directional (dashboard → signin). The
// reverse redirect for already-authenticated visitors to /signin belongs to
// the page handlers after an authoritative fetch; putting it here would let
// a present-but-invalid cookie bounce between the two layers forever.
func Guard(prefixes []string, signinPath string, auditor *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesPrefix(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := r.Cookie(backend.SessionCookieName); err != nil {
				auditor.Record(r.Context(), audit.Event{
					Kind:    audit.KindGuardRedirect,
					Path:    r.URL.Path,
					TraceID: TraceIDFromCtx(r.Context()),
				})
				http.Redirect(w, r, signinPath, http.StatusFound)
				return
			}
			// Cookie present: pass through regardless of validity. The
			// authoritative check happens in RequireUser / the session store.
			next.ServeHTTP(w, r)
		})
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

package middleware

import (
	"net/http"

	"github.com/legaltech/webgate/internal/model"
	"github.com/legaltech/webgate/internal/nav"
)

// RequireDashboard gates a dashboard variant page on org type and role. A
// signed-in user who opens a variant URL that isn't theirs (a firm lawyer on
// the admin page, say) is redirected to their own resolved dashboard rather
// than shown a forbidden error. RequireUser must run first.
func RequireDashboard(orgType model.OrgType, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromCtx(r.Context())
			if user == nil {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			if user.OrgType != orgType || (len(roles) > 0 && !user.HasAnyRole(roles...)) {
				target := nav.ResolveDashboardPath(user)
				if target == r.URL.Path {
					// The resolver sends some role-less members to this very
					// page; redirecting would point the request at itself.
					next.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireFreelancer gates the freelancer dashboard. It serves independent
// clerks and users with no organization, so any firm or solo member is sent
// to their own dashboard instead.
func RequireFreelancer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromCtx(r.Context())
			if user == nil {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			switch user.OrgType {
			case model.OrgTypeTarik, model.OrgTypeNone, model.OrgTypeUnknown:
				next.ServeHTTP(w, r)
			default:
				http.Redirect(w, r, nav.ResolveDashboardPath(user), http.StatusFound)
			}
		})
	}
}

// RequireInternalSecret validates the X-Webgate-Auth header for operator
// calls to the internal audit endpoints.
func RequireInternalSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get("X-Webgate-Auth") != secret {
				http.Error(w, `{"error":{"code":"E_FORBIDDEN","message":"invalid internal secret"}}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

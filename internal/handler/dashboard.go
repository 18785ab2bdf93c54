package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legaltech/webgate/internal/audit"
	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/middleware"
	"github.com/legaltech/webgate/internal/nav"
	"github.com/legaltech/webgate/internal/session"
)

type DashboardHandler struct {
	sessions *session.Manager
	auditor  *audit.Recorder
	pages    *Pages
}

func NewDashboardHandler(sessions *session.Manager, auditor *audit.Recorder, pages *Pages) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, auditor: auditor, pages: pages}
}

type dashboardPage struct {
	Title    string
	UserName string
	OrgName  string
}

// GET /dashboard
//
// The landing redirector. It settles the session (hydrating it if this is
// the first request of the cycle) and then navigates:
//   - fetch in flight elsewhere     → loading page, no navigation
//   - initialized, no user, auth    → /signin
//   - initialized, no user, outage  → retryable error page, never /signin
//   - initialized with user         → resolved dashboard path
func (h *DashboardHandler) Landing(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(backend.SessionCookieName)
	if err != nil {
		// The guard already checked; kept for direct calls in tests.
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}
	store := h.sessions.Get(cookie.Value)

	st := store.Snapshot()
	if st.Loading {
		h.pages.render(w, http.StatusOK, "loading.html", nil)
		return
	}
	if !st.Initialized {
		store.Init(r.Context())
		st = store.Snapshot()
	} else if st.User == nil && st.Kind == session.ErrKindTransport {
		// A previous visit hit an outage. Retry instead of serving the
		// cached failure for the rest of the session.
		store.FetchMe(r.Context())
		st = store.Snapshot()
	}
	if st.Loading || !st.Initialized {
		// A concurrent request won the single-flight race; let the refresh
		// pick up the settled state.
		h.pages.render(w, http.StatusOK, "loading.html", nil)
		return
	}

	if st.User == nil {
		if st.Kind == session.ErrKindTransport {
			h.pages.renderUpstreamError(w, nav.DashboardRoot)
			return
		}
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	target := nav.ResolveDashboardPath(st.User)
	if nav.UsedPlaceholder(target) {
		h.auditor.Record(r.Context(), audit.Event{
			Kind:    audit.KindPlaceholderPath,
			UserID:  st.User.ID,
			Path:    target,
			TraceID: middleware.TraceIDFromCtx(r.Context()),
		})
	}
	if target == r.URL.Path {
		h.pages.render(w, http.StatusOK, "dashboard.html", dashboardPage{
			Title:    "Dashboard",
			UserName: st.User.Name,
			OrgName:  st.User.OrgName,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Variant returns the handler for one dashboard variant page. RequireUser
// and RequireDashboard run before it, so the context user is present and
// role-checked. Rendering also hydrates the session store from the
// server-side fetch, so a later /dashboard visit needs no backend call.
func (h *DashboardHandler) Variant(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserFromCtx(r.Context())
		if user == nil {
			http.Redirect(w, r, "/signin", http.StatusFound)
			return
		}

		// A user opening another org's or another user's URL goes to their
		// own dashboard.
		if orgID := chi.URLParam(r, "org_id"); orgID != "" && user.OrgID != "" && orgID != user.OrgID {
			http.Redirect(w, r, nav.ResolveDashboardPath(user), http.StatusFound)
			return
		}
		if userID := chi.URLParam(r, "user_id"); userID != "" && user.ID != "" && userID != user.ID {
			http.Redirect(w, r, nav.ResolveDashboardPath(user), http.StatusFound)
			return
		}

		if token := middleware.TokenFromCtx(r.Context()); token != "" {
			h.sessions.Get(token).SetUser(user)
		}

		h.pages.render(w, http.StatusOK, "dashboard.html", dashboardPage{
			Title:    title,
			UserName: user.Name,
			OrgName:  user.OrgName,
		})
	}
}

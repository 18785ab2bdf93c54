package handler

import (
	"net/http"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/nav"
	"github.com/legaltech/webgate/internal/session"
)

type SessionStateHandler struct {
	sessions *session.Manager
}

func NewSessionStateHandler(sessions *session.Manager) *SessionStateHandler {
	return &SessionStateHandler{sessions: sessions}
}

type sessionStateResponse struct {
	User          *sessionUser `json:"user"`
	Loading       bool         `json:"loading"`
	Initialized   bool         `json:"initialized"`
	Error         string       `json:"error,omitempty"`
	ErrorKind     string       `json:"error_kind,omitempty"`
	DashboardPath string       `json:"dashboard_path,omitempty"`
}

type sessionUser struct {
	ID      string   `json:"id"`
	OrgType string   `json:"org_type"`
	OrgID   string   `json:"org_id,omitempty"`
	Roles   []string `json:"user_roles"`
	Email   string   `json:"user_email"`
	Name    string   `json:"user_name"`
	OrgName string   `json:"org_name,omitempty"`
}

// GET /session
//
// The reactive read for pages that poll while the loading affordance is up.
// A session observed as neither initialized nor loading is initialized here,
// so no client can be stuck watching a session that never settles.
func (h *SessionStateHandler) State(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(backend.SessionCookieName)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionStateResponse{
			Initialized: true,
			ErrorKind:   string(session.ErrKindAuth),
		})
		return
	}

	store := h.sessions.Get(cookie.Value)
	st := store.Snapshot()
	if !st.Initialized && !st.Loading {
		store.Init(r.Context())
		st = store.Snapshot()
	}

	resp := sessionStateResponse{
		Loading:     st.Loading,
		Initialized: st.Initialized,
		Error:       st.Err,
		ErrorKind:   string(st.Kind),
	}
	if st.User != nil {
		roles := make([]string, 0, len(st.User.Roles))
		for _, role := range st.User.Roles {
			roles = append(roles, string(role))
		}
		resp.User = &sessionUser{
			ID:      st.User.ID,
			OrgType: string(st.User.OrgType),
			OrgID:   st.User.OrgID,
			Roles:   roles,
			Email:   st.User.Email,
			Name:    st.User.Name,
			OrgName: st.User.OrgName,
		}
		resp.DashboardPath = nav.ResolveDashboardPath(st.User)
	}
	writeJSON(w, http.StatusOK, resp)
}

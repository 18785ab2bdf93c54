package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/legaltech/webgate/internal/audit"
	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/cache"
	"github.com/legaltech/webgate/internal/middleware"
	"github.com/legaltech/webgate/internal/nav"
	"github.com/legaltech/webgate/internal/session"
)

type AuthHandler struct {
	backend      *backend.Client
	sessions     *session.Manager
	fetchUser    cache.FetchFunc
	userCache    *cache.UserCache
	auditor      *audit.Recorder
	pages        *Pages
	cookieSecure bool
}

func NewAuthHandler(
	client *backend.Client,
	sessions *session.Manager,
	fetchUser cache.FetchFunc,
	userCache *cache.UserCache,
	auditor *audit.Recorder,
	pages *Pages,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		backend:      client,
		sessions:     sessions,
		fetchUser:    fetchUser,
		userCache:    userCache,
		auditor:      auditor,
		pages:        pages,
		cookieSecure: cookieSecure,
	}
}

// GET /signin
//
// Already-authenticated visitors are redirected to their dashboard. This is
// the only place the signin→dashboard direction exists, and it acts only
// after an authoritative fetch, so it cannot loop with the edge guard's
// cookie-presence check.
func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(backend.SessionCookieName); err == nil {
		user, err := h.fetchUser(r.Context(), cookie.Value)
		if err == nil && user != nil {
			http.Redirect(w, r, nav.ResolveDashboardPath(user), http.StatusFound)
			return
		}
		if errors.Is(err, backend.ErrUnauthenticated) {
			h.clearSessionCookie(w)
		}
		// Transport errors fall through to the form: signing in again is a
		// reasonable recovery and must not be blocked by an outage.
	}
	h.pages.render(w, http.StatusOK, "signin.html", &signinForm{})
}

// POST /signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	form := &signinForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if !form.validate() {
		h.pages.render(w, http.StatusUnprocessableEntity, "signin.html", form)
		return
	}

	result, err := h.backend.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		var loginErr *backend.LoginError
		if errors.As(err, &loginErr) {
			h.auditor.Record(r.Context(), audit.Event{
				Kind:    audit.KindLoginFailure,
				Email:   form.Email,
				TraceID: middleware.TraceIDFromCtx(r.Context()),
				Detail:  loginErr.Message,
			})
			form.FormError = loginErr.Message
			h.pages.render(w, http.StatusUnauthorized, "signin.html", form)
			return
		}
		log.Printf("login upstream error: %v", err)
		form.FormError = "Something went wrong. Please try again."
		h.pages.render(w, http.StatusBadGateway, "signin.html", form)
		return
	}

	h.setSessionCookie(w, result.AccessToken, result.CookieExpiry())
	// A fresh login must not inherit state from an earlier session that
	// happened to use the same token value.
	h.sessions.Drop(result.AccessToken)

	h.auditor.Record(r.Context(), audit.Event{
		Kind:    audit.KindLoginSuccess,
		Email:   form.Email,
		TraceID: middleware.TraceIDFromCtx(r.Context()),
	})

	// The landing redirector resolves the exact variant; the login response
	// carries org_type but not the ids a canonical path needs.
	http.Redirect(w, r, nav.DashboardRoot, http.StatusSeeOther)
}

// GET /signup
func (h *AuthHandler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, http.StatusOK, "signup.html", &signupForm{})
}

// POST /signup
//
// Registration is handled by the backend's onboarding flow; the gateway
// validates the form and hands the visitor to sign-in.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	form := &signupForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	if !form.validate() {
		h.pages.render(w, http.StatusUnprocessableEntity, "signup.html", form)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(backend.SessionCookieName)
	if err == nil {
		if err := h.backend.Logout(r.Context(), cookie.Value); err != nil {
			// Revocation failure is the backend's problem; the gateway still
			// forgets the session locally.
			log.Printf("backend logout: %v", err)
		}
		h.sessions.Get(cookie.Value).Logout()
		h.sessions.Drop(cookie.Value)
		if h.userCache != nil {
			h.userCache.Invalidate(r.Context(), cookie.Value)
		}
	}
	h.clearSessionCookie(w)

	h.auditor.Record(r.Context(), audit.Event{
		Kind:    audit.KindLogout,
		TraceID: middleware.TraceIDFromCtx(r.Context()),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     backend.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   h.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     backend.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

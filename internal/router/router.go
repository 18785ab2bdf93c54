package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/legaltech/webgate/internal/audit"
	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/cache"
	"github.com/legaltech/webgate/internal/config"
	"github.com/legaltech/webgate/internal/handler"
	"github.com/legaltech/webgate/internal/middleware"
	"github.com/legaltech/webgate/internal/model"
	"github.com/legaltech/webgate/internal/session"
)

// New builds the HTTP router.
// fetchUser is the (possibly cache-wrapped) token → user lookup shared by
// the middleware and handlers; main builds it once so every layer sees the
// same cache.
func New(
	cfg *config.Config,
	db *sql.DB,
	client *backend.Client,
	sessions *session.Manager,
	fetchUser cache.FetchFunc,
	userCache *cache.UserCache,
	pages *handler.Pages,
	version string,
) http.Handler {
	auditor := audit.NewRecorder(db)

	authH := handler.NewAuthHandler(client, sessions, fetchUser, userCache, auditor, pages, cfg.CookieSecure)
	dashH := handler.NewDashboardHandler(sessions, auditor, pages)
	stateH := handler.NewSessionStateHandler(sessions)
	healthH := handler.NewHealthHandler(version)
	auditH := handler.NewAuditHandler(auditor)

	requireUser := middleware.RequireUser(fetchUser, "/signin")
	requireInternal := middleware.RequireInternalSecret(cfg.InternalSecret)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Public
	r.Get("/", pages.Home)
	r.Get("/healthz", healthH.Health)
	r.Get("/version", healthH.Version)
	r.Get("/signin", authH.SignInPage)
	r.Post("/signin", authH.SignIn)
	r.Get("/signup", authH.SignUpPage)
	r.Post("/signup", authH.SignUp)
	r.Post("/logout", authH.Logout)
	r.Get("/session", stateH.State)

	// Dashboard: the guard checks cookie presence only, so an anonymous
	// visitor is bounced before any backend traffic. Identity and role
	// checks happen per variant below.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard([]string{"/dashboard"}, "/signin", auditor))

		r.Get("/dashboard", dashH.Landing)

		variant := func(r chi.Router, pattern, title string, gate func(http.Handler) http.Handler) {
			r.With(requireUser, gate).Get(pattern, dashH.Variant(title))
		}

		variant(r, "/dashboard/solo/{org_id}", "Solo Practice",
			middleware.RequireDashboard(model.OrgTypeSolo, model.RoleSoloLawyer))
		variant(r, "/dashboard/solo/{org_id}/assist/{user_id}", "Solo Practice Assistant",
			middleware.RequireDashboard(model.OrgTypeSolo, model.RoleAssistant))
		variant(r, "/dashboard/firm/{org_id}/admin/{user_id}", "Firm Administration",
			middleware.RequireDashboard(model.OrgTypeFirm, model.RoleFirmAdmin))
		variant(r, "/dashboard/firm/{org_id}/lawyer/{user_id}", "Firm Lawyer",
			middleware.RequireDashboard(model.OrgTypeFirm, model.RoleFirmLawyer, model.RoleLawyer))
		variant(r, "/dashboard/firm/{org_id}/assist/{user_id}", "Firm Assistant",
			middleware.RequireDashboard(model.OrgTypeFirm, model.RoleAssistant))
		variant(r, "/dashboard/firm/{org_id}/tarik/{user_id}", "Firm Clerk",
			middleware.RequireDashboard(model.OrgTypeFirm, model.RoleTarik, model.RoleClerk))
		variant(r, "/dashboard/tarik/{user_id}", "Independent Clerk",
			middleware.RequireFreelancer())
	})

	// Internal: operator tooling
	r.Group(func(r chi.Router) {
		r.Use(requireInternal)
		r.Get("/internal/audit/events", auditH.Recent)
	})

	return r
}

// Package nav maps an authenticated user to their canonical dashboard path.
package nav

import (
	"github.com/legaltech/webgate/internal/model"
)

// DashboardRoot is the generic landing path used when no more specific
// dashboard applies.
const DashboardRoot = "/dashboard"

// placeholderID stands in for a missing org_id or user id so the produced
// path stays well-formed. The backend is expected to always send ids for
// authenticated users; callers may treat a "me" segment as a data problem.
const placeholderID = "me"

// ResolveDashboardPath returns the dashboard path for the given user. It is
// total: every user resolves to exactly one path.
//
// Role checks inside an org type are ordered and short-circuiting. For FIRM
// the precedence is admin > lawyer > assistant > clerk; a user holding both
// FIRM_ADMIN and FIRM_LAWYER lands on the admin dashboard. That ordering is
// routing policy, not an accident of implementation.
func ResolveDashboardPath(u *model.User) string {
	if u == nil {
		return DashboardRoot
	}

	contextID := u.OrgID
	if contextID == "" {
		contextID = placeholderID
	}
	userID := u.ID
	if userID == "" {
		userID = placeholderID
	}

	switch u.OrgType {
	case model.OrgTypeSolo:
		if u.HasRole(model.RoleSoloLawyer) {
			return "/dashboard/solo/" + contextID
		}
		if u.HasRole(model.RoleAssistant) {
			return "/dashboard/solo/" + contextID + "/assist/" + userID
		}
		return "/dashboard/solo/" + contextID

	case model.OrgTypeFirm:
		base := "/dashboard/firm/" + contextID
		switch {
		case u.HasRole(model.RoleFirmAdmin):
			return base + "/admin/" + userID
		case u.HasAnyRole(model.RoleFirmLawyer, model.RoleLawyer):
			return base + "/lawyer/" + userID
		case u.HasRole(model.RoleAssistant):
			return base + "/assist/" + userID
		case u.HasAnyRole(model.RoleTarik, model.RoleClerk):
			return base + "/tarik/" + userID
		}
		// Firm member with no recognized role: generic landing.
		return DashboardRoot

	case model.OrgTypeTarik, model.OrgTypeNone, model.OrgTypeUnknown:
		return "/dashboard/tarik/" + userID

	default:
		return "/dashboard/tarik/" + userID
	}
}

// UsedPlaceholder reports whether the given resolved path contains the
// missing-id placeholder segment. Handlers use this to flag malformed user
// records without refusing to route.
func UsedPlaceholder(path string) bool {
	for i := 0; i+3 <= len(path); i++ {
		if path[i:i+3] == "/"+placeholderID {
			if i+3 == len(path) || path[i+3] == '/' {
				return true
			}
		}
	}
	return false
}

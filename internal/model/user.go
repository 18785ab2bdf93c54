package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OrgType classifies the account context a user belongs to. The backend has
// revised this enumeration more than once, so values outside the known set
// decode to OrgTypeUnknown rather than passing through silently.
type OrgType string

const (
	OrgTypeSolo    OrgType = "SOLO"
	OrgTypeFirm    OrgType = "FIRM"
	OrgTypeTarik   OrgType = "TARIK"
	OrgTypeNone    OrgType = "NONE"
	OrgTypeUnknown OrgType = "UNKNOWN"
)

// Role is a capability tag within an org context. Membership, not
// exclusivity: a user may hold several roles at once.
type Role string

const (
	RoleSoloLawyer Role = "SOLO_LAWYER"
	RoleAssistant  Role = "ASSISTANT"
	RoleFirmAdmin  Role = "FIRM_ADMIN"
	RoleFirmLawyer Role = "FIRM_LAWYER"
	RoleLawyer     Role = "LAWYER"
	RoleClerk      Role = "CLERK"
	RoleTarik      Role = "TARIK"
)

// User is the authenticated principal as returned by GET /api/v1/users/me.
// IDs are normalized to strings at the decode boundary because the backend
// has shipped them both as JSON numbers and as strings.
type User struct {
	ID         string
	OrgType    OrgType
	OrgID      string // empty when the user has no org context
	Roles      []Role
	Email      string
	Name       string
	OrgName    string
	Profession string
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// userWire is the loosely typed backend shape. Normalization into User
// happens in exactly one place so shape drift surfaces here and nowhere else.
type userWire struct {
	ID         flexID   `json:"id"`
	OrgName    string   `json:"org_name"`
	OrgType    *string  `json:"org_type"`
	OrgID      *flexID  `json:"org_id"`
	Email      string   `json:"user_email"`
	Name       string   `json:"user_name"`
	Roles      []string `json:"user_roles"`
	Profession string   `json:"primary_profession"`
}

// flexID accepts a JSON string or number and keeps the string form.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	// Integer ids must not pick up an exponent form.
	if i, err := n.Int64(); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}

// ParseUser decodes and validates a backend user payload. Unknown org types
// are preserved as OrgTypeUnknown; unknown role strings are kept verbatim so
// routing can still match future additions by name.
func ParseUser(data []byte) (*User, error) {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	u := &User{
		ID:         string(w.ID),
		OrgType:    normalizeOrgType(w.OrgType),
		Email:      w.Email,
		Name:       w.Name,
		OrgName:    w.OrgName,
		Profession: w.Profession,
	}
	if w.OrgID != nil {
		u.OrgID = string(*w.OrgID)
	}
	u.Roles = make([]Role, 0, len(w.Roles))
	for _, r := range w.Roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		u.Roles = append(u.Roles, Role(r))
	}
	return u, nil
}

func normalizeOrgType(raw *string) OrgType {
	if raw == nil {
		return OrgTypeNone
	}
	switch v := OrgType(strings.ToUpper(strings.TrimSpace(*raw))); v {
	case OrgTypeSolo, OrgTypeFirm, OrgTypeTarik, OrgTypeNone:
		return v
	case "":
		return OrgTypeNone
	default:
		return OrgTypeUnknown
	}
}

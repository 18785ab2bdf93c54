package model

import "testing"

func TestParseUserNormalizesNumericIDs(t *testing.T) {
	u, err := ParseUser([]byte(`{"id":3,"org_type":"SOLO","org_id":7,"user_roles":["SOLO_LAWYER"]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.ID != "3" {
		t.Fatalf("expected id %q, got %q", "3", u.ID)
	}
	if u.OrgID != "7" {
		t.Fatalf("expected org_id %q, got %q", "7", u.OrgID)
	}
}

func TestParseUserAcceptsStringIDs(t *testing.T) {
	u, err := ParseUser([]byte(`{"id":"u-42","org_type":"FIRM","org_id":"org-9","user_roles":[]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.ID != "u-42" || u.OrgID != "org-9" {
		t.Fatalf("expected string ids preserved, got id=%q org_id=%q", u.ID, u.OrgID)
	}
}

func TestParseUserMapsMissingOrgTypeToNone(t *testing.T) {
	for _, payload := range []string{
		`{"id":1,"user_roles":[]}`,
		`{"id":1,"org_type":null,"user_roles":[]}`,
		`{"id":1,"org_type":"NONE","user_roles":[]}`,
	} {
		u, err := ParseUser([]byte(payload))
		if err != nil {
			t.Fatalf("parse %s: %v", payload, err)
		}
		if u.OrgType != OrgTypeNone {
			t.Fatalf("expected NONE for %s, got %q", payload, u.OrgType)
		}
	}
}

func TestParseUserMapsUnrecognizedOrgTypeToUnknown(t *testing.T) {
	u, err := ParseUser([]byte(`{"id":1,"org_type":"COOPERATIVE","user_roles":[]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.OrgType != OrgTypeUnknown {
		t.Fatalf("expected UNKNOWN, got %q", u.OrgType)
	}
}

func TestHasAnyRole(t *testing.T) {
	u := &User{Roles: []Role{RoleFirmAdmin, RoleFirmLawyer}}
	if !u.HasAnyRole(RoleFirmLawyer, RoleLawyer) {
		t.Fatalf("expected lawyer role match")
	}
	if u.HasAnyRole(RoleClerk, RoleTarik) {
		t.Fatalf("did not expect clerk/tarik match")
	}
}

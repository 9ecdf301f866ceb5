package auth

import (
	"encoding/json"
	"testing"
)

func TestSession_IsAuthenticated(t *testing.T) {
	if (Session{}).IsAuthenticated() {
		t.Fatalf("zero session must be unauthenticated")
	}
	if !(Session{Token: "T1", User: Identity{ID: 1, Role: RoleMember}}).IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}
}

func TestSession_HasRole(t *testing.T) {
	admin := Session{Token: "T", User: Identity{ID: 7, Role: RoleAdmin}}
	if !admin.HasRole(DefaultPrivilegedRoles()...) {
		t.Fatalf("admin should be privileged")
	}
	member := Session{Token: "T", User: Identity{ID: 8, Role: RoleMember}}
	if member.HasRole(DefaultPrivilegedRoles()...) {
		t.Fatalf("member should not be privileged")
	}
	// A role without a token never counts.
	if (Session{User: Identity{ID: 7, Role: RoleAdmin}}).HasRole(RoleAdmin) {
		t.Fatalf("role without token must not match")
	}
}

func TestIdentity_Valid(t *testing.T) {
	cases := map[Identity]bool{
		{ID: 1, Role: RoleMember}: true,
		{ID: 0, Role: RoleMember}: false,
		{ID: 3, Role: ""}:         false,
	}
	for id, want := range cases {
		if got := id.Valid(); got != want {
			t.Errorf("%+v.Valid() = %v, want %v", id, got, want)
		}
	}
}

func TestIdentity_StorageShape(t *testing.T) {
	b, err := json.Marshal(Identity{ID: 7, Role: RoleAdmin})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"id":7,"role":"Admin"}` {
		t.Fatalf("unexpected auth_user shape: %s", b)
	}
}

func TestLoginRequest_OmitsEmptySlug(t *testing.T) {
	b, err := json.Marshal(LoginRequest{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"email":"a@b.com","password":"x"}` {
		t.Fatalf("unexpected login body: %s", b)
	}
}

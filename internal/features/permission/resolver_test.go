package permission

import (
	"testing"

	"go-pms/internal/common/models"
)

func TestResolveScopeWidestWins(t *testing.T) {
	r := NewResolver(NewRegistry())

	actx := &models.AccessContext{
		Permissions: []string{
			"properties:read:assigned",
			"properties:read:organization",
		},
	}

	if got := r.ResolveScope(actx, "properties", "read"); got != ScopeOrganization {
		t.Errorf("got %v, want organization", got)
	}

	actx.Permissions = append(actx.Permissions, "properties:read:all")
	if got := r.ResolveScope(actx, "properties", "read"); got != ScopeAll {
		t.Errorf("got %v, want all", got)
	}
}

func TestResolveScopeNoMatch(t *testing.T) {
	r := NewResolver(NewRegistry())

	actx := &models.AccessContext{
		Permissions: []string{"properties:read:organization"},
	}

	if got := r.ResolveScope(actx, "payments", "read"); got != ScopeNone {
		t.Errorf("got %v, want none", got)
	}
	if got := r.ResolveScope(actx, "properties", "delete"); got != ScopeNone {
		t.Errorf("got %v, want none", got)
	}
}

func TestResolveScopeTotal(t *testing.T) {
	r := NewResolver(NewRegistry())

	if got := r.ResolveScope(nil, "properties", "read"); got != ScopeNone {
		t.Errorf("nil context: got %v, want none", got)
	}

	actx := &models.AccessContext{
		Permissions: []string{
			"garbage",
			"a:b",
			"properties:read:not_a_scope",
			"",
		},
	}
	if got := r.ResolveScope(actx, "properties", "read"); got != ScopeNone {
		t.Errorf("malformed entries: got %v, want none", got)
	}
}

func TestResolveScopeRegistryFallback(t *testing.T) {
	r := NewResolver(NewRegistry())

	// Empty snapshot falls back to the role's registry grants
	actx := &models.AccessContext{RoleID: RoleOrgAdmin}
	if got := r.ResolveScope(actx, "rent", "write"); got != ScopeOrganization {
		t.Errorf("got %v, want organization", got)
	}

	actx = &models.AccessContext{RoleID: "no_such_role"}
	if got := r.ResolveScope(actx, "rent", "write"); got != ScopeNone {
		t.Errorf("unknown role: got %v, want none", got)
	}
}

func TestScopeOrdering(t *testing.T) {
	if !(ScopeNone < ScopeAssigned && ScopeAssigned < ScopeOrganization && ScopeOrganization < ScopeAll) {
		t.Fatal("scope precedence order broken")
	}
}

func TestScopeString(t *testing.T) {
	cases := map[Scope]string{
		ScopeNone:         "none",
		ScopeAssigned:     "assigned",
		ScopeOrganization: "organization",
		ScopeAll:          "all",
		Scope(99):         "none",
	}
	for scope, want := range cases {
		if got := scope.String(); got != want {
			t.Errorf("Scope(%d).String() = %q, want %q", scope, got, want)
		}
	}
}

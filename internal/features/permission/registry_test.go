package permission

import (
	"reflect"
	"strings"
	"testing"
)

func TestRegistryDeterministic(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	for _, role := range a.Roles() {
		if !reflect.DeepEqual(a.PermissionsFor(role), b.PermissionsFor(role)) {
			t.Errorf("role %s: two registries disagree", role)
		}
	}
}

func TestRegistryUnknownRoleFailsClosed(t *testing.T) {
	r := NewRegistry()

	if got := r.PermissionsFor("not_a_role"); got != nil {
		t.Errorf("unknown role returned grants: %v", got)
	}
	if got := r.PermissionsFor(""); got != nil {
		t.Errorf("empty role returned grants: %v", got)
	}
	if r.KnownRole("not_a_role") {
		t.Error("unknown role reported as known")
	}
}

func TestRegistryRoleGrants(t *testing.T) {
	r := NewRegistry()

	has := func(role, perm string) bool {
		for _, p := range r.PermissionsFor(role) {
			if p == perm {
				return true
			}
		}
		return false
	}

	if !has(RoleSuperAdmin, "properties:delete:all") {
		t.Error("super_admin missing all-scope delete")
	}
	if !has(RoleOrgAdmin, "rent:write:organization") {
		t.Error("org_admin missing organization-scope rent write")
	}
	if has(RoleOrgAdmin, "rent:write:all") {
		t.Error("org_admin granted all scope")
	}

	// Property managers act on assigned properties but create at org scope
	if !has(RolePropertyManager, "properties:create:organization") {
		t.Error("property_manager missing organization-scope create")
	}
	if !has(RolePropertyManager, "rent:create:assigned") {
		t.Error("property_manager missing assigned-scope rent create")
	}

	if !has(RoleFinancialViewer, "payments:read:organization") {
		t.Error("financial_viewer missing payments read")
	}
	for _, p := range r.PermissionsFor(RoleFinancialViewer) {
		if !strings.HasSuffix(p, ":read:organization") {
			t.Errorf("financial_viewer grant is not org-scoped read: %s", p)
		}
	}
	if has(RoleFinancialViewer, "payments:write:organization") {
		t.Error("financial_viewer can write")
	}
}

func TestRegistryReturnsCopy(t *testing.T) {
	r := NewRegistry()

	grants := r.PermissionsFor(RoleOrgAdmin)
	grants[0] = "tampered"

	if r.PermissionsFor(RoleOrgAdmin)[0] == "tampered" {
		t.Error("caller mutation leaked into the registry")
	}
}

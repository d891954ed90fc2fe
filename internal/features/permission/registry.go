package permission

import "sort"

const registryVersion = "v1"

// Role identifiers. Accounts with no role resolve to the empty grant set.
const (
	RoleSuperAdmin      = "super_admin"
	RoleOrgAdmin        = "org_admin"
	RolePropertyManager = "property_manager"
	RoleFinancialViewer = "financial_viewer"
)

// Resources and Actions enumerate the permission vocabulary. A permission
// string is the triad "<resource>:<action>:<scope>".
var Resources = []string{
	"system",
	"organizations",
	"users",
	"roles",
	"properties",
	"tenants",
	"payments",
	"reports",
	"assignments",
	"rent",
	"invoices",
	"analytics",
}

var Actions = []string{"read", "write", "create", "delete", "admin", "config"}

// Registry is the fixed role → permission table. It is configuration, not
// computation: built once at startup and never mutated, so every caller in
// the process sees the same grants.
type Registry struct {
	version string
	grants  map[string][]string
}

func NewRegistry() *Registry {
	r := &Registry{
		version: registryVersion,
		grants:  make(map[string][]string),
	}

	r.grants[RoleSuperAdmin] = grantAll("all", Actions)
	r.grants[RoleOrgAdmin] = grantAll("organization", Actions)

	// Property managers act on assigned properties but may create new
	// properties anywhere in their organization.
	pm := grantAll("assigned", Actions)
	pm = append(pm, "properties:create:organization")
	r.grants[RolePropertyManager] = pm

	r.grants[RoleFinancialViewer] = grantAll("organization", []string{"read"})

	return r
}

func grantAll(scope string, actions []string) []string {
	perms := make([]string, 0, len(Resources)*len(actions))
	for _, resource := range Resources {
		for _, action := range actions {
			perms = append(perms, resource+":"+action+":"+scope)
		}
	}
	return perms
}

// PermissionsFor returns a copy of the role's grant set. Unknown roles get
// nil: the lookup fails closed and nothing downstream can widen it.
func (r *Registry) PermissionsFor(roleID string) []string {
	grants, ok := r.grants[roleID]
	if !ok {
		return nil
	}
	out := make([]string, len(grants))
	copy(out, grants)
	return out
}

func (r *Registry) KnownRole(roleID string) bool {
	_, ok := r.grants[roleID]
	return ok
}

func (r *Registry) Roles() []string {
	roles := make([]string, 0, len(r.grants))
	for role := range r.grants {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func (r *Registry) Version() string {
	return r.version
}

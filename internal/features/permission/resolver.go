package permission

import (
	"strings"

	"go-pms/internal/common/models"
)

// Scope is the visibility level a permission grants. The integer order is
// the precedence order: when several grants match, the widest wins.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeAssigned
	ScopeOrganization
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeAssigned:
		return "assigned"
	case ScopeOrganization:
		return "organization"
	case ScopeAll:
		return "all"
	}
	return "none"
}

func parseScope(s string) (Scope, bool) {
	switch s {
	case "assigned":
		return ScopeAssigned, true
	case "organization":
		return ScopeOrganization, true
	case "all":
		return ScopeAll, true
	}
	return ScopeNone, false
}

// Resolver decides, for a user and a resource+action, which scope applies.
// This is the only place scope precedence lives; services and the gateway
// consume its answer and never re-derive it.
type Resolver struct {
	Registry *Registry
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		Registry: registry,
	}
}

// ResolveScope is total: no input panics or errors, anything unmatched is
// ScopeNone. The user's materialized snapshot is consulted first; when the
// snapshot is empty the role's grants are re-derived from the registry.
// Malformed permission entries are skipped, never treated as a grant.
func (r *Resolver) ResolveScope(actx *models.AccessContext, resource, action string) Scope {
	if actx == nil {
		return ScopeNone
	}

	perms := actx.Permissions
	if len(perms) == 0 {
		perms = r.Registry.PermissionsFor(actx.RoleID)
	}

	widest := ScopeNone
	for _, perm := range perms {
		parts := strings.Split(perm, ":")
		if len(parts) != 3 {
			continue
		}
		if parts[0] != resource || parts[1] != action {
			continue
		}
		if scope, ok := parseScope(parts[2]); ok && scope > widest {
			widest = scope
		}
	}
	return widest
}

package access

import (
	"go-pms/internal/common/models"
	"go-pms/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource names as they appear in permission triads and collection routing.
const (
	ResourceProperties    = "properties"
	ResourceRent          = "rent"
	ResourcePayments      = "payments"
	ResourceUsers         = "users"
	ResourceOrganizations = "organizations"
)

// scopeFilter compiles a resolved scope into the bson predicate merged into
// every collection query for that resource.
//
// The assigned scope on rent/payments is the join-equivalent through the
// owning property: users carry a materialized assignedPropertyIds set,
// maintained whenever managers are assigned to or removed from a property,
// so the filter is a plain membership test instead of a lookup.
func scopeFilter(actx *models.AccessContext, resource string, scope permission.Scope) bson.M {
	switch scope {
	case permission.ScopeAll:
		return bson.M{}

	case permission.ScopeOrganization:
		return bson.M{"organizationId": actx.OrganizationID}

	case permission.ScopeAssigned:
		if resource == ResourceProperties {
			return bson.M{"assignedManagers": actx.UserID}
		}
		ids := actx.AssignedPropertyIDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		return bson.M{"propertyId": bson.M{"$in": ids}}
	}

	// ScopeNone never reaches compilation; match nothing if it ever does.
	return bson.M{"_id": bson.M{"$exists": false}}
}

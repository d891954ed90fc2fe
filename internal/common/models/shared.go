package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	OrgIDKey         ContextKey = "organization_id"
	AccessContextKey ContextKey = "access_context"
)

// AccessContext carries the acting user's identity and grants for a single
// request. It is built once per request by the middleware and passed
// explicitly into every service call; nothing in the core reads ambient
// session state.
type AccessContext struct {
	UserID              primitive.ObjectID
	RoleID              string
	OrganizationID      primitive.ObjectID // zero until the user is approved into an org
	Permissions         []string           // materialized snapshot, may be refreshed from the registry
	AssignedPropertyIDs []primitive.ObjectID
}

// HasOrganization reports whether the user has been approved into an organization.
func (a *AccessContext) HasOrganization() bool {
	return !a.OrganizationID.IsZero()
}

type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionApprove      AuditAction = "APPROVE"
	AuditActionReject       AuditAction = "REJECT"
	AuditActionAssign       AuditAction = "ASSIGN"
	AuditActionTerminate    AuditAction = "TERMINATE"
	AuditActionPayment      AuditAction = "PAYMENT"
	AuditActionCron         AuditAction = "CRON"
	AuditActionAccessDenied AuditAction = "ACCESS_DENIED"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Action         AuditAction        `bson:"action" json:"action"`
	Module         string             `bson:"module" json:"module"`
	RecordID       string             `bson:"record_id" json:"record_id"`
	ActorID        string             `bson:"actor_id" json:"actor_id"`
	ActorName      string             `bson:"-" json:"actor_name,omitempty"` // populated on read
	Changes        map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is the persisted shape of application log entries written by the
// async zap tee core.
type Log struct {
	Message        string    `bson:"message" json:"message"`
	Level          string    `bson:"level" json:"level"`
	Caller         string    `bson:"caller,omitempty" json:"caller,omitempty"`
	OrganizationID string    `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	CreatedOnUtc   time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

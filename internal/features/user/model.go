package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
	StatusInactive = "inactive"
)

// User accounts start pending with no organization. An administrator
// approves them into an org with a role; the role's permission set is
// materialized onto the user at that moment. Users are never deleted,
// only deactivated.
type User struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username            string               `bson:"username" json:"username"`
	Password            string               `bson:"password" json:"-"`
	Email               string               `bson:"email" json:"email"`
	Phone               string               `bson:"phone,omitempty" json:"phone,omitempty"`
	RoleID              string               `bson:"role_id,omitempty" json:"role_id,omitempty"`
	OrganizationID      primitive.ObjectID   `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Status              string               `bson:"status" json:"status"`
	Permissions         []string             `bson:"permissions,omitempty" json:"permissions,omitempty"`
	AssignedPropertyIDs []primitive.ObjectID `bson:"assigned_property_ids,omitempty" json:"assigned_property_ids,omitempty"`
	LastLogin           *time.Time           `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt           time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time            `bson:"updated_at" json:"updated_at"`
}

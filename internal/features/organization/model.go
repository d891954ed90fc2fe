package organization

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is the multi-tenancy partition. Every scoped record carries
// its id; no record is visible across organizations except to all-scope roles.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"` // e.g. landlord, agency
	Status    string             `bson:"status" json:"status"`
	Settings  Settings           `bson:"settings" json:"settings"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type Settings struct {
	Currency string `bson:"currency" json:"currency"`
	Timezone string `bson:"timezone" json:"timezone"`
}

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

package rent

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
	PeriodCustom  = "custom"
)

// RentAssignment is a lease of one space (or squatter area) to a tenant.
// OrganizationID is copied from the owning property at creation and must
// always match it. Terminated assignments stay in the collection for
// history; status is the only lifecycle field.
type RentAssignment struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyID          primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	SpaceID             string             `bson:"spaceId" json:"spaceId"`
	SpaceName           string             `bson:"spaceName" json:"spaceName"`
	OrganizationID      primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	TenantName          string             `bson:"tenantName" json:"tenantName"`
	TenantPhone         string             `bson:"tenantPhone" json:"tenantPhone"`
	TenantEmail         string             `bson:"tenantEmail,omitempty" json:"tenantEmail,omitempty"`
	NationalID          string             `bson:"nationalId,omitempty" json:"nationalId,omitempty"`
	MonthlyRent         float64            `bson:"monthlyRent" json:"monthlyRent"`
	BaseRent            float64            `bson:"baseRent" json:"baseRent"`
	PeriodType          string             `bson:"periodType" json:"periodType"`
	LeaseStart          time.Time          `bson:"leaseStart" json:"leaseStart"`
	LeaseEnd            *time.Time         `bson:"leaseEnd,omitempty" json:"leaseEnd,omitempty"`
	LeaseDurationMonths int                `bson:"leaseDurationMonths" json:"leaseDurationMonths"`
	PaymentDueDate      int                `bson:"paymentDueDate" json:"paymentDueDate"`
	Status              string             `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// AssignRequest carries the caller-supplied lease terms. MonthlyRent is
// absent on purpose: it defaults from the space's declared rent.
type AssignRequest struct {
	PropertyID          string     `json:"propertyId"`
	SpaceID             string     `json:"spaceId"`
	TenantName          string     `json:"tenantName"`
	TenantPhone         string     `json:"tenantPhone"`
	TenantEmail         string     `json:"tenantEmail"`
	NationalID          string     `json:"nationalId"`
	PeriodType          string     `json:"periodType"`
	LeaseStart          time.Time  `json:"leaseStart"`
	LeaseEnd            *time.Time `json:"leaseEnd"`
	LeaseDurationMonths int        `json:"leaseDurationMonths"`
	PaymentDueDate      int        `json:"paymentDueDate"`
}

// EditRequest patches an assignment. Nil fields are left untouched. Moving
// the lease to another space re-runs the occupancy precondition on the
// target.
type EditRequest struct {
	PropertyID          *string    `json:"propertyId"`
	SpaceID             *string    `json:"spaceId"`
	TenantName          *string    `json:"tenantName"`
	TenantPhone         *string    `json:"tenantPhone"`
	TenantEmail         *string    `json:"tenantEmail"`
	NationalID          *string    `json:"nationalId"`
	PeriodType          *string    `json:"periodType"`
	LeaseStart          *time.Time `json:"leaseStart"`
	LeaseEnd            *time.Time `json:"leaseEnd"`
	LeaseDurationMonths *int       `json:"leaseDurationMonths"`
	PaymentDueDate      *int       `json:"paymentDueDate"`
}

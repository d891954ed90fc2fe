package property

import (
	"time"

	"go-pms/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeBuilding = "building"
	TypeLand     = "land"
)

// Advisory space statuses. "occupied" is never trusted from this field
// alone; effective occupancy is derived from active assignments.
const (
	SpaceStatusVacant      = "vacant"
	SpaceStatusOccupied    = "occupied"
	SpaceStatusMaintenance = "maintenance"
)

type Location struct {
	Village   string `bson:"village" json:"village"`
	Parish    string `bson:"parish" json:"parish"`
	SubCounty string `bson:"subCounty" json:"subCounty"`
	County    string `bson:"county" json:"county"`
	District  string `bson:"district" json:"district"`
	Landmarks string `bson:"landmarks" json:"landmarks"`
}

type Caretaker struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
}

// Space is the atomic lease target inside a building. SpaceID is unique
// across the whole property, not just its floor.
type Space struct {
	SpaceID     string  `bson:"spaceId" json:"spaceId"`
	SpaceName   string  `bson:"spaceName" json:"spaceName"`
	SpaceType   string  `bson:"spaceType" json:"spaceType"`
	MonthlyRent float64 `bson:"monthlyRent" json:"monthlyRent"`
	Size        string  `bson:"size" json:"size"`
	Status      string  `bson:"status" json:"status"`
}

type Floor struct {
	FloorNumber int     `bson:"floorNumber" json:"floorNumber"`
	FloorName   string  `bson:"floorName" json:"floorName"`
	Spaces      []Space `bson:"spaces" json:"spaces"`
}

type BuildingDetails struct {
	BuildingType        string  `bson:"buildingType" json:"buildingType"`
	NumberOfFloors      int     `bson:"numberOfFloors" json:"numberOfFloors"`
	Floors              []Floor `bson:"floors" json:"floors"`
	TotalRentableSpaces int     `bson:"totalRentableSpaces" json:"totalRentableSpaces"`
}

// Squatter is the land equivalent of a Space.
type Squatter struct {
	SquatterID     string  `bson:"squatterId" json:"squatterId"`
	SquatterName   string  `bson:"squatterName" json:"squatterName"`
	AssignedArea   string  `bson:"assignedArea" json:"assignedArea"`
	AreaSize       string  `bson:"areaSize" json:"areaSize"`
	MonthlyPayment float64 `bson:"monthlyPayment" json:"monthlyPayment"`
	AgreementDate  string  `bson:"agreementDate" json:"agreementDate"`
	Status         string  `bson:"status" json:"status"`
}

type LandDetails struct {
	TotalArea      string     `bson:"totalArea" json:"totalArea"`
	LandUse        string     `bson:"landUse" json:"landUse"`
	Squatters      []Squatter `bson:"squatters" json:"squatters"`
	TotalSquatters int        `bson:"totalSquatters" json:"totalSquatters"`
}

// PropertyDetails is the type-specific half of a property. Exactly one
// variant is populated, selected by Property.Type; Validate enforces it
// so no code path can read the wrong detail aggregate.
type PropertyDetails interface {
	isPropertyDetails()
}

func (*BuildingDetails) isPropertyDetails() {}
func (*LandDetails) isPropertyDetails()     {}

type Property struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrganizationID   primitive.ObjectID   `bson:"organizationId" json:"organizationId"`
	Type             string               `bson:"type" json:"type"`
	AssignedManagers []primitive.ObjectID `bson:"assignedManagers" json:"assignedManagers"`
	Location         Location             `bson:"location" json:"location"`
	Caretaker        *Caretaker           `bson:"caretaker,omitempty" json:"caretaker,omitempty"`
	BuildingDetails  *BuildingDetails     `bson:"buildingDetails,omitempty" json:"buildingDetails,omitempty"`
	LandDetails      *LandDetails         `bson:"landDetails,omitempty" json:"landDetails,omitempty"`
	Status           string               `bson:"status" json:"status"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updated_at"`
}

// Details returns the populated variant, or nil when the aggregate for the
// declared type is absent. The explicit nil keeps a corrupt stored record
// from surfacing as a typed-nil pointer that type switches would deref.
func (p *Property) Details() PropertyDetails {
	if p.Type == TypeLand {
		if p.LandDetails == nil {
			return nil
		}
		return p.LandDetails
	}
	if p.BuildingDetails == nil {
		return nil
	}
	return p.BuildingDetails
}

// Validate enforces the detail-union invariant.
func (p *Property) Validate() error {
	switch p.Type {
	case TypeBuilding:
		if p.BuildingDetails == nil || p.LandDetails != nil {
			return &apperror.ValidationError{Field: "buildingDetails", Reason: "building property must carry buildingDetails and no landDetails"}
		}
	case TypeLand:
		if p.LandDetails == nil || p.BuildingDetails != nil {
			return &apperror.ValidationError{Field: "landDetails", Reason: "land property must carry landDetails and no buildingDetails"}
		}
	default:
		return &apperror.ValidationError{Field: "type", Reason: "must be building or land"}
	}
	return nil
}

// EffectiveStatus derives a space's occupancy from assignment existence.
// The stored status is advisory: it survives only as the maintenance
// override; "occupied" is decided by the active assignment, never by the
// field.
func EffectiveStatus(declared string, hasActiveAssignment bool) string {
	if hasActiveAssignment {
		return SpaceStatusOccupied
	}
	if declared == SpaceStatusMaintenance {
		return SpaceStatusMaintenance
	}
	return SpaceStatusVacant
}

package property

import (
	"fmt"

	"go-pms/pkg/apperror"
)

// Aggregate operations over a property's nested structure. All of them
// mutate the in-memory aggregate only; persisting the result is the
// service's job. activeSpaces is the set of space/squatter ids that
// currently hold an active rent assignment; removals touching that set
// are rejected.

// SpacePatch carries the editable space fields; nil means leave unchanged.
type SpacePatch struct {
	SpaceName   *string
	SpaceType   *string
	MonthlyRent *float64
	Size        *string
	Status      *string
}

// SquatterPatch mirrors SpacePatch for land properties.
type SquatterPatch struct {
	SquatterName   *string
	AssignedArea   *string
	AreaSize       *string
	MonthlyPayment *float64
	AgreementDate  *string
	Status         *string
}

func defaultFloorName(n int) string {
	if n == 0 {
		return "Ground Floor"
	}
	return fmt.Sprintf("Floor %d", n)
}

// AddFloor appends a floor numbered after the current highest.
func AddFloor(p *Property, floorName string) (*Floor, error) {
	b, err := buildingOf(p)
	if err != nil {
		return nil, err
	}

	number := len(b.Floors)
	if floorName == "" {
		floorName = defaultFloorName(number)
	}

	b.Floors = append(b.Floors, Floor{
		FloorNumber: number,
		FloorName:   floorName,
		Spaces:      []Space{},
	})
	recomputeTotals(p)

	return &b.Floors[number], nil
}

func UpdateFloor(p *Property, floorNumber int, floorName string) error {
	b, err := buildingOf(p)
	if err != nil {
		return err
	}

	f := floorAt(b, floorNumber)
	if f == nil {
		return &apperror.ReferentialIntegrityError{Resource: "floors", ID: fmt.Sprint(floorNumber), Reason: "floor not found"}
	}

	f.FloorName = floorName
	return nil
}

// RemoveFloor deletes a floor and renumbers the remainder contiguously
// from 0. Floors still carrying default names are renamed to match their
// new number. Rejected when any space on the floor has an active
// assignment.
func RemoveFloor(p *Property, floorNumber int, activeSpaces map[string]bool) error {
	b, err := buildingOf(p)
	if err != nil {
		return err
	}

	f := floorAt(b, floorNumber)
	if f == nil {
		return &apperror.ReferentialIntegrityError{Resource: "floors", ID: fmt.Sprint(floorNumber), Reason: "floor not found"}
	}

	for _, sp := range f.Spaces {
		if activeSpaces[sp.SpaceID] {
			return &apperror.ReferentialIntegrityError{
				Resource: "floors",
				ID:       fmt.Sprint(floorNumber),
				Reason:   fmt.Sprintf("space %s has an active rent assignment", sp.SpaceID),
			}
		}
	}

	kept := make([]Floor, 0, len(b.Floors)-1)
	for _, fl := range b.Floors {
		if fl.FloorNumber != floorNumber {
			kept = append(kept, fl)
		}
	}

	for i := range kept {
		if kept[i].FloorName == defaultFloorName(kept[i].FloorNumber) || kept[i].FloorName == "" {
			kept[i].FloorName = defaultFloorName(i)
		}
		kept[i].FloorNumber = i
	}

	b.Floors = kept
	recomputeTotals(p)
	return nil
}

// AddSpace inserts a space on a floor. Space ids are unique across the
// whole property regardless of floor.
func AddSpace(p *Property, floorNumber int, space Space) error {
	b, err := buildingOf(p)
	if err != nil {
		return err
	}

	if space.SpaceID == "" {
		return &apperror.ValidationError{Field: "spaceId", Reason: "required"}
	}
	if space.SpaceName == "" {
		return &apperror.ValidationError{Field: "spaceName", Reason: "required"}
	}

	if existing, _, ok := SpaceByID(p, space.SpaceID); ok && existing != nil {
		return &apperror.ConflictError{Resource: "spaces", ID: space.SpaceID, Reason: "space id already exists in property"}
	}

	f := floorAt(b, floorNumber)
	if f == nil {
		return &apperror.ReferentialIntegrityError{Resource: "floors", ID: fmt.Sprint(floorNumber), Reason: "floor not found"}
	}

	if space.Status == "" {
		space.Status = SpaceStatusVacant
	}

	f.Spaces = append(f.Spaces, space)
	recomputeTotals(p)
	return nil
}

func UpdateSpace(p *Property, spaceID string, patch SpacePatch) error {
	sp, _, ok := SpaceByID(p, spaceID)
	if !ok {
		return &apperror.ReferentialIntegrityError{Resource: "spaces", ID: spaceID, Reason: "space not found"}
	}

	if patch.SpaceName != nil {
		sp.SpaceName = *patch.SpaceName
	}
	if patch.SpaceType != nil {
		sp.SpaceType = *patch.SpaceType
	}
	if patch.MonthlyRent != nil {
		sp.MonthlyRent = *patch.MonthlyRent
	}
	if patch.Size != nil {
		sp.Size = *patch.Size
	}
	if patch.Status != nil {
		switch *patch.Status {
		case SpaceStatusVacant, SpaceStatusOccupied, SpaceStatusMaintenance:
			sp.Status = *patch.Status
		default:
			return &apperror.ValidationError{Field: "status", Reason: "must be vacant, occupied or maintenance"}
		}
	}

	return nil
}

func RemoveSpace(p *Property, spaceID string, activeSpaces map[string]bool) error {
	b, err := buildingOf(p)
	if err != nil {
		return err
	}

	if activeSpaces[spaceID] {
		return &apperror.ReferentialIntegrityError{Resource: "spaces", ID: spaceID, Reason: "space has an active rent assignment"}
	}

	for fi := range b.Floors {
		for si, sp := range b.Floors[fi].Spaces {
			if sp.SpaceID == spaceID {
				b.Floors[fi].Spaces = append(b.Floors[fi].Spaces[:si], b.Floors[fi].Spaces[si+1:]...)
				recomputeTotals(p)
				return nil
			}
		}
	}

	return &apperror.ReferentialIntegrityError{Resource: "spaces", ID: spaceID, Reason: "space not found"}
}

func AddSquatter(p *Property, sq Squatter) error {
	l, err := landOf(p)
	if err != nil {
		return err
	}

	if sq.SquatterID == "" {
		return &apperror.ValidationError{Field: "squatterId", Reason: "required"}
	}
	if sq.SquatterName == "" {
		return &apperror.ValidationError{Field: "squatterName", Reason: "required"}
	}

	for _, existing := range l.Squatters {
		if existing.SquatterID == sq.SquatterID {
			return &apperror.ConflictError{Resource: "squatters", ID: sq.SquatterID, Reason: "squatter id already exists in property"}
		}
	}

	if sq.Status == "" {
		sq.Status = SpaceStatusVacant
	}

	l.Squatters = append(l.Squatters, sq)
	recomputeTotals(p)
	return nil
}

func UpdateSquatter(p *Property, squatterID string, patch SquatterPatch) error {
	sq, ok := SquatterByID(p, squatterID)
	if !ok {
		return &apperror.ReferentialIntegrityError{Resource: "squatters", ID: squatterID, Reason: "squatter not found"}
	}

	if patch.SquatterName != nil {
		sq.SquatterName = *patch.SquatterName
	}
	if patch.AssignedArea != nil {
		sq.AssignedArea = *patch.AssignedArea
	}
	if patch.AreaSize != nil {
		sq.AreaSize = *patch.AreaSize
	}
	if patch.MonthlyPayment != nil {
		sq.MonthlyPayment = *patch.MonthlyPayment
	}
	if patch.AgreementDate != nil {
		sq.AgreementDate = *patch.AgreementDate
	}
	if patch.Status != nil {
		sq.Status = *patch.Status
	}

	return nil
}

func RemoveSquatter(p *Property, squatterID string, activeSpaces map[string]bool) error {
	l, err := landOf(p)
	if err != nil {
		return err
	}

	if activeSpaces[squatterID] {
		return &apperror.ReferentialIntegrityError{Resource: "squatters", ID: squatterID, Reason: "squatter area has an active rent assignment"}
	}

	for i, sq := range l.Squatters {
		if sq.SquatterID == squatterID {
			l.Squatters = append(l.Squatters[:i], l.Squatters[i+1:]...)
			recomputeTotals(p)
			return nil
		}
	}

	return &apperror.ReferentialIntegrityError{Resource: "squatters", ID: squatterID, Reason: "squatter not found"}
}

// SpaceByID searches every floor. Returns the space, its floor number and
// whether it was found.
func SpaceByID(p *Property, spaceID string) (*Space, int, bool) {
	if p.BuildingDetails == nil {
		return nil, 0, false
	}
	for fi := range p.BuildingDetails.Floors {
		f := &p.BuildingDetails.Floors[fi]
		for si := range f.Spaces {
			if f.Spaces[si].SpaceID == spaceID {
				return &f.Spaces[si], f.FloorNumber, true
			}
		}
	}
	return nil, 0, false
}

func SquatterByID(p *Property, squatterID string) (*Squatter, bool) {
	if p.LandDetails == nil {
		return nil, false
	}
	for i := range p.LandDetails.Squatters {
		if p.LandDetails.Squatters[i].SquatterID == squatterID {
			return &p.LandDetails.Squatters[i], true
		}
	}
	return nil, false
}

// TotalSpaces counts lease targets: spaces for buildings, squatter areas
// for land.
func TotalSpaces(p *Property) int {
	switch d := p.Details().(type) {
	case *BuildingDetails:
		n := 0
		for _, f := range d.Floors {
			n += len(f.Spaces)
		}
		return n
	case *LandDetails:
		return len(d.Squatters)
	}
	return 0
}

// TotalMonthlyIncome sums declared rents over current children. Always
// recomputed, never cached.
func TotalMonthlyIncome(p *Property) float64 {
	var total float64
	switch d := p.Details().(type) {
	case *BuildingDetails:
		for _, f := range d.Floors {
			for _, sp := range f.Spaces {
				total += sp.MonthlyRent
			}
		}
	case *LandDetails:
		for _, sq := range d.Squatters {
			total += sq.MonthlyPayment
		}
	}
	return total
}

func buildingOf(p *Property) (*BuildingDetails, error) {
	if p.Type != TypeBuilding || p.BuildingDetails == nil {
		return nil, &apperror.ValidationError{Field: "type", Reason: "operation requires a building property"}
	}
	return p.BuildingDetails, nil
}

func landOf(p *Property) (*LandDetails, error) {
	if p.Type != TypeLand || p.LandDetails == nil {
		return nil, &apperror.ValidationError{Field: "type", Reason: "operation requires a land property"}
	}
	return p.LandDetails, nil
}

func floorAt(b *BuildingDetails, number int) *Floor {
	for i := range b.Floors {
		if b.Floors[i].FloorNumber == number {
			return &b.Floors[i]
		}
	}
	return nil
}

func recomputeTotals(p *Property) {
	switch d := p.Details().(type) {
	case *BuildingDetails:
		d.NumberOfFloors = len(d.Floors)
		d.TotalRentableSpaces = TotalSpaces(p)
	case *LandDetails:
		d.TotalSquatters = len(d.Squatters)
	}
}

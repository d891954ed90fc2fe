package property

import (
	"errors"
	"testing"

	"go-pms/pkg/apperror"
)

func testBuilding() *Property {
	return &Property{
		Type: TypeBuilding,
		BuildingDetails: &BuildingDetails{
			BuildingType:   "commercial",
			NumberOfFloors: 2,
			Floors: []Floor{
				{
					FloorNumber: 0,
					FloorName:   "Ground Floor",
					Spaces: []Space{
						{SpaceID: "G-01", SpaceName: "Shop 1", MonthlyRent: 450000, Status: SpaceStatusVacant},
						{SpaceID: "G-02", SpaceName: "Shop 2", MonthlyRent: 500000, Status: SpaceStatusVacant},
					},
				},
				{
					FloorNumber: 1,
					FloorName:   "Floor 1",
					Spaces: []Space{
						{SpaceID: "F1-01", SpaceName: "Office 1", MonthlyRent: 650000, Status: SpaceStatusVacant},
					},
				},
			},
			TotalRentableSpaces: 3,
		},
	}
}

func testLand() *Property {
	return &Property{
		Type: TypeLand,
		LandDetails: &LandDetails{
			TotalArea: "2 acres",
			Squatters: []Squatter{
				{SquatterID: "SQ-01", SquatterName: "Mary Auma", MonthlyPayment: 150000, Status: SpaceStatusVacant},
			},
			TotalSquatters: 1,
		},
	}
}

func TestAddFloorNumbersAndNames(t *testing.T) {
	p := testBuilding()

	f, err := AddFloor(p, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FloorNumber != 2 || f.FloorName != "Floor 2" {
		t.Errorf("got floor %d %q, want 2 %q", f.FloorNumber, f.FloorName, "Floor 2")
	}
	if p.BuildingDetails.NumberOfFloors != 3 {
		t.Errorf("numberOfFloors = %d, want 3", p.BuildingDetails.NumberOfFloors)
	}

	f, err = AddFloor(p, "Penthouse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FloorNumber != 3 || f.FloorName != "Penthouse" {
		t.Errorf("custom name not kept: %d %q", f.FloorNumber, f.FloorName)
	}
}

func TestAddFloorRejectsLand(t *testing.T) {
	p := testLand()

	_, err := AddFloor(p, "")
	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestRemoveFloorRenumbers(t *testing.T) {
	p := testBuilding()
	if _, err := AddFloor(p, "Penthouse"); err != nil {
		t.Fatal(err)
	}

	if err := RemoveFloor(p, 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	floors := p.BuildingDetails.Floors
	if len(floors) != 2 {
		t.Fatalf("got %d floors, want 2", len(floors))
	}
	// Default names follow the new numbering, custom names survive
	if floors[0].FloorNumber != 0 || floors[0].FloorName != "Ground Floor" {
		t.Errorf("floor 0 = %d %q", floors[0].FloorNumber, floors[0].FloorName)
	}
	if floors[1].FloorNumber != 1 || floors[1].FloorName != "Penthouse" {
		t.Errorf("floor 1 = %d %q", floors[1].FloorNumber, floors[1].FloorName)
	}
	if p.BuildingDetails.NumberOfFloors != 2 || p.BuildingDetails.TotalRentableSpaces != 1 {
		t.Errorf("totals not recomputed: %d floors, %d spaces",
			p.BuildingDetails.NumberOfFloors, p.BuildingDetails.TotalRentableSpaces)
	}
}

func TestRemoveFloorBlockedByActiveAssignment(t *testing.T) {
	p := testBuilding()

	err := RemoveFloor(p, 0, map[string]bool{"G-02": true})
	var rerr *apperror.ReferentialIntegrityError
	if !errors.As(err, &rerr) {
		t.Fatalf("want ReferentialIntegrityError, got %v", err)
	}
	if len(p.BuildingDetails.Floors) != 2 {
		t.Error("floor was removed despite active assignment")
	}
}

func TestAddSpaceUniqueAcrossFloors(t *testing.T) {
	p := testBuilding()

	// Same id on a different floor still collides
	err := AddSpace(p, 1, Space{SpaceID: "G-01", SpaceName: "Duplicate"})
	var cerr *apperror.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConflictError, got %v", err)
	}

	if err := AddSpace(p, 1, Space{SpaceID: "F1-02", SpaceName: "Office 2", MonthlyRent: 700000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sp, floor, ok := SpaceByID(p, "F1-02")
	if !ok || floor != 1 {
		t.Fatalf("space not found on floor 1")
	}
	if sp.Status != SpaceStatusVacant {
		t.Errorf("new space status = %q, want vacant", sp.Status)
	}
	if p.BuildingDetails.TotalRentableSpaces != 4 {
		t.Errorf("totalRentableSpaces = %d, want 4", p.BuildingDetails.TotalRentableSpaces)
	}
}

func TestUpdateSpacePatch(t *testing.T) {
	p := testBuilding()

	rent := 999000.0
	status := SpaceStatusMaintenance
	if err := UpdateSpace(p, "G-01", SpacePatch{MonthlyRent: &rent, Status: &status}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sp, _, _ := SpaceByID(p, "G-01")
	if sp.MonthlyRent != rent || sp.Status != SpaceStatusMaintenance {
		t.Errorf("patch not applied: %+v", sp)
	}
	// Untouched fields stay put
	if sp.SpaceName != "Shop 1" {
		t.Errorf("spaceName changed to %q", sp.SpaceName)
	}

	bad := "condemned"
	err := UpdateSpace(p, "G-01", SpacePatch{Status: &bad})
	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for bad status, got %v", err)
	}
}

func TestRemoveSpace(t *testing.T) {
	p := testBuilding()

	err := RemoveSpace(p, "G-01", map[string]bool{"G-01": true})
	var rerr *apperror.ReferentialIntegrityError
	if !errors.As(err, &rerr) {
		t.Fatalf("want ReferentialIntegrityError, got %v", err)
	}

	if err := RemoveSpace(p, "G-01", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, ok := SpaceByID(p, "G-01"); ok {
		t.Error("space still present after removal")
	}
	if p.BuildingDetails.TotalRentableSpaces != 2 {
		t.Errorf("totalRentableSpaces = %d, want 2", p.BuildingDetails.TotalRentableSpaces)
	}
}

func TestSquatterLifecycle(t *testing.T) {
	p := testLand()

	err := AddSquatter(p, Squatter{SquatterID: "SQ-01", SquatterName: "Duplicate"})
	var cerr *apperror.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConflictError, got %v", err)
	}

	if err := AddSquatter(p, Squatter{SquatterID: "SQ-02", SquatterName: "Peter Ouma", MonthlyPayment: 200000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LandDetails.TotalSquatters != 2 {
		t.Errorf("totalSquatters = %d, want 2", p.LandDetails.TotalSquatters)
	}

	if err := RemoveSquatter(p, "SQ-01", map[string]bool{"SQ-01": true}); err == nil {
		t.Error("removal allowed despite active assignment")
	}
	if err := RemoveSquatter(p, "SQ-01", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LandDetails.TotalSquatters != 1 {
		t.Errorf("totalSquatters = %d, want 1", p.LandDetails.TotalSquatters)
	}
}

func TestTotals(t *testing.T) {
	b := testBuilding()
	if got := TotalSpaces(b); got != 3 {
		t.Errorf("TotalSpaces = %d, want 3", got)
	}
	if got := TotalMonthlyIncome(b); got != 1600000 {
		t.Errorf("TotalMonthlyIncome = %v, want 1600000", got)
	}

	l := testLand()
	if got := TotalSpaces(l); got != 1 {
		t.Errorf("land TotalSpaces = %d, want 1", got)
	}
	if got := TotalMonthlyIncome(l); got != 150000 {
		t.Errorf("land TotalMonthlyIncome = %v, want 150000", got)
	}
}

func TestEffectiveStatus(t *testing.T) {
	cases := []struct {
		declared string
		active   bool
		want     string
	}{
		{SpaceStatusVacant, true, SpaceStatusOccupied},
		{SpaceStatusMaintenance, true, SpaceStatusOccupied},
		{SpaceStatusMaintenance, false, SpaceStatusMaintenance},
		{SpaceStatusOccupied, false, SpaceStatusVacant},
		{SpaceStatusVacant, false, SpaceStatusVacant},
	}
	for _, c := range cases {
		if got := EffectiveStatus(c.declared, c.active); got != c.want {
			t.Errorf("EffectiveStatus(%q, %v) = %q, want %q", c.declared, c.active, got, c.want)
		}
	}
}

func TestMissingDetailAggregate(t *testing.T) {
	// A stored record can be corrupt: typed land with no landDetails. The
	// derived queries must degrade to zero values instead of panicking on a
	// typed-nil variant.
	land := &Property{Type: TypeLand}
	if land.Details() != nil {
		t.Error("missing landDetails produced a non-nil variant")
	}
	if got := TotalSpaces(land); got != 0 {
		t.Errorf("TotalSpaces = %d, want 0", got)
	}
	if got := TotalMonthlyIncome(land); got != 0 {
		t.Errorf("TotalMonthlyIncome = %v, want 0", got)
	}
	applyEffectiveStatuses(land, map[string]bool{"SQ-01": true})
	recomputeTotals(land)

	building := &Property{Type: TypeBuilding}
	if building.Details() != nil {
		t.Error("missing buildingDetails produced a non-nil variant")
	}
	if got := TotalSpaces(building); got != 0 {
		t.Errorf("building TotalSpaces = %d, want 0", got)
	}
	applyEffectiveStatuses(building, nil)
}

func TestValidateDetailUnion(t *testing.T) {
	p := testBuilding()
	if err := p.Validate(); err != nil {
		t.Errorf("valid building rejected: %v", err)
	}

	p.LandDetails = &LandDetails{}
	if err := p.Validate(); err == nil {
		t.Error("building with landDetails accepted")
	}

	p = testLand()
	p.LandDetails = nil
	if err := p.Validate(); err == nil {
		t.Error("land without landDetails accepted")
	}

	p = testLand()
	p.Type = "warehouse"
	if err := p.Validate(); err == nil {
		t.Error("unknown type accepted")
	}
}

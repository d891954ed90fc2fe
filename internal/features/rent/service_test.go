package rent

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-pms/internal/access"
	"go-pms/internal/common/models"
	"go-pms/internal/database"
	"go-pms/internal/features/permission"
	"go-pms/internal/features/property"
	"go-pms/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type mockRentRepo struct {
	byID      map[string]*RentAssignment
	createErr error
	updateErr error
	updates   map[string]interface{}
	statuses  map[string]string
}

func newMockRentRepo() *mockRentRepo {
	return &mockRentRepo{
		byID:     map[string]*RentAssignment{},
		statuses: map[string]string{},
	}
}

func (m *mockRentRepo) CreateActive(ctx context.Context, a *RentAssignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Status = StatusActive
	m.byID[a.ID.Hex()] = a
	return nil
}

func (m *mockRentRepo) FindByID(ctx context.Context, id string, accessFilter bson.M) (*RentAssignment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return a, nil
}

func (m *mockRentRepo) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]RentAssignment, int64, error) {
	var out []RentAssignment
	for _, a := range m.byID {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *mockRentRepo) ActiveBySpace(ctx context.Context, propertyID primitive.ObjectID, spaceID string) (*RentAssignment, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *mockRentRepo) ActiveSpaceIDs(ctx context.Context, propertyID primitive.ObjectID) (map[string]bool, error) {
	active := map[string]bool{}
	for _, a := range m.byID {
		if a.PropertyID == propertyID && a.Status == StatusActive {
			active[a.SpaceID] = true
		}
	}
	return active, nil
}

func (m *mockRentRepo) DeactivateByProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (m *mockRentRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	m.statuses[id.Hex()] = status
	if a, ok := m.byID[id.Hex()]; ok {
		a.Status = status
	}
	return nil
}

func (m *mockRentRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = updates
	return nil
}

func (m *mockRentRepo) ExpiredActive(ctx context.Context, asOf time.Time) ([]RentAssignment, error) {
	return nil, nil
}

func (m *mockRentRepo) DueOn(ctx context.Context, day int, lastDayOfMonth bool) ([]RentAssignment, error) {
	return nil, nil
}

func (m *mockRentRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockPropertyRepo struct {
	props         map[string]*property.Property
	statusChanges map[string]string
}

func newMockPropertyRepo(props ...*property.Property) *mockPropertyRepo {
	m := &mockPropertyRepo{
		props:         map[string]*property.Property{},
		statusChanges: map[string]string{},
	}
	for _, p := range props {
		m.props[p.ID.Hex()] = p
	}
	return m
}

func (m *mockPropertyRepo) Create(ctx context.Context, p *property.Property) error { return nil }

func (m *mockPropertyRepo) FindByID(ctx context.Context, id string, accessFilter bson.M) (*property.Property, error) {
	p, ok := m.props[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (m *mockPropertyRepo) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]property.Property, int64, error) {
	return nil, 0, nil
}

func (m *mockPropertyRepo) Replace(ctx context.Context, p *property.Property) error { return nil }

func (m *mockPropertyRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *mockPropertyRepo) UpdateSpaceStatus(ctx context.Context, propertyID primitive.ObjectID, spaceID, status string) error {
	m.statusChanges[spaceID] = status
	return nil
}

func (m *mockPropertyRepo) AddManager(ctx context.Context, propertyID, userID primitive.ObjectID) error {
	return nil
}

func (m *mockPropertyRepo) RemoveManager(ctx context.Context, propertyID, userID primitive.ObjectID) error {
	return nil
}

func (m *mockPropertyRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockAudit struct {
	actions []models.AuditAction
}

func (m *mockAudit) LogChange(ctx context.Context, actx *models.AccessContext, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *mockAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

type mockNotifier struct {
	titles []string
}

func (m *mockNotifier) Notify(ctx context.Context, userID, title, message, level string) error {
	m.titles = append(m.titles, title)
	return nil
}

func leasedProperty(orgID primitive.ObjectID) *property.Property {
	return &property.Property{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Type:           property.TypeBuilding,
		BuildingDetails: &property.BuildingDetails{
			Floors: []property.Floor{
				{
					FloorNumber: 0,
					FloorName:   "Ground Floor",
					Spaces: []property.Space{
						{SpaceID: "G-01", SpaceName: "Shop 1", MonthlyRent: 450000, Status: property.SpaceStatusVacant},
						{SpaceID: "G-02", SpaceName: "Shop 2", MonthlyRent: 500000, Status: property.SpaceStatusVacant},
					},
				},
			},
		},
	}
}

func newTestService(rentRepo *mockRentRepo, propRepo *mockPropertyRepo) (*RentServiceImpl, *mockNotifier, *mockAudit) {
	auditSvc := &mockAudit{}
	notifier := &mockNotifier{}
	gateway := access.NewGateway(permission.NewResolver(permission.NewRegistry()), auditSvc, zap.NewNop())
	svc := &RentServiceImpl{
		Repo:         rentRepo,
		Properties:   propRepo,
		Gateway:      gateway,
		AuditService: auditSvc,
		Notifier:     notifier,
		DB:           &database.MongodbDB{},
		Logger:       zap.NewNop(),
	}
	return svc, notifier, auditSvc
}

func orgAdmin(orgID primitive.ObjectID) *models.AccessContext {
	return &models.AccessContext{
		UserID:         primitive.NewObjectID(),
		RoleID:         permission.RoleOrgAdmin,
		OrganizationID: orgID,
	}
}

func TestAssignDefaultsFromSpace(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	propRepo := newMockPropertyRepo(prop)
	svc, notifier, _ := newTestService(rentRepo, propRepo)

	got, err := svc.Assign(context.Background(), orgAdmin(orgID), AssignRequest{
		PropertyID:          prop.ID.Hex(),
		SpaceID:             "G-01",
		TenantName:          "Alice Nakato",
		TenantPhone:         "+256700000002",
		LeaseStart:          date(2024, time.March, 15),
		LeaseDurationMonths: 6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.MonthlyRent != 450000 || got.BaseRent != 450000 {
		t.Errorf("rent not defaulted from space: %v / %v", got.MonthlyRent, got.BaseRent)
	}
	if got.SpaceName != "Shop 1" {
		t.Errorf("spaceName = %q", got.SpaceName)
	}
	if got.OrganizationID != orgID {
		t.Error("organizationId not copied from property")
	}
	if got.Status != StatusActive {
		t.Errorf("status = %q, want active", got.Status)
	}
	if got.PeriodType != PeriodMonthly {
		t.Errorf("periodType = %q, want monthly default", got.PeriodType)
	}
	if got.LeaseEnd == nil || !got.LeaseEnd.Equal(date(2024, time.September, 15)) {
		t.Errorf("leaseEnd = %v", got.LeaseEnd)
	}
	if got.PaymentDueDate != 15 {
		t.Errorf("paymentDueDate = %d, want lease start day 15", got.PaymentDueDate)
	}
	if propRepo.statusChanges["G-01"] != property.SpaceStatusOccupied {
		t.Error("space not marked occupied")
	}
	if len(notifier.titles) != 1 {
		t.Errorf("notifier called %d times", len(notifier.titles))
	}
}

func TestAssignValidation(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	svc, _, _ := newTestService(newMockRentRepo(), newMockPropertyRepo(prop))
	actx := orgAdmin(orgID)

	cases := []struct {
		name string
		req  AssignRequest
	}{
		{"missing tenant", AssignRequest{PropertyID: prop.ID.Hex(), SpaceID: "G-01", TenantPhone: "x", LeaseStart: date(2024, time.March, 1), LeaseDurationMonths: 6}},
		{"missing phone", AssignRequest{PropertyID: prop.ID.Hex(), SpaceID: "G-01", TenantName: "x", LeaseStart: date(2024, time.March, 1), LeaseDurationMonths: 6}},
		{"missing start", AssignRequest{PropertyID: prop.ID.Hex(), SpaceID: "G-01", TenantName: "x", TenantPhone: "x", LeaseDurationMonths: 6}},
		{"zero duration", AssignRequest{PropertyID: prop.ID.Hex(), SpaceID: "G-01", TenantName: "x", TenantPhone: "x", LeaseStart: date(2024, time.March, 1)}},
		{"due date out of range", AssignRequest{PropertyID: prop.ID.Hex(), SpaceID: "G-01", TenantName: "x", TenantPhone: "x", LeaseStart: date(2024, time.March, 1), LeaseDurationMonths: 6, PaymentDueDate: 32}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Assign(context.Background(), actx, c.req)
			var verr *apperror.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("want ValidationError, got %v", err)
			}
		})
	}
}

func TestAssignCustomPeriodNeedsEnd(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	svc, _, _ := newTestService(newMockRentRepo(), newMockPropertyRepo(prop))

	req := AssignRequest{
		PropertyID:  prop.ID.Hex(),
		SpaceID:     "G-01",
		TenantName:  "Alice",
		TenantPhone: "x",
		PeriodType:  PeriodCustom,
		LeaseStart:  date(2024, time.March, 1),
	}
	if _, err := svc.Assign(context.Background(), orgAdmin(orgID), req); err == nil {
		t.Error("custom period without leaseEnd accepted")
	}

	end := date(2024, time.February, 1)
	req.LeaseEnd = &end
	if _, err := svc.Assign(context.Background(), orgAdmin(orgID), req); err == nil {
		t.Error("leaseEnd before leaseStart accepted")
	}
}

func TestAssignConflictPassthrough(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	rentRepo.createErr = &apperror.ConflictError{Resource: "rent", ID: "G-01", Reason: "space already has an active assignment"}
	svc, _, _ := newTestService(rentRepo, newMockPropertyRepo(prop))

	_, err := svc.Assign(context.Background(), orgAdmin(orgID), AssignRequest{
		PropertyID:          prop.ID.Hex(),
		SpaceID:             "G-01",
		TenantName:          "Bob",
		TenantPhone:         "x",
		LeaseStart:          date(2024, time.March, 1),
		LeaseDurationMonths: 6,
	})

	var conflict *apperror.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
	var transient *apperror.TransientStoreError
	if errors.As(err, &transient) {
		t.Error("conflict wrapped as transient store error")
	}
}

func TestAssignOutsideOrganizationDenied(t *testing.T) {
	prop := leasedProperty(primitive.NewObjectID())
	svc, _, _ := newTestService(newMockRentRepo(), newMockPropertyRepo(prop))

	// Caller belongs to a different organization than the property
	_, err := svc.Assign(context.Background(), orgAdmin(primitive.NewObjectID()), AssignRequest{
		PropertyID:          prop.ID.Hex(),
		SpaceID:             "G-01",
		TenantName:          "Eve",
		TenantPhone:         "x",
		LeaseStart:          date(2024, time.March, 1),
		LeaseDurationMonths: 6,
	})

	var authErr *apperror.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthorizationError, got %v", err)
	}
}

func TestTerminateRevertsSpace(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	propRepo := newMockPropertyRepo(prop)
	svc, notifier, _ := newTestService(rentRepo, propRepo)

	assignment := &RentAssignment{
		ID:             primitive.NewObjectID(),
		PropertyID:     prop.ID,
		SpaceID:        "G-01",
		SpaceName:      "Shop 1",
		OrganizationID: orgID,
		TenantName:     "Alice",
		Status:         StatusActive,
	}
	rentRepo.byID[assignment.ID.Hex()] = assignment

	if err := svc.Terminate(context.Background(), orgAdmin(orgID), assignment.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rentRepo.statuses[assignment.ID.Hex()] != StatusInactive {
		t.Error("assignment not set inactive")
	}
	if propRepo.statusChanges["G-01"] != property.SpaceStatusVacant {
		t.Errorf("space status = %q, want vacant", propRepo.statusChanges["G-01"])
	}
	if len(notifier.titles) != 1 {
		t.Error("notifier not called")
	}

	// Second terminate fails: no longer active
	err := svc.Terminate(context.Background(), orgAdmin(orgID), assignment.ID.Hex())
	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("want ValidationError, got %v", err)
	}
}

func TestTerminateKeepsMaintenance(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	prop.BuildingDetails.Floors[0].Spaces[0].Status = property.SpaceStatusMaintenance
	rentRepo := newMockRentRepo()
	propRepo := newMockPropertyRepo(prop)
	svc, _, _ := newTestService(rentRepo, propRepo)

	assignment := &RentAssignment{
		ID:             primitive.NewObjectID(),
		PropertyID:     prop.ID,
		SpaceID:        "G-01",
		OrganizationID: orgID,
		Status:         StatusActive,
	}
	rentRepo.byID[assignment.ID.Hex()] = assignment

	if err := svc.Terminate(context.Background(), orgAdmin(orgID), assignment.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if propRepo.statusChanges["G-01"] != property.SpaceStatusMaintenance {
		t.Errorf("maintenance override lost: %q", propRepo.statusChanges["G-01"])
	}
}

func TestEditMoveConflict(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	rentRepo.updateErr = mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	propRepo := newMockPropertyRepo(prop)
	svc, _, _ := newTestService(rentRepo, propRepo)

	assignment := &RentAssignment{
		ID:             primitive.NewObjectID(),
		PropertyID:     prop.ID,
		SpaceID:        "G-01",
		OrganizationID: orgID,
		PeriodType:     PeriodMonthly,
		LeaseStart:     date(2024, time.March, 1),
		Status:         StatusActive,
	}
	rentRepo.byID[assignment.ID.Hex()] = assignment

	target := "G-02"
	_, err := svc.Edit(context.Background(), orgAdmin(orgID), assignment.ID.Hex(), EditRequest{SpaceID: &target})

	var conflict *apperror.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError on occupied target, got %v", err)
	}
}

func TestEditInactiveMoveRejected(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	propRepo := newMockPropertyRepo(prop)
	svc, _, _ := newTestService(rentRepo, propRepo)

	assignment := &RentAssignment{
		ID:             primitive.NewObjectID(),
		PropertyID:     prop.ID,
		SpaceID:        "G-01",
		OrganizationID: orgID,
		PeriodType:     PeriodMonthly,
		LeaseStart:     date(2024, time.March, 1),
		Status:         StatusInactive,
	}
	rentRepo.byID[assignment.ID.Hex()] = assignment

	target := "G-02"
	_, err := svc.Edit(context.Background(), orgAdmin(orgID), assignment.ID.Hex(), EditRequest{SpaceID: &target})

	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for moving a historical lease, got %v", err)
	}
	if propRepo.statusChanges["G-02"] != "" {
		t.Errorf("target space touched by rejected move: %q", propRepo.statusChanges["G-02"])
	}

	// Non-move patches on a historical lease still go through
	name := "Alice Updated"
	if _, err := svc.Edit(context.Background(), orgAdmin(orgID), assignment.ID.Hex(), EditRequest{TenantName: &name}); err != nil {
		t.Errorf("tenant patch on historical lease rejected: %v", err)
	}
}

func TestEditEmptyPhoneRejected(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	svc, _, _ := newTestService(rentRepo, newMockPropertyRepo(prop))

	assignment := &RentAssignment{
		ID:             primitive.NewObjectID(),
		PropertyID:     prop.ID,
		SpaceID:        "G-01",
		OrganizationID: orgID,
		TenantPhone:    "+256700000002",
		PeriodType:     PeriodMonthly,
		LeaseStart:     date(2024, time.March, 1),
		Status:         StatusActive,
	}
	rentRepo.byID[assignment.ID.Hex()] = assignment

	empty := ""
	_, err := svc.Edit(context.Background(), orgAdmin(orgID), assignment.ID.Hex(), EditRequest{TenantPhone: &empty})

	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for empty phone, got %v", err)
	}
}

func TestEditMoveRedefaultsRent(t *testing.T) {
	orgID := primitive.NewObjectID()
	prop := leasedProperty(orgID)
	rentRepo := newMockRentRepo()
	propRepo := newMockPropertyRepo(prop)
	svc, _, _ := newTestService(rentRepo, propRepo)

	assignment := &RentAssignment{
		ID:             primitive.NewObjectID(),
		PropertyID:     prop.ID,
		SpaceID:        "G-01",
		OrganizationID: orgID,
		MonthlyRent:    450000,
		PeriodType:     PeriodMonthly,
		LeaseStart:     date(2024, time.March, 1),
		Status:         StatusActive,
	}
	rentRepo.byID[assignment.ID.Hex()] = assignment

	target := "G-02"
	if _, err := svc.Edit(context.Background(), orgAdmin(orgID), assignment.ID.Hex(), EditRequest{SpaceID: &target}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rentRepo.updates["spaceId"] != "G-02" || rentRepo.updates["spaceName"] != "Shop 2" {
		t.Errorf("move fields not set: %v", rentRepo.updates)
	}
	if rentRepo.updates["monthlyRent"] != 500000.0 {
		t.Errorf("monthlyRent = %v, want target space rent", rentRepo.updates["monthlyRent"])
	}
	if propRepo.statusChanges["G-02"] != property.SpaceStatusOccupied {
		t.Error("target space not marked occupied")
	}
	if propRepo.statusChanges["G-01"] != property.SpaceStatusVacant {
		t.Error("old space not reverted")
	}
}

package cron_feature

import (
	"context"
	"testing"
	"time"

	"go-pms/internal/common/models"
	"go-pms/internal/features/property"
	"go-pms/internal/features/rent"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type sweeperRentRepo struct {
	expired  []rent.RentAssignment
	due      []rent.RentAssignment
	statuses map[string]string
	lastDay  bool
}

func (m *sweeperRentRepo) CreateActive(ctx context.Context, a *rent.RentAssignment) error {
	return nil
}

func (m *sweeperRentRepo) FindByID(ctx context.Context, id string, accessFilter bson.M) (*rent.RentAssignment, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *sweeperRentRepo) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]rent.RentAssignment, int64, error) {
	return nil, 0, nil
}

func (m *sweeperRentRepo) ActiveBySpace(ctx context.Context, propertyID primitive.ObjectID, spaceID string) (*rent.RentAssignment, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *sweeperRentRepo) ActiveSpaceIDs(ctx context.Context, propertyID primitive.ObjectID) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (m *sweeperRentRepo) DeactivateByProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (m *sweeperRentRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if m.statuses == nil {
		m.statuses = map[string]string{}
	}
	m.statuses[id.Hex()] = status
	return nil
}

func (m *sweeperRentRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *sweeperRentRepo) ExpiredActive(ctx context.Context, asOf time.Time) ([]rent.RentAssignment, error) {
	return m.expired, nil
}

func (m *sweeperRentRepo) DueOn(ctx context.Context, day int, lastDayOfMonth bool) ([]rent.RentAssignment, error) {
	m.lastDay = lastDayOfMonth
	return m.due, nil
}

func (m *sweeperRentRepo) EnsureIndexes(ctx context.Context) error { return nil }

type sweeperPropertyRepo struct {
	props         map[string]*property.Property
	statusChanges map[string]string
}

func (m *sweeperPropertyRepo) Create(ctx context.Context, p *property.Property) error { return nil }

func (m *sweeperPropertyRepo) FindByID(ctx context.Context, id string, accessFilter bson.M) (*property.Property, error) {
	p, ok := m.props[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (m *sweeperPropertyRepo) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]property.Property, int64, error) {
	return nil, 0, nil
}

func (m *sweeperPropertyRepo) Replace(ctx context.Context, p *property.Property) error { return nil }

func (m *sweeperPropertyRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *sweeperPropertyRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *sweeperPropertyRepo) UpdateSpaceStatus(ctx context.Context, propertyID primitive.ObjectID, spaceID, status string) error {
	if m.statusChanges == nil {
		m.statusChanges = map[string]string{}
	}
	m.statusChanges[spaceID] = status
	return nil
}

func (m *sweeperPropertyRepo) AddManager(ctx context.Context, propertyID, userID primitive.ObjectID) error {
	return nil
}

func (m *sweeperPropertyRepo) RemoveManager(ctx context.Context, propertyID, userID primitive.ObjectID) error {
	return nil
}

func (m *sweeperPropertyRepo) EnsureIndexes(ctx context.Context) error { return nil }

type sweeperAudit struct {
	actions []models.AuditAction
}

func (m *sweeperAudit) LogChange(ctx context.Context, actx *models.AccessContext, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *sweeperAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

type sweeperNotifier struct {
	userIDs []string
}

func (m *sweeperNotifier) Notify(ctx context.Context, userID, title, message, level string) error {
	m.userIDs = append(m.userIDs, userID)
	return nil
}

func sweptProperty() *property.Property {
	return &property.Property{
		ID:               primitive.NewObjectID(),
		Type:             property.TypeBuilding,
		AssignedManagers: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
		BuildingDetails: &property.BuildingDetails{
			Floors: []property.Floor{
				{
					FloorNumber: 0,
					Spaces: []property.Space{
						{SpaceID: "G-01", SpaceName: "Shop 1", Status: property.SpaceStatusOccupied},
					},
				},
			},
		},
	}
}

func TestRunOnceExpiresLeases(t *testing.T) {
	prop := sweptProperty()
	assignment := rent.RentAssignment{
		ID:         primitive.NewObjectID(),
		PropertyID: prop.ID,
		SpaceID:    "G-01",
		Status:     rent.StatusActive,
	}

	rents := &sweeperRentRepo{expired: []rent.RentAssignment{assignment}}
	props := &sweeperPropertyRepo{props: map[string]*property.Property{prop.ID.Hex(): prop}}
	auditSvc := &sweeperAudit{}
	svc := &SweeperServiceImpl{
		Rents:        rents,
		Properties:   props,
		AuditService: auditSvc,
		Notifier:     &sweeperNotifier{},
		Logger:       zap.NewNop(),
	}

	count, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expired %d, want 1", count)
	}
	if rents.statuses[assignment.ID.Hex()] != rent.StatusInactive {
		t.Error("assignment not deactivated")
	}
	if props.statusChanges["G-01"] != property.SpaceStatusVacant {
		t.Errorf("space status = %q, want vacant", props.statusChanges["G-01"])
	}
	if len(auditSvc.actions) != 1 || auditSvc.actions[0] != models.AuditActionCron {
		t.Errorf("sweep not audited: %v", auditSvc.actions)
	}
}

func TestNotifyDuePayments(t *testing.T) {
	prop := sweptProperty()
	rents := &sweeperRentRepo{due: []rent.RentAssignment{{
		ID:          primitive.NewObjectID(),
		PropertyID:  prop.ID,
		SpaceID:     "G-01",
		SpaceName:   "Shop 1",
		TenantName:  "Alice",
		MonthlyRent: 450000,
		Status:      rent.StatusActive,
	}}}
	props := &sweeperPropertyRepo{props: map[string]*property.Property{prop.ID.Hex(): prop}}
	notifier := &sweeperNotifier{}
	svc := &SweeperServiceImpl{
		Rents:        rents,
		Properties:   props,
		AuditService: &sweeperAudit{},
		Notifier:     notifier,
		Logger:       zap.NewNop(),
	}

	// One reminder per assigned manager
	count, err := svc.NotifyDuePayments(context.Background(), time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 || len(notifier.userIDs) != 2 {
		t.Errorf("notified %d managers, want 2", count)
	}
	if rents.lastDay {
		t.Error("mid-month sweep flagged as last day")
	}

	// Feb 29 is the month's last day, so overflowing due dates are included
	if _, err := svc.NotifyDuePayments(context.Background(), time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rents.lastDay {
		t.Error("last day of month not detected")
	}
}

package access

import (
	"context"
	"errors"
	"testing"

	"go-pms/internal/common/models"
	"go-pms/internal/features/permission"
	"go-pms/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type auditRecorder struct {
	actions []models.AuditAction
	modules []string
}

func (a *auditRecorder) LogChange(ctx context.Context, actx *models.AccessContext, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	a.actions = append(a.actions, action)
	a.modules = append(a.modules, module)
	return nil
}

func (a *auditRecorder) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

func newTestGateway() (*Gateway, *auditRecorder) {
	recorder := &auditRecorder{}
	resolver := permission.NewResolver(permission.NewRegistry())
	return NewGateway(resolver, recorder, zap.NewNop()), recorder
}

func superAdminCtx() *models.AccessContext {
	return &models.AccessContext{
		UserID: primitive.NewObjectID(),
		RoleID: permission.RoleSuperAdmin,
	}
}

func orgAdminCtx(orgID primitive.ObjectID) *models.AccessContext {
	return &models.AccessContext{
		UserID:         primitive.NewObjectID(),
		RoleID:         permission.RoleOrgAdmin,
		OrganizationID: orgID,
	}
}

func managerCtx(orgID primitive.ObjectID, assigned ...primitive.ObjectID) *models.AccessContext {
	return &models.AccessContext{
		UserID:              primitive.NewObjectID(),
		RoleID:              permission.RolePropertyManager,
		OrganizationID:      orgID,
		AssignedPropertyIDs: assigned,
	}
}

func TestReadFilterAllScope(t *testing.T) {
	g, _ := newTestGateway()

	filter, err := g.ReadFilter(context.Background(), superAdminCtx(), ResourceProperties)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filter) != 0 {
		t.Errorf("all scope should compile to an empty predicate, got %v", filter)
	}
}

func TestReadFilterOrganizationScope(t *testing.T) {
	g, _ := newTestGateway()
	orgID := primitive.NewObjectID()

	filter, err := g.ReadFilter(context.Background(), orgAdminCtx(orgID), ResourceRent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := filter["organizationId"]; got != orgID {
		t.Errorf("organizationId filter = %v, want %v", got, orgID)
	}
}

func TestReadFilterAssignedScope(t *testing.T) {
	g, _ := newTestGateway()
	orgID := primitive.NewObjectID()
	propID := primitive.NewObjectID()
	actx := managerCtx(orgID, propID)

	// Properties filter on manager membership
	filter, err := g.ReadFilter(context.Background(), actx, ResourceProperties)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := filter["assignedManagers"]; got != actx.UserID {
		t.Errorf("assignedManagers filter = %v, want %v", got, actx.UserID)
	}

	// Rent and payments filter through the materialized property set
	filter, err = g.ReadFilter(context.Background(), actx, ResourcePayments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in, ok := filter["propertyId"].(bson.M)
	if !ok {
		t.Fatalf("propertyId filter missing: %v", filter)
	}
	ids, ok := in["$in"].([]primitive.ObjectID)
	if !ok || len(ids) != 1 || ids[0] != propID {
		t.Errorf("$in list = %v, want [%v]", in["$in"], propID)
	}
}

func TestReadFilterAssignedScopeEmptySet(t *testing.T) {
	g, _ := newTestGateway()
	actx := managerCtx(primitive.NewObjectID())

	// A manager with no assignments matches nothing rather than everything
	filter, err := g.ReadFilter(context.Background(), actx, ResourceRent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := filter["propertyId"].(bson.M)
	if ids := in["$in"].([]primitive.ObjectID); len(ids) != 0 {
		t.Errorf("empty assignment set produced non-empty $in: %v", ids)
	}
}

func TestReadFilterNoneScopeDenies(t *testing.T) {
	g, recorder := newTestGateway()

	actx := &models.AccessContext{UserID: primitive.NewObjectID(), RoleID: "intruder"}
	filter, err := g.ReadFilter(context.Background(), actx, ResourceProperties)
	if filter != nil {
		t.Errorf("denied read returned a filter: %v", filter)
	}

	var authErr *apperror.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthorizationError, got %v", err)
	}
	if len(recorder.actions) != 1 || recorder.actions[0] != models.AuditActionAccessDenied {
		t.Errorf("denial was not audited: %v", recorder.actions)
	}
}

func TestWriteScopeDeniedForReadOnlyRole(t *testing.T) {
	g, recorder := newTestGateway()
	actx := &models.AccessContext{
		UserID:         primitive.NewObjectID(),
		RoleID:         permission.RoleFinancialViewer,
		OrganizationID: primitive.NewObjectID(),
	}

	if _, err := g.WriteScope(context.Background(), actx, ResourcePayments, "create"); err == nil {
		t.Fatal("financial_viewer allowed to create payments")
	}
	if len(recorder.actions) != 1 {
		t.Error("denial was not audited")
	}

	// Reads still pass
	if _, err := g.ReadFilter(context.Background(), actx, ResourcePayments); err != nil {
		t.Errorf("financial_viewer read denied: %v", err)
	}
}

func TestVerifyOwnershipOrganizationScope(t *testing.T) {
	g, _ := newTestGateway()
	orgID := primitive.NewObjectID()
	actx := orgAdminCtx(orgID)

	own := Ownership{OrganizationID: orgID}
	if err := g.VerifyOwnership(context.Background(), actx, ResourceRent, "write", permission.ScopeOrganization, own); err != nil {
		t.Errorf("in-org write rejected: %v", err)
	}

	// Payload pointing at a foreign organization is rejected after the fact
	own = Ownership{OrganizationID: primitive.NewObjectID()}
	if err := g.VerifyOwnership(context.Background(), actx, ResourceRent, "write", permission.ScopeOrganization, own); err == nil {
		t.Error("cross-org write slipped through")
	}
}

func TestVerifyOwnershipAssignedScope(t *testing.T) {
	g, _ := newTestGateway()
	orgID := primitive.NewObjectID()
	propID := primitive.NewObjectID()
	actx := managerCtx(orgID, propID)

	// Property records check manager membership
	own := Ownership{OrganizationID: orgID, AssignedManagers: []primitive.ObjectID{actx.UserID}}
	if err := g.VerifyOwnership(context.Background(), actx, ResourceProperties, "write", permission.ScopeAssigned, own); err != nil {
		t.Errorf("assigned property write rejected: %v", err)
	}

	own = Ownership{OrganizationID: orgID, AssignedManagers: []primitive.ObjectID{primitive.NewObjectID()}}
	if err := g.VerifyOwnership(context.Background(), actx, ResourceProperties, "write", permission.ScopeAssigned, own); err == nil {
		t.Error("unassigned property write slipped through")
	}

	// Rent records check the property membership set
	own = Ownership{OrganizationID: orgID, PropertyID: propID}
	if err := g.VerifyOwnership(context.Background(), actx, ResourceRent, "write", permission.ScopeAssigned, own); err != nil {
		t.Errorf("assigned rent write rejected: %v", err)
	}

	own = Ownership{OrganizationID: orgID, PropertyID: primitive.NewObjectID()}
	if err := g.VerifyOwnership(context.Background(), actx, ResourceRent, "write", permission.ScopeAssigned, own); err == nil {
		t.Error("rent write outside assignment slipped through")
	}
}

func TestVerifyOwnershipAllScope(t *testing.T) {
	g, _ := newTestGateway()

	own := Ownership{OrganizationID: primitive.NewObjectID()}
	if err := g.VerifyOwnership(context.Background(), superAdminCtx(), ResourceRent, "write", permission.ScopeAll, own); err != nil {
		t.Errorf("all scope rejected: %v", err)
	}
}

package property

import (
	"context"

	"go-pms/internal/access"
	"go-pms/internal/common/models"
	"go-pms/internal/database"
	"go-pms/internal/features/audit"
	"go-pms/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AssignmentChecker is the rent feature's view into this one, kept as a
// small interface so the dependency only points one way.
type AssignmentChecker interface {
	// ActiveSpaceIDs returns the set of space/squatter ids on the property
	// that currently hold an active rent assignment.
	ActiveSpaceIDs(ctx context.Context, propertyID primitive.ObjectID) (map[string]bool, error)
	// DeactivateByProperty marks every active assignment on the property
	// terminated and returns how many were touched.
	DeactivateByProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error)
}

// ManagerRef is the slice of a user account the property feature needs.
type ManagerRef struct {
	ID             primitive.ObjectID
	OrganizationID primitive.ObjectID
	RoleID         string
}

// ManagerDirectory keeps user.assigned_property_ids in step with
// property.assignedManagers. Both sides are stored so assigned-scope
// filters on rent and payment records need no join at query time.
type ManagerDirectory interface {
	Manager(ctx context.Context, userID string) (*ManagerRef, error)
	AddAssignedProperty(ctx context.Context, userID, propertyID primitive.ObjectID) error
	RemoveAssignedProperty(ctx context.Context, userID, propertyID primitive.ObjectID) error
}

type PropertyService interface {
	CreateProperty(ctx context.Context, actx *models.AccessContext, property *Property) (*Property, error)
	GetProperty(ctx context.Context, actx *models.AccessContext, id string) (*Property, error)
	ListProperties(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]Property, int64, error)
	UpdateProperty(ctx context.Context, actx *models.AccessContext, id string, updates map[string]interface{}) (*Property, error)
	DeleteProperty(ctx context.Context, actx *models.AccessContext, id string) error

	AddFloor(ctx context.Context, actx *models.AccessContext, propertyID, floorName string) (*Property, error)
	UpdateFloor(ctx context.Context, actx *models.AccessContext, propertyID string, floorNumber int, floorName string) (*Property, error)
	RemoveFloor(ctx context.Context, actx *models.AccessContext, propertyID string, floorNumber int) (*Property, error)
	AddSpace(ctx context.Context, actx *models.AccessContext, propertyID string, floorNumber int, space Space) (*Property, error)
	UpdateSpace(ctx context.Context, actx *models.AccessContext, propertyID, spaceID string, patch SpacePatch) (*Property, error)
	RemoveSpace(ctx context.Context, actx *models.AccessContext, propertyID, spaceID string) (*Property, error)
	AddSquatter(ctx context.Context, actx *models.AccessContext, propertyID string, squatter Squatter) (*Property, error)
	UpdateSquatter(ctx context.Context, actx *models.AccessContext, propertyID, squatterID string, patch SquatterPatch) (*Property, error)
	RemoveSquatter(ctx context.Context, actx *models.AccessContext, propertyID, squatterID string) (*Property, error)

	AssignManager(ctx context.Context, actx *models.AccessContext, propertyID, userID string) error
	UnassignManager(ctx context.Context, actx *models.AccessContext, propertyID, userID string) error
}

type PropertyServiceImpl struct {
	Repo         PropertyRepository
	Gateway      *access.Gateway
	Assignments  AssignmentChecker
	Managers     ManagerDirectory
	AuditService audit.AuditService
	DB           *database.MongodbDB
	Logger       *zap.Logger
}

func NewPropertyService(
	repo PropertyRepository,
	gateway *access.Gateway,
	assignments AssignmentChecker,
	managers ManagerDirectory,
	auditService audit.AuditService,
	db *database.MongodbDB,
	logger *zap.Logger,
) PropertyService {
	return &PropertyServiceImpl{
		Repo:         repo,
		Gateway:      gateway,
		Assignments:  assignments,
		Managers:     managers,
		AuditService: auditService,
		DB:           db,
		Logger:       logger,
	}
}

func (s *PropertyServiceImpl) CreateProperty(ctx context.Context, actx *models.AccessContext, property *Property) (*Property, error) {
	scope, err := s.Gateway.WriteScope(ctx, actx, access.ResourceProperties, "create")
	if err != nil {
		return nil, err
	}

	// Non super admins always create inside their own organization
	if property.OrganizationID.IsZero() {
		property.OrganizationID = actx.OrganizationID
	}

	if err := property.Validate(); err != nil {
		return nil, err
	}
	if property.Status == "" {
		property.Status = "active"
	}
	if property.AssignedManagers == nil {
		property.AssignedManagers = []primitive.ObjectID{}
	}
	recomputeTotals(property)

	if err := s.Gateway.VerifyOwnership(ctx, actx, access.ResourceProperties, "create", scope, access.Ownership{
		OrganizationID:   property.OrganizationID,
		AssignedManagers: property.AssignedManagers,
	}); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, property); err != nil {
		return nil, &apperror.TransientStoreError{Op: "properties.create", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionCreate, "properties", property.ID.Hex(), map[string]models.Change{
		"type": {New: property.Type},
	})

	return property, nil
}

// GetProperty returns the aggregate with effective statuses in place of the
// stored advisory ones.
func (s *PropertyServiceImpl) GetProperty(ctx context.Context, actx *models.AccessContext, id string) (*Property, error) {
	property, err := s.scopedFetch(ctx, actx, id, "read")
	if err != nil {
		return nil, err
	}

	active, err := s.Assignments.ActiveSpaceIDs(ctx, property.ID)
	if err != nil {
		return nil, &apperror.TransientStoreError{Op: "rent.active_spaces", Err: err}
	}
	applyEffectiveStatuses(property, active)

	return property, nil
}

func (s *PropertyServiceImpl) ListProperties(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]Property, int64, error) {
	filter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceProperties)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	properties, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, &apperror.TransientStoreError{Op: "properties.list", Err: err}
	}

	for i := range properties {
		active, err := s.Assignments.ActiveSpaceIDs(ctx, properties[i].ID)
		if err != nil {
			return nil, 0, &apperror.TransientStoreError{Op: "rent.active_spaces", Err: err}
		}
		applyEffectiveStatuses(&properties[i], active)
	}

	return properties, total, nil
}

// UpdateProperty edits top level fields only. Structural changes to floors,
// spaces and squatters go through the dedicated operations so the
// referential checks cannot be bypassed.
func (s *PropertyServiceImpl) UpdateProperty(ctx context.Context, actx *models.AccessContext, id string, updates map[string]interface{}) (*Property, error) {
	allowed := map[string]bool{"location": true, "caretaker": true, "status": true}
	for k := range updates {
		if !allowed[k] {
			return nil, &apperror.ValidationError{Field: k, Reason: "field is not editable through this operation"}
		}
	}

	property, err := s.guardedFetch(ctx, actx, id, "write")
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, &apperror.TransientStoreError{Op: "properties.update", Err: err}
	}

	changes := map[string]models.Change{}
	for k, v := range updates {
		changes[k] = models.Change{New: v}
	}
	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "properties", property.ID.Hex(), changes)

	return s.scopedFetch(ctx, actx, id, "read")
}

// DeleteProperty removes the aggregate and terminates every active
// assignment on it in the same transaction, so no assignment can survive
// pointing at a property that no longer exists.
func (s *PropertyServiceImpl) DeleteProperty(ctx context.Context, actx *models.AccessContext, id string) error {
	property, err := s.guardedFetch(ctx, actx, id, "delete")
	if err != nil {
		return err
	}

	var terminated int64
	err = s.DB.WithTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.Assignments.DeactivateByProperty(txCtx, property.ID)
		if err != nil {
			return err
		}
		terminated = n
		return s.Repo.Delete(txCtx, id)
	})
	if err != nil {
		return &apperror.TransientStoreError{Op: "properties.delete", Err: err}
	}

	s.Logger.Info("property deleted",
		zap.String("property_id", id),
		zap.Int64("assignments_terminated", terminated),
	)
	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionDelete, "properties", id, map[string]models.Change{
		"assignments_terminated": {New: terminated},
	})

	return nil
}

func (s *PropertyServiceImpl) AddFloor(ctx context.Context, actx *models.AccessContext, propertyID, floorName string) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "floor_added", func(p *Property, _ map[string]bool) error {
		_, err := AddFloor(p, floorName)
		return err
	})
}

func (s *PropertyServiceImpl) UpdateFloor(ctx context.Context, actx *models.AccessContext, propertyID string, floorNumber int, floorName string) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "floor_updated", func(p *Property, _ map[string]bool) error {
		return UpdateFloor(p, floorNumber, floorName)
	})
}

func (s *PropertyServiceImpl) RemoveFloor(ctx context.Context, actx *models.AccessContext, propertyID string, floorNumber int) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "floor_removed", func(p *Property, active map[string]bool) error {
		return RemoveFloor(p, floorNumber, active)
	})
}

func (s *PropertyServiceImpl) AddSpace(ctx context.Context, actx *models.AccessContext, propertyID string, floorNumber int, space Space) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "space_added", func(p *Property, _ map[string]bool) error {
		return AddSpace(p, floorNumber, space)
	})
}

func (s *PropertyServiceImpl) UpdateSpace(ctx context.Context, actx *models.AccessContext, propertyID, spaceID string, patch SpacePatch) (*Property, error) {
	if patch.Status != nil && *patch.Status == SpaceStatusOccupied {
		return nil, &apperror.ValidationError{Field: "status", Reason: "occupied is derived from assignments and cannot be set directly"}
	}
	return s.mutate(ctx, actx, propertyID, "space_updated", func(p *Property, _ map[string]bool) error {
		return UpdateSpace(p, spaceID, patch)
	})
}

func (s *PropertyServiceImpl) RemoveSpace(ctx context.Context, actx *models.AccessContext, propertyID, spaceID string) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "space_removed", func(p *Property, active map[string]bool) error {
		return RemoveSpace(p, spaceID, active)
	})
}

func (s *PropertyServiceImpl) AddSquatter(ctx context.Context, actx *models.AccessContext, propertyID string, squatter Squatter) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "squatter_added", func(p *Property, _ map[string]bool) error {
		return AddSquatter(p, squatter)
	})
}

func (s *PropertyServiceImpl) UpdateSquatter(ctx context.Context, actx *models.AccessContext, propertyID, squatterID string, patch SquatterPatch) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "squatter_updated", func(p *Property, _ map[string]bool) error {
		return UpdateSquatter(p, squatterID, patch)
	})
}

func (s *PropertyServiceImpl) RemoveSquatter(ctx context.Context, actx *models.AccessContext, propertyID, squatterID string) (*Property, error) {
	return s.mutate(ctx, actx, propertyID, "squatter_removed", func(p *Property, active map[string]bool) error {
		return RemoveSquatter(p, squatterID, active)
	})
}

// AssignManager links a user to the property and mirrors the link onto the
// user record. Only users of the same organization can be assigned.
func (s *PropertyServiceImpl) AssignManager(ctx context.Context, actx *models.AccessContext, propertyID, userID string) error {
	property, err := s.guardedFetch(ctx, actx, propertyID, "admin")
	if err != nil {
		return err
	}

	manager, err := s.Managers.Manager(ctx, userID)
	if err != nil {
		return &apperror.ReferentialIntegrityError{Resource: "users", ID: userID, Reason: "not found"}
	}
	if manager.OrganizationID != property.OrganizationID {
		return &apperror.ValidationError{Field: "userId", Reason: "manager belongs to a different organization"}
	}

	err = s.DB.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Repo.AddManager(txCtx, property.ID, manager.ID); err != nil {
			return err
		}
		return s.Managers.AddAssignedProperty(txCtx, manager.ID, property.ID)
	})
	if err != nil {
		return &apperror.TransientStoreError{Op: "properties.assign_manager", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionAssign, "properties", propertyID, map[string]models.Change{
		"manager": {New: userID},
	})

	return nil
}

func (s *PropertyServiceImpl) UnassignManager(ctx context.Context, actx *models.AccessContext, propertyID, userID string) error {
	property, err := s.guardedFetch(ctx, actx, propertyID, "admin")
	if err != nil {
		return err
	}

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &apperror.ValidationError{Field: "userId", Reason: "invalid id"}
	}

	err = s.DB.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Repo.RemoveManager(txCtx, property.ID, userOID); err != nil {
			return err
		}
		return s.Managers.RemoveAssignedProperty(txCtx, userOID, property.ID)
	})
	if err != nil {
		return &apperror.TransientStoreError{Op: "properties.unassign_manager", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "properties", propertyID, map[string]models.Change{
		"manager_removed": {New: userID},
	})

	return nil
}

// mutate runs the load, guard, structural edit, save cycle shared by every
// hierarchy operation. The edit callback gets the current active-assignment
// set for its referential checks.
func (s *PropertyServiceImpl) mutate(ctx context.Context, actx *models.AccessContext, propertyID, auditKey string, edit func(p *Property, active map[string]bool) error) (*Property, error) {
	property, err := s.guardedFetch(ctx, actx, propertyID, "write")
	if err != nil {
		return nil, err
	}

	active, err := s.Assignments.ActiveSpaceIDs(ctx, property.ID)
	if err != nil {
		return nil, &apperror.TransientStoreError{Op: "rent.active_spaces", Err: err}
	}

	if err := edit(property, active); err != nil {
		return nil, err
	}

	if err := s.Repo.Replace(ctx, property); err != nil {
		return nil, &apperror.TransientStoreError{Op: "properties.replace", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "properties", propertyID, map[string]models.Change{
		auditKey: {New: true},
	})

	applyEffectiveStatuses(property, active)
	return property, nil
}

// scopedFetch loads the property through the read filter so out-of-scope ids
// come back as not found.
func (s *PropertyServiceImpl) scopedFetch(ctx context.Context, actx *models.AccessContext, id, action string) (*Property, error) {
	filter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceProperties)
	if err != nil {
		return nil, err
	}

	property, err := s.Repo.FindByID(ctx, id, filter)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "properties", ID: id, Reason: "not found"}
	}
	return property, nil
}

// guardedFetch is scopedFetch plus the write-scope check and ownership
// verification for a mutating action.
func (s *PropertyServiceImpl) guardedFetch(ctx context.Context, actx *models.AccessContext, id, action string) (*Property, error) {
	scope, err := s.Gateway.WriteScope(ctx, actx, access.ResourceProperties, action)
	if err != nil {
		return nil, err
	}

	property, err := s.scopedFetch(ctx, actx, id, action)
	if err != nil {
		return nil, err
	}

	if err := s.Gateway.VerifyOwnership(ctx, actx, access.ResourceProperties, action, scope, access.Ownership{
		OrganizationID:   property.OrganizationID,
		AssignedManagers: property.AssignedManagers,
	}); err != nil {
		return nil, err
	}

	return property, nil
}

func applyEffectiveStatuses(p *Property, active map[string]bool) {
	switch d := p.Details().(type) {
	case *BuildingDetails:
		for fi := range d.Floors {
			for si := range d.Floors[fi].Spaces {
				sp := &d.Floors[fi].Spaces[si]
				sp.Status = EffectiveStatus(sp.Status, active[sp.SpaceID])
			}
		}
	case *LandDetails:
		for i := range d.Squatters {
			sq := &d.Squatters[i]
			sq.Status = EffectiveStatus(sq.Status, active[sq.SquatterID])
		}
	}
}

package rent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pms/internal/access"
	"go-pms/internal/common/models"
	"go-pms/internal/database"
	"go-pms/internal/features/audit"
	"go-pms/internal/features/property"
	"go-pms/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Notifier pushes user-facing messages; the notification feature provides
// the implementation.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, level string) error
}

type RentService interface {
	Assign(ctx context.Context, actx *models.AccessContext, req AssignRequest) (*RentAssignment, error)
	Edit(ctx context.Context, actx *models.AccessContext, id string, patch EditRequest) (*RentAssignment, error)
	Terminate(ctx context.Context, actx *models.AccessContext, id string) error
	Get(ctx context.Context, actx *models.AccessContext, id string) (*RentAssignment, error)
	List(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]RentAssignment, int64, error)
}

type RentServiceImpl struct {
	Repo         RentRepository
	Properties   property.PropertyRepository
	Gateway      *access.Gateway
	AuditService audit.AuditService
	Notifier     Notifier
	DB           *database.MongodbDB
	Logger       *zap.Logger
}

func NewRentService(
	repo RentRepository,
	properties property.PropertyRepository,
	gateway *access.Gateway,
	auditService audit.AuditService,
	notifier Notifier,
	db *database.MongodbDB,
	logger *zap.Logger,
) RentService {
	return &RentServiceImpl{
		Repo:         repo,
		Properties:   properties,
		Gateway:      gateway,
		AuditService: auditService,
		Notifier:     notifier,
		DB:           db,
		Logger:       logger,
	}
}

// Assign leases a space to a tenant. The no-active-assignment precondition
// is not checked by reading first; the insert itself carries it via the
// unique partial index, so of two concurrent assigns on one space exactly
// one wins and the other gets a ConflictError.
func (s *RentServiceImpl) Assign(ctx context.Context, actx *models.AccessContext, req AssignRequest) (*RentAssignment, error) {
	scope, err := s.Gateway.WriteScope(ctx, actx, access.ResourceRent, "create")
	if err != nil {
		return nil, err
	}

	if req.TenantName == "" {
		return nil, &apperror.ValidationError{Field: "tenantName", Reason: "required"}
	}
	if req.TenantPhone == "" {
		return nil, &apperror.ValidationError{Field: "tenantPhone", Reason: "required"}
	}
	if req.LeaseStart.IsZero() {
		return nil, &apperror.ValidationError{Field: "leaseStart", Reason: "required"}
	}
	if req.PeriodType == "" {
		req.PeriodType = PeriodMonthly
	}

	prop, spaceName, declaredRent, err := s.leaseTarget(ctx, actx, req.PropertyID, req.SpaceID)
	if err != nil {
		return nil, err
	}

	if err := s.Gateway.VerifyOwnership(ctx, actx, access.ResourceRent, "create", scope, access.Ownership{
		OrganizationID: prop.OrganizationID,
		PropertyID:     prop.ID,
	}); err != nil {
		return nil, err
	}

	leaseEnd, err := s.resolveLeaseEnd(req.PeriodType, req.LeaseStart, req.LeaseEnd, req.LeaseDurationMonths)
	if err != nil {
		return nil, err
	}

	dueDate := req.PaymentDueDate
	if dueDate == 0 {
		dueDate = req.LeaseStart.Day()
	}
	if dueDate < 1 || dueDate > 31 {
		return nil, &apperror.ValidationError{Field: "paymentDueDate", Reason: "must be a day of month between 1 and 31"}
	}

	assignment := &RentAssignment{
		PropertyID:          prop.ID,
		SpaceID:             req.SpaceID,
		SpaceName:           spaceName,
		OrganizationID:      prop.OrganizationID,
		TenantName:          req.TenantName,
		TenantPhone:         req.TenantPhone,
		TenantEmail:         req.TenantEmail,
		NationalID:          req.NationalID,
		MonthlyRent:         declaredRent,
		BaseRent:            declaredRent,
		PeriodType:          req.PeriodType,
		LeaseStart:          req.LeaseStart,
		LeaseEnd:            leaseEnd,
		LeaseDurationMonths: req.LeaseDurationMonths,
		PaymentDueDate:      dueDate,
	}

	err = s.DB.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Repo.CreateActive(txCtx, assignment); err != nil {
			return err
		}
		return s.Properties.UpdateSpaceStatus(txCtx, prop.ID, req.SpaceID, property.SpaceStatusOccupied)
	})
	if err != nil {
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, &apperror.TransientStoreError{Op: "rent.assign", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionAssign, "rent", assignment.ID.Hex(), map[string]models.Change{
		"space":  {New: req.SpaceID},
		"tenant": {New: req.TenantName},
	})
	_ = s.Notifier.Notify(ctx, actx.UserID.Hex(), "Tenant assigned",
		fmt.Sprintf("%s assigned to space %s", req.TenantName, spaceName), "info")

	return assignment, nil
}

// Edit patches lease terms. Moving to another space rides on the same
// index guard as Assign: the update collides with any active assignment
// already on the target and comes back as a ConflictError.
func (s *RentServiceImpl) Edit(ctx context.Context, actx *models.AccessContext, id string, patch EditRequest) (*RentAssignment, error) {
	assignment, err := s.guardedFetch(ctx, actx, id, "write")
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	oldPropertyID := assignment.PropertyID
	oldSpaceID := assignment.SpaceID

	if patch.TenantName != nil {
		if *patch.TenantName == "" {
			return nil, &apperror.ValidationError{Field: "tenantName", Reason: "required"}
		}
		updates["tenantName"] = *patch.TenantName
	}
	if patch.TenantPhone != nil {
		if *patch.TenantPhone == "" {
			return nil, &apperror.ValidationError{Field: "tenantPhone", Reason: "required"}
		}
		updates["tenantPhone"] = *patch.TenantPhone
	}
	if patch.TenantEmail != nil {
		updates["tenantEmail"] = *patch.TenantEmail
	}
	if patch.NationalID != nil {
		updates["nationalId"] = *patch.NationalID
	}
	if patch.PaymentDueDate != nil {
		if *patch.PaymentDueDate < 1 || *patch.PaymentDueDate > 31 {
			return nil, &apperror.ValidationError{Field: "paymentDueDate", Reason: "must be a day of month between 1 and 31"}
		}
		updates["paymentDueDate"] = *patch.PaymentDueDate
	}

	// Lease term changes re-derive leaseEnd
	periodType := assignment.PeriodType
	leaseStart := assignment.LeaseStart
	duration := assignment.LeaseDurationMonths
	termsChanged := false
	if patch.PeriodType != nil {
		periodType = *patch.PeriodType
		updates["periodType"] = periodType
		termsChanged = true
	}
	if patch.LeaseStart != nil {
		leaseStart = *patch.LeaseStart
		updates["leaseStart"] = leaseStart
		termsChanged = true
	}
	if patch.LeaseDurationMonths != nil {
		duration = *patch.LeaseDurationMonths
		updates["leaseDurationMonths"] = duration
		termsChanged = true
	}
	if termsChanged || patch.LeaseEnd != nil {
		leaseEnd, err := s.resolveLeaseEnd(periodType, leaseStart, patch.LeaseEnd, duration)
		if err != nil {
			return nil, err
		}
		updates["leaseEnd"] = leaseEnd
	}

	// Space move
	moved := false
	newPropertyID := oldPropertyID.Hex()
	newSpaceID := oldSpaceID
	if patch.PropertyID != nil {
		newPropertyID = *patch.PropertyID
		moved = true
	}
	if patch.SpaceID != nil {
		newSpaceID = *patch.SpaceID
		moved = true
	}

	var newProp *property.Property
	if moved {
		// Only an active lease occupies its space; moving a historical one
		// would mark the target occupied with no assignment backing it, and
		// the active-only index could not catch a collision.
		if assignment.Status != StatusActive {
			return nil, &apperror.ValidationError{Field: "status", Reason: "only an active assignment can be moved"}
		}

		prop, spaceName, declaredRent, err := s.leaseTarget(ctx, actx, newPropertyID, newSpaceID)
		if err != nil {
			return nil, err
		}
		newProp = prop

		scope, err := s.Gateway.WriteScope(ctx, actx, access.ResourceRent, "write")
		if err != nil {
			return nil, err
		}
		if err := s.Gateway.VerifyOwnership(ctx, actx, access.ResourceRent, "write", scope, access.Ownership{
			OrganizationID: prop.OrganizationID,
			PropertyID:     prop.ID,
		}); err != nil {
			return nil, err
		}

		updates["propertyId"] = prop.ID
		updates["spaceId"] = newSpaceID
		updates["spaceName"] = spaceName
		updates["monthlyRent"] = declaredRent
		updates["organizationId"] = prop.OrganizationID
	}

	err = s.DB.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Repo.UpdateFields(txCtx, id, updates); err != nil {
			return err
		}
		if !moved {
			return nil
		}
		if err := s.Properties.UpdateSpaceStatus(txCtx, newProp.ID, newSpaceID, property.SpaceStatusOccupied); err != nil {
			return err
		}
		return s.revertSpaceStatus(txCtx, oldPropertyID, oldSpaceID)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &apperror.ConflictError{Resource: "rent", ID: newSpaceID, Reason: "space already has an active assignment"}
		}
		return nil, &apperror.TransientStoreError{Op: "rent.edit", Err: err}
	}

	changes := map[string]models.Change{}
	for k := range updates {
		changes[k] = models.Change{New: updates[k]}
	}
	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "rent", id, changes)

	return s.Get(ctx, actx, id)
}

// Terminate ends the lease and reverts the space to vacant, or leaves it
// on maintenance when flagged. The record itself stays for history.
func (s *RentServiceImpl) Terminate(ctx context.Context, actx *models.AccessContext, id string) error {
	assignment, err := s.guardedFetch(ctx, actx, id, "write")
	if err != nil {
		return err
	}

	if assignment.Status != StatusActive {
		return &apperror.ValidationError{Field: "status", Reason: "assignment is not active"}
	}

	err = s.DB.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Repo.SetStatus(txCtx, assignment.ID, StatusInactive); err != nil {
			return err
		}
		return s.revertSpaceStatus(txCtx, assignment.PropertyID, assignment.SpaceID)
	})
	if err != nil {
		return &apperror.TransientStoreError{Op: "rent.terminate", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionTerminate, "rent", id, map[string]models.Change{
		"status": {Old: StatusActive, New: StatusInactive},
	})
	_ = s.Notifier.Notify(ctx, actx.UserID.Hex(), "Lease terminated",
		fmt.Sprintf("Lease for %s on space %s terminated", assignment.TenantName, assignment.SpaceName), "info")

	return nil
}

func (s *RentServiceImpl) Get(ctx context.Context, actx *models.AccessContext, id string) (*RentAssignment, error) {
	filter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceRent)
	if err != nil {
		return nil, err
	}

	assignment, err := s.Repo.FindByID(ctx, id, filter)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "rent", ID: id, Reason: "not found"}
	}
	return assignment, nil
}

func (s *RentServiceImpl) List(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]RentAssignment, int64, error) {
	filter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceRent)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	assignments, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, &apperror.TransientStoreError{Op: "rent.list", Err: err}
	}
	return assignments, total, nil
}

// leaseTarget resolves the property and lease target through the caller's
// property read scope and returns the denormalized name and declared rent.
func (s *RentServiceImpl) leaseTarget(ctx context.Context, actx *models.AccessContext, propertyID, spaceID string) (*property.Property, string, float64, error) {
	propFilter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceProperties)
	if err != nil {
		return nil, "", 0, err
	}

	prop, err := s.Properties.FindByID(ctx, propertyID, propFilter)
	if err != nil {
		return nil, "", 0, &apperror.ReferentialIntegrityError{Resource: "properties", ID: propertyID, Reason: "not found"}
	}

	if sp, _, ok := property.SpaceByID(prop, spaceID); ok {
		return prop, sp.SpaceName, sp.MonthlyRent, nil
	}
	if sq, ok := property.SquatterByID(prop, spaceID); ok {
		return prop, sq.SquatterName, sq.MonthlyPayment, nil
	}

	return nil, "", 0, &apperror.ReferentialIntegrityError{Resource: "spaces", ID: spaceID, Reason: "space not found on property"}
}

func (s *RentServiceImpl) resolveLeaseEnd(periodType string, leaseStart time.Time, suppliedEnd *time.Time, durationMonths int) (*time.Time, error) {
	if periodType == PeriodCustom {
		if suppliedEnd == nil {
			return nil, &apperror.ValidationError{Field: "leaseEnd", Reason: "required for custom period"}
		}
		if !suppliedEnd.After(leaseStart) {
			return nil, &apperror.ValidationError{Field: "leaseEnd", Reason: "must be after leaseStart"}
		}
		return suppliedEnd, nil
	}

	if durationMonths < 1 {
		return nil, &apperror.ValidationError{Field: "leaseDurationMonths", Reason: "must be at least 1"}
	}
	return ComputeLeaseEnd(leaseStart, periodType, durationMonths)
}

// revertSpaceStatus recomputes a space's advisory status after its active
// assignment went away: maintenance sticks, everything else goes vacant.
func (s *RentServiceImpl) revertSpaceStatus(ctx context.Context, propertyID primitive.ObjectID, spaceID string) error {
	prop, err := s.Properties.FindByID(ctx, propertyID.Hex(), nil)
	if err != nil {
		return err
	}

	status := property.SpaceStatusVacant
	if sp, _, ok := property.SpaceByID(prop, spaceID); ok && sp.Status == property.SpaceStatusMaintenance {
		status = property.SpaceStatusMaintenance
	}
	if sq, ok := property.SquatterByID(prop, spaceID); ok && sq.Status == property.SpaceStatusMaintenance {
		status = property.SpaceStatusMaintenance
	}

	return s.Properties.UpdateSpaceStatus(ctx, prop.ID, spaceID, status)
}

func (s *RentServiceImpl) guardedFetch(ctx context.Context, actx *models.AccessContext, id, action string) (*RentAssignment, error) {
	scope, err := s.Gateway.WriteScope(ctx, actx, access.ResourceRent, action)
	if err != nil {
		return nil, err
	}

	assignment, err := s.Get(ctx, actx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Gateway.VerifyOwnership(ctx, actx, access.ResourceRent, action, scope, access.Ownership{
		OrganizationID: assignment.OrganizationID,
		PropertyID:     assignment.PropertyID,
	}); err != nil {
		return nil, err
	}

	return assignment, nil
}

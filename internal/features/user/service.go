package user

import (
	"context"
	"time"

	"go-pms/internal/common/models"
	"go-pms/internal/features/audit"
	"go-pms/internal/features/permission"
	"go-pms/pkg/apperror"
	"go-pms/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, username, password, email, phone string) (*User, error)
	Login(ctx context.Context, username, password string) (string, *User, error)
	Approve(ctx context.Context, actx *models.AccessContext, userID, roleID, organizationID string) (*User, error)
	Reject(ctx context.Context, actx *models.AccessContext, userID string) error
	ReassignRole(ctx context.Context, actx *models.AccessContext, userID, roleID string) (*User, error)
	Deactivate(ctx context.Context, actx *models.AccessContext, userID string) error
	GetUser(ctx context.Context, actx *models.AccessContext, userID string) (*User, error)
	ListUsers(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]User, int64, error)
	BuildAccessContext(ctx context.Context, userID string) (*models.AccessContext, error)
}

type UserServiceImpl struct {
	Repo         UserRepository
	Registry     *permission.Registry
	Resolver     *permission.Resolver
	AuditService audit.AuditService
}

func NewUserService(repo UserRepository, registry *permission.Registry, resolver *permission.Resolver, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		Repo:         repo,
		Registry:     registry,
		Resolver:     resolver,
		AuditService: auditService,
	}
}

// Register creates a pending account with no role and no organization.
// Nothing is visible to it until an administrator approves it.
func (s *UserServiceImpl) Register(ctx context.Context, username, password, email, phone string) (*User, error) {
	if username == "" {
		return nil, &apperror.ValidationError{Field: "username", Reason: "required"}
	}
	if len(password) < 8 {
		return nil, &apperror.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if email == "" {
		return nil, &apperror.ValidationError{Field: "email", Reason: "required"}
	}

	if existing, _ := s.Repo.FindByUsername(ctx, username); existing != nil {
		return nil, &apperror.ConflictError{Resource: "users", ID: username, Reason: "username already taken"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username: username,
		Password: string(hashed),
		Email:    email,
		Phone:    phone,
		Status:   StatusPending,
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, &apperror.TransientStoreError{Op: "users.create", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, nil, models.AuditActionCreate, "users", user.ID.Hex(), map[string]models.Change{
		"username": {New: username},
	})

	return user, nil
}

func (s *UserServiceImpl) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, &apperror.AuthorizationError{Resource: "users", Action: "login", Scope: "none"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, &apperror.AuthorizationError{Resource: "users", Action: "login", Scope: "none"}
	}

	if user.Status != StatusActive {
		return "", nil, &apperror.AuthorizationError{Resource: "users", Action: "login", Scope: "none"}
	}

	orgID := ""
	if !user.OrganizationID.IsZero() {
		orgID = user.OrganizationID.Hex()
	}

	token, err := utils.GenerateToken(user.ID, user.RoleID, orgID)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	_ = s.Repo.UpdateFields(ctx, user.ID.Hex(), map[string]interface{}{"last_login": &now})

	_ = s.AuditService.LogChange(ctx, nil, models.AuditActionLogin, "users", user.ID.Hex(), nil)

	return token, user, nil
}

// Approve activates a pending user into an organization with a role, and
// materializes the role's permission set onto the user. The snapshot is
// what the resolver consults at request time.
func (s *UserServiceImpl) Approve(ctx context.Context, actx *models.AccessContext, userID, roleID, organizationID string) (*User, error) {
	if err := s.requireUserAdmin(actx); err != nil {
		return nil, err
	}

	if !s.Registry.KnownRole(roleID) {
		return nil, &apperror.ValidationError{Field: "role_id", Reason: "unknown role"}
	}

	orgOID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, &apperror.ValidationError{Field: "organization_id", Reason: "invalid id"}
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "users", ID: userID, Reason: "not found"}
	}

	// Org admins can only approve into their own organization
	if s.Resolver.ResolveScope(actx, "users", "admin") != permission.ScopeAll && orgOID != actx.OrganizationID {
		return nil, &apperror.AuthorizationError{Resource: "users", Action: "admin", Scope: "organization"}
	}

	snapshot := s.Registry.PermissionsFor(roleID)
	updates := map[string]interface{}{
		"status":          StatusActive,
		"role_id":         roleID,
		"organization_id": orgOID,
		"permissions":     snapshot,
	}

	if err := s.Repo.UpdateFields(ctx, userID, updates); err != nil {
		return nil, &apperror.TransientStoreError{Op: "users.update", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionApprove, "users", userID, map[string]models.Change{
		"status": {Old: user.Status, New: StatusActive},
		"role":   {Old: user.RoleID, New: roleID},
	})

	return s.Repo.FindByID(ctx, userID)
}

func (s *UserServiceImpl) Reject(ctx context.Context, actx *models.AccessContext, userID string) error {
	if err := s.requireUserAdmin(actx); err != nil {
		return err
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return &apperror.ReferentialIntegrityError{Resource: "users", ID: userID, Reason: "not found"}
	}

	if err := s.Repo.UpdateFields(ctx, userID, map[string]interface{}{"status": StatusRejected}); err != nil {
		return &apperror.TransientStoreError{Op: "users.update", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionReject, "users", userID, map[string]models.Change{
		"status": {Old: user.Status, New: StatusRejected},
	})

	return nil
}

// ReassignRole swaps the user's role and refreshes the permission snapshot
// from the registry.
func (s *UserServiceImpl) ReassignRole(ctx context.Context, actx *models.AccessContext, userID, roleID string) (*User, error) {
	if err := s.requireUserAdmin(actx); err != nil {
		return nil, err
	}

	if !s.Registry.KnownRole(roleID) {
		return nil, &apperror.ValidationError{Field: "role_id", Reason: "unknown role"}
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "users", ID: userID, Reason: "not found"}
	}

	if s.Resolver.ResolveScope(actx, "users", "admin") != permission.ScopeAll && user.OrganizationID != actx.OrganizationID {
		return nil, &apperror.AuthorizationError{Resource: "users", Action: "admin", Scope: "organization"}
	}

	updates := map[string]interface{}{
		"role_id":     roleID,
		"permissions": s.Registry.PermissionsFor(roleID),
	}

	if err := s.Repo.UpdateFields(ctx, userID, updates); err != nil {
		return nil, &apperror.TransientStoreError{Op: "users.update", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "users", userID, map[string]models.Change{
		"role": {Old: user.RoleID, New: roleID},
	})

	return s.Repo.FindByID(ctx, userID)
}

func (s *UserServiceImpl) Deactivate(ctx context.Context, actx *models.AccessContext, userID string) error {
	if err := s.requireUserAdmin(actx); err != nil {
		return err
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return &apperror.ReferentialIntegrityError{Resource: "users", ID: userID, Reason: "not found"}
	}

	if err := s.Repo.UpdateFields(ctx, userID, map[string]interface{}{"status": StatusInactive}); err != nil {
		return &apperror.TransientStoreError{Op: "users.update", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "users", userID, map[string]models.Change{
		"status": {Old: user.Status, New: StatusInactive},
	})

	return nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, actx *models.AccessContext, userID string) (*User, error) {
	scope := s.Resolver.ResolveScope(actx, "users", "read")
	if scope == permission.ScopeNone {
		return nil, &apperror.AuthorizationError{Resource: "users", Action: "read", Scope: "none"}
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "users", ID: userID, Reason: "not found"}
	}

	if scope != permission.ScopeAll && user.OrganizationID != actx.OrganizationID {
		return nil, &apperror.AuthorizationError{Resource: "users", Action: "read", Scope: scope.String()}
	}

	return user, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]User, int64, error) {
	scope := s.Resolver.ResolveScope(actx, "users", "read")
	if scope == permission.ScopeNone {
		return nil, 0, &apperror.AuthorizationError{Resource: "users", Action: "read", Scope: "none"}
	}

	filter := map[string]interface{}{}
	if scope != permission.ScopeAll {
		filter["organization_id"] = actx.OrganizationID
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	users, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, &apperror.TransientStoreError{Op: "users.list", Err: err}
	}
	return users, total, nil
}

// BuildAccessContext loads the user and projects it into the request-scoped
// context object all scoped services take.
func (s *UserServiceImpl) BuildAccessContext(ctx context.Context, userID string) (*models.AccessContext, error) {
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.AccessContext{
		UserID:              user.ID,
		RoleID:              user.RoleID,
		OrganizationID:      user.OrganizationID,
		Permissions:         user.Permissions,
		AssignedPropertyIDs: user.AssignedPropertyIDs,
	}, nil
}

func (s *UserServiceImpl) requireUserAdmin(actx *models.AccessContext) error {
	scope := s.Resolver.ResolveScope(actx, "users", "admin")
	if scope == permission.ScopeNone || scope == permission.ScopeAssigned {
		return &apperror.AuthorizationError{Resource: "users", Action: "admin", Scope: scope.String()}
	}
	return nil
}

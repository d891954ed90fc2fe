package organization

import (
	"context"

	"go-pms/internal/common/models"
	"go-pms/internal/features/audit"
	"go-pms/internal/features/permission"
	"go-pms/pkg/apperror"
)

type OrganizationService interface {
	CreateOrganization(ctx context.Context, actx *models.AccessContext, org *Organization) (*Organization, error)
	GetOrganization(ctx context.Context, actx *models.AccessContext, id string) (*Organization, error)
	ListOrganizations(ctx context.Context, actx *models.AccessContext) ([]Organization, error)
	UpdateStatus(ctx context.Context, actx *models.AccessContext, id, status string) error
}

type OrganizationServiceImpl struct {
	Repo         OrganizationRepository
	Resolver     *permission.Resolver
	AuditService audit.AuditService
}

func NewOrganizationService(repo OrganizationRepository, resolver *permission.Resolver, auditService audit.AuditService) OrganizationService {
	return &OrganizationServiceImpl{
		Repo:         repo,
		Resolver:     resolver,
		AuditService: auditService,
	}
}

// Organizations are the tenancy boundary itself, so only all-scope roles
// may create or administer them.
func (s *OrganizationServiceImpl) CreateOrganization(ctx context.Context, actx *models.AccessContext, org *Organization) (*Organization, error) {
	if s.Resolver.ResolveScope(actx, "organizations", "create") != permission.ScopeAll {
		return nil, &apperror.AuthorizationError{Resource: "organizations", Action: "create", Scope: "none"}
	}

	if org.Name == "" {
		return nil, &apperror.ValidationError{Field: "name", Reason: "required"}
	}

	if err := s.Repo.Create(ctx, org); err != nil {
		return nil, &apperror.TransientStoreError{Op: "organizations.create", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionCreate, "organizations", org.ID.Hex(), map[string]models.Change{
		"organization": {New: org.Name},
	})

	return org, nil
}

func (s *OrganizationServiceImpl) GetOrganization(ctx context.Context, actx *models.AccessContext, id string) (*Organization, error) {
	scope := s.Resolver.ResolveScope(actx, "organizations", "read")
	if scope == permission.ScopeNone {
		return nil, &apperror.AuthorizationError{Resource: "organizations", Action: "read", Scope: "none"}
	}

	org, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "organizations", ID: id, Reason: "not found"}
	}

	// Anything below all-scope may only see its own organization
	if scope != permission.ScopeAll && org.ID != actx.OrganizationID {
		return nil, &apperror.AuthorizationError{Resource: "organizations", Action: "read", Scope: scope.String()}
	}

	return org, nil
}

func (s *OrganizationServiceImpl) ListOrganizations(ctx context.Context, actx *models.AccessContext) ([]Organization, error) {
	scope := s.Resolver.ResolveScope(actx, "organizations", "read")
	switch scope {
	case permission.ScopeAll:
		orgs, err := s.Repo.List(ctx)
		if err != nil {
			return nil, &apperror.TransientStoreError{Op: "organizations.list", Err: err}
		}
		return orgs, nil
	case permission.ScopeNone:
		return nil, &apperror.AuthorizationError{Resource: "organizations", Action: "read", Scope: "none"}
	default:
		org, err := s.GetOrganization(ctx, actx, actx.OrganizationID.Hex())
		if err != nil {
			return nil, err
		}
		return []Organization{*org}, nil
	}
}

func (s *OrganizationServiceImpl) UpdateStatus(ctx context.Context, actx *models.AccessContext, id, status string) error {
	if s.Resolver.ResolveScope(actx, "organizations", "admin") != permission.ScopeAll {
		return &apperror.AuthorizationError{Resource: "organizations", Action: "admin", Scope: "none"}
	}

	if status != StatusActive && status != StatusSuspended {
		return &apperror.ValidationError{Field: "status", Reason: "must be active or suspended"}
	}

	if err := s.Repo.Update(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return &apperror.TransientStoreError{Op: "organizations.update", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionUpdate, "organizations", id, map[string]models.Change{
		"status": {New: status},
	})

	return nil
}

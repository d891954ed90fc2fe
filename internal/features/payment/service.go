package payment

import (
	"context"
	"fmt"
	"time"

	"go-pms/internal/access"
	"go-pms/internal/common/models"
	"go-pms/internal/features/audit"
	"go-pms/internal/features/property"
	"go-pms/internal/features/rent"
	"go-pms/pkg/apperror"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, userID, title, message, level string) error
}

type PaymentService interface {
	Record(ctx context.Context, actx *models.AccessContext, req RecordRequest) (*Payment, error)
	Get(ctx context.Context, actx *models.AccessContext, id string) (*Payment, error)
	List(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]Payment, int64, error)
	TotalForRent(ctx context.Context, actx *models.AccessContext, rentID string) (float64, error)
}

type PaymentServiceImpl struct {
	Repo         PaymentRepository
	Rents        rent.RentRepository
	Properties   property.PropertyRepository
	Gateway      *access.Gateway
	AuditService audit.AuditService
	Notifier     Notifier
	Logger       *zap.Logger
}

func NewPaymentService(
	repo PaymentRepository,
	rents rent.RentRepository,
	properties property.PropertyRepository,
	gateway *access.Gateway,
	auditService audit.AuditService,
	notifier Notifier,
	logger *zap.Logger,
) PaymentService {
	return &PaymentServiceImpl{
		Repo:         repo,
		Rents:        rents,
		Properties:   properties,
		Gateway:      gateway,
		AuditService: auditService,
		Notifier:     notifier,
		Logger:       logger,
	}
}

// Record stores a payment against a lease or property. The organization is
// always derived from the referenced record, so a caller cannot park a
// payment in another tenant by supplying a foreign organization id.
// Payments against terminated leases are allowed; arrears get settled after
// the tenant has left.
func (s *PaymentServiceImpl) Record(ctx context.Context, actx *models.AccessContext, req RecordRequest) (*Payment, error) {
	scope, err := s.Gateway.WriteScope(ctx, actx, access.ResourcePayments, "create")
	if err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		return nil, &apperror.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if req.PaymentMethod == "" {
		return nil, &apperror.ValidationError{Field: "paymentMethod", Reason: "required"}
	}
	if req.RentID == "" && req.PropertyID == "" {
		return nil, &apperror.ValidationError{Field: "rentId", Reason: "a rent or property reference is required"}
	}

	payment := &Payment{
		InvoiceID:     req.InvoiceID,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		RecordedBy:    actx.UserID,
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}

	if req.RentID != "" {
		rentFilter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceRent)
		if err != nil {
			return nil, err
		}
		lease, err := s.Rents.FindByID(ctx, req.RentID, rentFilter)
		if err != nil {
			return nil, &apperror.ReferentialIntegrityError{Resource: "rent", ID: req.RentID, Reason: "not found"}
		}

		if req.PropertyID != "" && req.PropertyID != lease.PropertyID.Hex() {
			return nil, &apperror.ValidationError{Field: "propertyId", Reason: "does not match the referenced lease"}
		}

		payment.RentID = lease.ID
		payment.PropertyID = lease.PropertyID
		payment.OrganizationID = lease.OrganizationID
	} else {
		propFilter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceProperties)
		if err != nil {
			return nil, err
		}
		prop, err := s.Properties.FindByID(ctx, req.PropertyID, propFilter)
		if err != nil {
			return nil, &apperror.ReferentialIntegrityError{Resource: "properties", ID: req.PropertyID, Reason: "not found"}
		}

		payment.PropertyID = prop.ID
		payment.OrganizationID = prop.OrganizationID
	}

	if err := s.Gateway.VerifyOwnership(ctx, actx, access.ResourcePayments, "create", scope, access.Ownership{
		OrganizationID: payment.OrganizationID,
		PropertyID:     payment.PropertyID,
	}); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, payment); err != nil {
		return nil, &apperror.TransientStoreError{Op: "payments.create", Err: err}
	}

	_ = s.AuditService.LogChange(ctx, actx, models.AuditActionPayment, "payments", payment.ID.Hex(), map[string]models.Change{
		"amount": {New: payment.Amount},
		"method": {New: payment.PaymentMethod},
	})
	_ = s.Notifier.Notify(ctx, actx.UserID.Hex(), "Payment recorded",
		fmt.Sprintf("Payment of %.2f recorded via %s", payment.Amount, payment.PaymentMethod), "info")

	return payment, nil
}

func (s *PaymentServiceImpl) Get(ctx context.Context, actx *models.AccessContext, id string) (*Payment, error) {
	filter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourcePayments)
	if err != nil {
		return nil, err
	}

	payment, err := s.Repo.FindByID(ctx, id, filter)
	if err != nil {
		return nil, &apperror.ReferentialIntegrityError{Resource: "payments", ID: id, Reason: "not found"}
	}
	return payment, nil
}

func (s *PaymentServiceImpl) List(ctx context.Context, actx *models.AccessContext, page, limit int64) ([]Payment, int64, error) {
	filter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourcePayments)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	payments, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, &apperror.TransientStoreError{Op: "payments.list", Err: err}
	}
	return payments, total, nil
}

// TotalForRent sums every payment recorded against one lease. The lease is
// fetched through the caller's rent scope first so the total leaks nothing
// the caller could not list anyway.
func (s *PaymentServiceImpl) TotalForRent(ctx context.Context, actx *models.AccessContext, rentID string) (float64, error) {
	rentFilter, err := s.Gateway.ReadFilter(ctx, actx, access.ResourceRent)
	if err != nil {
		return 0, err
	}
	lease, err := s.Rents.FindByID(ctx, rentID, rentFilter)
	if err != nil {
		return 0, &apperror.ReferentialIntegrityError{Resource: "rent", ID: rentID, Reason: "not found"}
	}

	total, err := s.Repo.TotalForRent(ctx, lease.ID)
	if err != nil {
		return 0, &apperror.TransientStoreError{Op: "payments.total", Err: err}
	}
	return total, nil
}

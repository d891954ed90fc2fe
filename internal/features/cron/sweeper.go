package cron_feature

import (
	"context"
	"fmt"
	"time"

	"go-pms/internal/common/models"
	"go-pms/internal/features/audit"
	"go-pms/internal/features/property"
	"go-pms/internal/features/rent"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sweepSchedule   = "@hourly"
	dueDateSchedule = "0 8 * * *"
)

// Notifier pushes user-facing messages; the notification feature provides
// the implementation.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, level string) error
}

// SweeperService expires leases whose end date has passed, reconciles the
// advisory space statuses left behind, and reminds managers of rent due.
type SweeperService interface {
	InitializeScheduler() error
	StopScheduler()
	RunOnce(ctx context.Context) (int, error)
	NotifyDuePayments(ctx context.Context, now time.Time) (int, error)
}

type SweeperServiceImpl struct {
	Rents        rent.RentRepository
	Properties   property.PropertyRepository
	AuditService audit.AuditService
	Notifier     Notifier
	Logger       *zap.Logger

	scheduler *cron.Cron
}

func NewSweeperService(
	rents rent.RentRepository,
	properties property.PropertyRepository,
	auditService audit.AuditService,
	notifier Notifier,
	logger *zap.Logger,
) SweeperService {
	return &SweeperServiceImpl{
		Rents:        rents,
		Properties:   properties,
		AuditService: auditService,
		Notifier:     notifier,
		Logger:       logger,
	}
}

func (s *SweeperServiceImpl) InitializeScheduler() error {
	s.scheduler = cron.New()

	_, err := s.scheduler.AddFunc(sweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		expired, err := s.RunOnce(ctx)
		if err != nil {
			s.Logger.Error("lease sweep failed", zap.Error(err))
			return
		}
		if expired > 0 {
			s.Logger.Info("lease sweep completed", zap.Int("expired", expired))
		}
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.AddFunc(dueDateSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		notified, err := s.NotifyDuePayments(ctx, time.Now())
		if err != nil {
			s.Logger.Error("payment due reminders failed", zap.Error(err))
			return
		}
		if notified > 0 {
			s.Logger.Info("payment due reminders sent", zap.Int("count", notified))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.Logger.Info("lease sweeper scheduled", zap.String("schedule", sweepSchedule))
	return nil
}

func (s *SweeperServiceImpl) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce expires every active assignment whose leaseEnd lies in the past.
// Each space reverts to vacant unless it was flagged for maintenance.
func (s *SweeperServiceImpl) RunOnce(ctx context.Context) (int, error) {
	expired, err := s.Rents.ExpiredActive(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, assignment := range expired {
		if err := s.Rents.SetStatus(ctx, assignment.ID, rent.StatusInactive); err != nil {
			s.Logger.Error("lease expiry failed",
				zap.String("assignment_id", assignment.ID.Hex()),
				zap.Error(err),
			)
			continue
		}

		if err := s.revertSpaceStatus(ctx, assignment); err != nil {
			s.Logger.Warn("space status reconcile failed",
				zap.String("assignment_id", assignment.ID.Hex()),
				zap.Error(err),
			)
		}

		_ = s.AuditService.LogChange(ctx, nil, models.AuditActionCron, "rent", assignment.ID.Hex(), map[string]models.Change{
			"status": {Old: rent.StatusActive, New: rent.StatusInactive},
			"reason": {New: "lease end passed"},
		})
		count++
	}

	return count, nil
}

// NotifyDuePayments reminds each property's managers about rent falling due
// today. On the month's last day it also covers due dates the month never
// reaches, so a lease due on the 31st still bills in February.
func (s *SweeperServiceImpl) NotifyDuePayments(ctx context.Context, now time.Time) (int, error) {
	lastDay := now.AddDate(0, 0, 1).Month() != now.Month()

	due, err := s.Rents.DueOn(ctx, now.Day(), lastDay)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, assignment := range due {
		prop, err := s.Properties.FindByID(ctx, assignment.PropertyID.Hex(), nil)
		if err != nil {
			s.Logger.Warn("due reminder skipped, property lookup failed",
				zap.String("assignment_id", assignment.ID.Hex()),
				zap.Error(err),
			)
			continue
		}

		message := fmt.Sprintf("Rent of %.2f due today from %s for space %s",
			assignment.MonthlyRent, assignment.TenantName, assignment.SpaceName)
		for _, managerID := range prop.AssignedManagers {
			if err := s.Notifier.Notify(ctx, managerID.Hex(), "Rent due", message, "info"); err != nil {
				s.Logger.Warn("due reminder delivery failed",
					zap.String("manager_id", managerID.Hex()),
					zap.Error(err),
				)
				continue
			}
			notified++
		}
	}

	return notified, nil
}

func (s *SweeperServiceImpl) revertSpaceStatus(ctx context.Context, assignment rent.RentAssignment) error {
	prop, err := s.Properties.FindByID(ctx, assignment.PropertyID.Hex(), nil)
	if err != nil {
		return err
	}

	status := property.SpaceStatusVacant
	if sp, _, ok := property.SpaceByID(prop, assignment.SpaceID); ok && sp.Status == property.SpaceStatusMaintenance {
		status = property.SpaceStatusMaintenance
	}
	if sq, ok := property.SquatterByID(prop, assignment.SpaceID); ok && sq.Status == property.SpaceStatusMaintenance {
		status = property.SpaceStatusMaintenance
	}

	return s.Properties.UpdateSpaceStatus(ctx, prop.ID, assignment.SpaceID, status)
}

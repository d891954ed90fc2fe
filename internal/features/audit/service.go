package audit

import (
	"context"
	"time"

	common_models "go-pms/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserFinder resolves actor names for display. Implemented by the user
// repository and adapted in main to break the dependency cycle.
type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]ActorRef, error)
}

// ActorRef is the minimal user projection audit needs.
type ActorRef struct {
	ID       primitive.ObjectID
	Username string
}

type AuditService interface {
	LogChange(ctx context.Context, actx *common_models.AccessContext, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, actx *common_models.AccessContext, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	if actx != nil {
		if !actx.UserID.IsZero() {
			actorID = actx.UserID.Hex()
		}
		log.OrganizationID = actx.OrganizationID
	}
	log.ActorID = actorID

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.ActorID != "system" && log.ActorID != "" && !uniqueIDs[log.ActorID] {
			uniqueIDs[log.ActorID] = true
			actorIDs = append(actorIDs, log.ActorID)
		}
	}

	// Batch fetch actor names
	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		if actors, err := s.UserRepo.FindByIDs(ctx, actorIDs); err == nil {
			for _, a := range actors {
				userMap[a.ID.Hex()] = a.Username
			}
		}
	}

	for i, log := range logs {
		if name, ok := userMap[log.ActorID]; ok {
			logs[i].ActorName = name
		}
	}

	return logs, nil
}

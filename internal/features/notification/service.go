package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NotificationService interface {
	// Notify persists the notification and pushes it over any open
	// websocket connection the user holds.
	Notify(ctx context.Context, userID, title, message, level string) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error
}

type NotificationServiceImpl struct {
	Repo   NotificationRepository
	Hub    *Hub
	Logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		Repo:   repo,
		Hub:    hub,
		Logger: logger,
	}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, userID, title, message, level string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		// Dev bypass identities have no stored account; nothing to notify
		return nil
	}

	notification := &Notification{
		UserID:  uid,
		Title:   title,
		Message: message,
		Level:   NotificationLevel(level),
	}
	if notification.Level == "" {
		notification.Level = LevelInfo
	}

	if err := s.Repo.Create(ctx, notification); err != nil {
		s.Logger.Error("notification create failed", zap.Error(err))
		return err
	}

	s.Hub.Push(userID, notification)
	return nil
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error) {
	return s.Repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.Repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	return s.Repo.MarkAsRead(ctx, objID, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.Repo.MarkAllAsRead(ctx, userID)
}

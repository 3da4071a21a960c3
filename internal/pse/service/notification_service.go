package service

import (
	"context"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentNotificationLimit = 20

// NotificationService records in-app notifications.
type NotificationService struct {
	repo   *repository.NotificationRepository
	events *sse.Hub
	logger *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, events *sse.Hub, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, events: events, logger: logger}
}

// CreateNotificationRequest creates a notification. An empty UserID makes
// it visible to everyone.
type CreateNotificationRequest struct {
	Title   string
	Content string
	UserID  string
}

func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*entity.Notification, error) {
	n := &entity.Notification{
		ID:      uuid.New().String(),
		Title:   req.Title,
		Content: req.Content,
		UserID:  optString(req.UserID),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.events.PublishNotification(n.ID, n.Title)
	return n, nil
}

// Recent returns the latest notifications visible to userID.
func (s *NotificationService) Recent(ctx context.Context, userID string) ([]entity.Notification, error) {
	return s.repo.FindRecent(ctx, userID, recentNotificationLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return translate(err, "notification", id)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

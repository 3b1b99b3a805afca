package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/notification"
)

// NotificationService covers the user-facing notification actions the
// batch pipeline itself never performs.
type NotificationService struct {
	notifications notification.Repository
	log           *logrus.Logger
}

func NewNotificationService(notifications notification.Repository, log *logrus.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, log: log}
}

// Dismiss soft-deletes a notification for its owner. The row stays in
// place and keeps suppressing re-emission of the same alert until the
// cleanup stage purges it after expiry.
func (s *NotificationService) Dismiss(ctx context.Context, id uuid.UUID, userID int64) error {
	if err := s.notifications.Deactivate(ctx, id, userID); err != nil {
		return fmt.Errorf("dismissing notification %s for user %d: %w", id, userID, err)
	}
	s.log.Infof("notification %s dismissed by user %d", id, userID)
	return nil
}

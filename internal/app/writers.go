package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/push"
	idb "medication_notifier/internal/infra/database"
)

// Writer consumes one chunk of surviving notification candidates.
type Writer interface {
	Write(ctx context.Context, chunk []*notification.Notification) error
}

// compositeWriter runs its writers in order against the same chunk.
// Persistence comes first; a persistence failure aborts the chunk before
// any delivery is attempted.
type compositeWriter struct {
	writers []Writer
}

func (w *compositeWriter) Write(ctx context.Context, chunk []*notification.Notification) error {
	for _, inner := range w.writers {
		if err := inner.Write(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// storeWriter persists every notification in the chunk. Errors propagate
// and are fatal to the stage.
type storeWriter struct {
	notifications notification.Repository
}

func (w *storeWriter) Write(ctx context.Context, chunk []*notification.Notification) error {
	for _, n := range chunk {
		if err := w.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("persisting notification %s: %w", n.ID, err)
		}
	}
	return nil
}

// pushPayload is the JSON body handed to the push channel.
type pushPayload struct {
	Type    notification.Type `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
}

// pushWriter attempts best-effort delivery for every notification in the
// chunk. A missing subscription skips the item silently; lookup,
// encoding, and delivery failures are logged and swallowed so that
// delivery never undoes or blocks persistence.
type pushWriter struct {
	subscriptions push.SubscriptionRepository
	sender        push.Sender
	log           *logrus.Logger
}

func (w *pushWriter) Write(ctx context.Context, chunk []*notification.Notification) error {
	for _, n := range chunk {
		sub, err := w.subscriptions.GetByUserID(ctx, n.UserID)
		if err != nil {
			if err != idb.ErrSubscriptionNotFound {
				w.log.Warnf("push subscription lookup failed for user %d: %v", n.UserID, err)
			}
			continue
		}

		payload, err := json.Marshal(pushPayload{Type: n.Type, Title: n.Title, Message: n.Message})
		if err != nil {
			w.log.Errorf("encoding push payload for notification %s: %v", n.ID, err)
			continue
		}

		if err := w.sender.Send(ctx, sub, payload); err != nil {
			w.log.Errorf("push delivery failed for notification %s (user %d): %v", n.ID, n.UserID, err)
			continue
		}
	}
	return nil
}

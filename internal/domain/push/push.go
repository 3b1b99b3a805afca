package push

import (
	"context"
	"time"
)

// Subscription is a stored Web Push subscription for one user: the
// endpoint URL plus the client key material handed over by the browser.
type Subscription struct {
	ID        int64
	UserID    int64
	Endpoint  string
	P256dhKey string
	AuthKey   string
	CreatedAt time.Time
}

// SubscriptionRepository looks up a user's push subscription. Absence is
// reported as a not-found error; the pipeline treats it as "skip
// delivery".
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*Subscription, error)
}

// Sender delivers a JSON payload to a subscription. Implementations may
// fail with transport or crypto errors; callers decide whether that is
// fatal.
type Sender interface {
	Send(ctx context.Context, sub *Subscription, payload []byte) error
}

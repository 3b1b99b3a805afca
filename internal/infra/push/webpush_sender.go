package push

import (
	"context"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	domainpush "medication_notifier/internal/domain/push"
)

const defaultTTLSeconds = 3600

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication. It implements push.Sender.
type WebPushSender struct {
	subscriber string
	publicKey  string
	privateKey string
}

func NewWebPushSender(subscriber, publicKey, privateKey string) *WebPushSender {
	return &WebPushSender{subscriber: subscriber, publicKey: publicKey, privateKey: privateKey}
}

func (s *WebPushSender) Send(ctx context.Context, sub *domainpush.Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             defaultTTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("sending web push to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint %s returned status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}

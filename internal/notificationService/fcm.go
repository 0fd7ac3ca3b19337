package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/messaging"
)

// FCMPusher implements Pusher with Firebase Cloud Messaging. The client is
// injected at construction.
type FCMPusher struct {
	client *messaging.Client
}

// NewFCMPusher creates a new FCM-backed pusher
func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

// Send pushes one message to a device token
func (p *FCMPusher) Send(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	messageID, err := p.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("fcm: send: %w", err)
	}
	return messageID, nil
}

package notification

import (
	"context"

	"live-auction-api/utils"
)

// LogPusher is a Pusher for local development without FCM credentials: it
// logs the message and fabricates a message ID.
type LogPusher struct{}

// NewLogPusher creates a log-only pusher
func NewLogPusher() *LogPusher {
	return &LogPusher{}
}

// Send logs the would-be push message
func (p *LogPusher) Send(_ context.Context, token, title, body string, data map[string]string) (string, error) {
	utils.Info("push notification (log only)", map[string]any{
		"token": truncateToken(token),
		"title": title,
		"body":  body,
		"data":  data,
	})
	return "log-" + utils.GenerateID(), nil
}

func truncateToken(token string) string {
	if len(token) > 12 {
		return token[:12] + "..."
	}
	return token
}

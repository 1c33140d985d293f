package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisSink mirrors toasts onto a pub/sub channel so other windows of the
// same profile can show them.
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisSink(client *redis.Client, channel string, logger *slog.Logger) *RedisSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSink{client: client, channel: channel, logger: logger}
}

func (s *RedisSink) Notify(ctx context.Context, n Notice) {
	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal notification failed", "error", err)
		return
	}
	if err := s.client.Publish(context.WithoutCancel(ctx), s.channel, payload).Err(); err != nil {
		s.logger.WarnContext(ctx, "publish notification failed", "error", err, "channel", s.channel)
	}
}

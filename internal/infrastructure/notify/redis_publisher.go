// Package notify delivers workflow events to the notification system over
// Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"registrar-workflow/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

var _ event.Publisher = (*RedisPublisher)(nil)

// RequesterChannel is the per-student channel, e.g. "registrar:requester:<id>".
func RequesterChannel(requesterID string) string {
	return "registrar:requester:" + requesterID
}

// RedisPublisher sends every event to the shared channel and to the
// requester's own channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	pipe := p.rdb.Pipeline()
	pipe.Publish(ctx, p.channel, payload)
	if ev.RequesterID != "" {
		pipe.Publish(ctx, RequesterChannel(ev.RequesterID), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish event %s: %w", ev.Type, err)
	}
	return nil
}

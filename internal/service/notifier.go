package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// RedisNotifier bridges services to Redis: completion notices go onto the
// worker queue, monitor updates fan out over PubSub.
type RedisNotifier struct {
	rdb *redis.Client
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

// EnqueueCompletion pushes a completion notice onto the notification queue
// for the notify worker to deliver.
func (n *RedisNotifier) EnqueueCompletion(ctx context.Context, notice model.CompletionNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	if err := n.rdb.LPush(ctx, config.QueueKey.NotificationsQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notice: %w", err)
	}
	return nil
}

// PublishMonitorUpdate fans a monitor update out to the test's live
// proctor streams. Fire-and-forget: no subscribers is not an error.
func (n *RedisNotifier) PublishMonitorUpdate(ctx context.Context, u model.MonitorUpdate) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	return n.rdb.Publish(ctx, config.ProctorMonitorChannel(u.TestID), payload).Err()
}

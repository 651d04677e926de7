// Package events publishes pipeline stage transitions so clients can follow a
// long-running request.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, ev models.StageEvent)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.StageEvent) {}

// Channel is the Redis pub/sub channel for one request's events.
func Channel(requestID string) string {
	return fmt.Sprintf("pipeline_updates:%s", requestID)
}

// RedisPublisher sends events over Redis pub/sub. Publishing is best effort:
// failures are logged and never affect the pipeline.
type RedisPublisher struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisPublisher(client *redis.Client, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev models.StageEvent) {
	if ev.RequestID == "" {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("failed to encode stage event", "error", err)
		return
	}
	if err := p.client.Publish(context.WithoutCancel(ctx), Channel(ev.RequestID), data).Err(); err != nil {
		p.log.Warn("failed to publish stage event", "request_id", ev.RequestID, "stage", ev.Stage, "error", err)
	}
}

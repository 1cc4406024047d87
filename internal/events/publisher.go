package events

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"real-estate-market/internal/models"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers recorded events to subscribers outside the node
type Publisher interface {
	Publish(ctx context.Context, event *models.ChainEvent) error
}

// RedisPublisher appends events to a Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher connects to the Redis instance at url
func NewRedisPublisher(ctx context.Context, url, stream string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Printf("[Events] Publishing to redis stream %s", stream)
	return &RedisPublisher{client: client, stream: stream}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event *models.ChainEvent) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"id":      event.ID.String(),
			"block":   strconv.FormatUint(event.BlockNumber, 10),
			"module":  event.Module,
			"name":    event.Name,
			"payload": event.Payload,
		},
	}).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// LogPublisher writes events to the log when no stream is configured
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event *models.ChainEvent) error {
	log.Printf("[Events] #%d %s.%s %s", event.BlockNumber, event.Module, event.Name, event.Payload)
	return nil
}

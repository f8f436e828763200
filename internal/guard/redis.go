package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/checkout-demo/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisGuard struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedis returns a guard that holds each key for at most ttl, so a crashed
// holder cannot block redelivery forever.
func NewRedis(client *redis.Client, namespace string, ttl time.Duration) port.WebhookGuard {
	return &redisGuard{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	acquired, err := g.client.SetNX(ctx, g.key(key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("client.SetNX: %w", err)
	}
	return acquired, nil
}

func (g *redisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}
	return nil
}

func (g *redisGuard) key(key string) string {
	return fmt.Sprintf("%s:%s", g.namespace, key)
}

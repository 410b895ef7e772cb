// Package feed distributes catalog change notifications between the
// billing server and any background workers, so every register's
// mirror refreshes after a sale or a catalog edit.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shoptill/internal/domain/catalog"
	"shoptill/pkg/logger"
)

// Channel carries catalog change notifications. The payload is empty;
// subscribers reload the full snapshot from the store.
const Channel = "shoptill:catalog:changed"

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("feed: ping redis: %w", err)
	}
	return client, nil
}

var (
	_ catalog.Feed      = (*Redis)(nil)
	_ catalog.Publisher = (*Redis)(nil)
)

// Redis implements the catalog change feed over Redis pub/sub.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// PublishChanged broadcasts a catalog change notification.
func (r *Redis) PublishChanged(ctx context.Context) error {
	if err := r.client.Publish(ctx, Channel, "").Err(); err != nil {
		return fmt.Errorf("publish catalog change: %w", err)
	}
	return nil
}

// Subscribe blocks, invoking fn for every notification until ctx ends.
func (r *Redis) Subscribe(ctx context.Context, fn func(ctx context.Context)) error {
	sub := r.client.Subscribe(ctx, Channel)
	defer func() {
		if err := sub.Close(); err != nil {
			logger.Warn(ctx, "close catalog subscription", "error", err)
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return fmt.Errorf("catalog subscription closed")
			}
			fn(ctx)
		}
	}
}

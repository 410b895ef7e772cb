package feed

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := NewRedis(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notified := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- f.Subscribe(ctx, func(ctx context.Context) {
			select {
			case notified <- struct{}{}:
			default:
			}
		})
	}()

	// Wait for the subscription to register before publishing.
	require.Eventually(t, func() bool {
		channels, err := client.PubSubChannels(ctx, Channel).Result()
		return err == nil && len(channels) > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.PublishChanged(ctx))

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not stop on cancel")
	}
}

func TestPublishWithoutSubscribersIsFine(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := NewRedis(client)
	assert.NoError(t, f.PublishChanged(context.Background()))
}

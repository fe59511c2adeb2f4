package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/wastenutrient/internal/domain/providers"
)

// Port 1 is closed, so every command fails fast with a connection error.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisAdapter_BackendErrorsAreNotMisses(t *testing.T) {
	adapter := NewRedisAdapter(unreachableClient(t), "test:")
	ctx := context.Background()

	_, err := adapter.Get(ctx, "prediction:abc")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, providers.ErrCacheMiss))

	err = adapter.Set(ctx, "prediction:abc", []byte("{}"), 60)
	assert.Error(t, err)
}

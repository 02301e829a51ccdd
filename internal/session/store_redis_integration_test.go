//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/platform/config"
	platformredis "btoflow/internal/platform/redis"
	"btoflow/pkg/testutil/containers"
)

func TestRedisSessionStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := platformredis.New(config.RedisConfig{URL: rc.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)

	t.Run("put exists revoke", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "abc", "S1234567A", time.Minute))

		live, err := store.Exists(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, live)

		require.NoError(t, store.Revoke(ctx, "abc"))
		live, err = store.Exists(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, live)
	})

	t.Run("ttl expires sessions", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "short", "S1234567A", 500*time.Millisecond))

		require.Eventually(t, func() bool {
			live, err := store.Exists(ctx, "short")
			return err == nil && !live
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("unknown session", func(t *testing.T) {
		live, err := store.Exists(ctx, "never-created")
		require.NoError(t, err)
		assert.False(t, live)
	})
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"pool-stats-lab/internal/storage"
)

// setupTestCache starts a Redis container and returns a connected cache.
func setupTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	cache, err := NewCache(ctx, Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)

	cleanup := func() {
		cache.Close()
		_ = container.Terminate(ctx)
	}
	return cache, cleanup
}

func TestCache_SetGetDelete(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "rows", []byte("payload"), time.Minute))

	got, err := cache.Get(ctx, "rows")
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))

	require.NoError(t, cache.Delete(ctx, "rows"))
	_, err = cache.Get(ctx, "rows")
	require.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
}

func TestCache_Expiry(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), 200*time.Millisecond))
	time.Sleep(400 * time.Millisecond)

	_, err := cache.Get(ctx, "short")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCache_EmptyKey(t *testing.T) {
	cache := NewCacheFromClient(nil)
	ctx := context.Background()

	require.ErrorIs(t, cache.Set(ctx, "", []byte("v"), 0), storage.ErrInvalidInput)
	_, err := cache.Get(ctx, "")
	require.ErrorIs(t, err, storage.ErrInvalidInput)
	require.ErrorIs(t, cache.Delete(ctx, ""), storage.ErrInvalidInput)
}

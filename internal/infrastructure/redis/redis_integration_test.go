//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/dotacion-api/internal/infrastructure/redis"
	"github.com/jhoicas/dotacion-api/pkg/config"
)

func newRedisConfig(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "no se pudo iniciar el contenedor Redis")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return config.RedisConfig{Addr: endpoint}
}

func TestRedis_IdempotencyStore(t *testing.T) {
	ctx := context.Background()
	client, err := redis.NewClient(ctx, newRedisConfig(t))
	require.NoError(t, err)
	defer client.Close()

	store := redis.NewIdempotencyStore(client, "test:")
	first, err := store.MarkProcessed(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, store.Forget(ctx, "k1"))
	retry, err := store.MarkProcessed(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, retry)
}

func TestRedis_JobLockerExclusivo(t *testing.T) {
	ctx := context.Background()
	client, err := redis.NewClient(ctx, newRedisConfig(t))
	require.NoError(t, err)
	defer client.Close()

	a := redis.NewJobLocker(client)
	b := redis.NewJobLocker(client)

	release, ok, err := a.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "la otra réplica no debe obtener el lock")

	require.NoError(t, release(ctx))
	releaseB, ok, err := b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, releaseB(ctx))
}

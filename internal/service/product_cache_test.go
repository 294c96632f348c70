//go:build integration

package service

// Run with: go test -tags integration ./internal/service/... -v

import (
	"context"
	"testing"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestProductCache_FillAndInvalidate(t *testing.T) {
	cache := productCache{rdb: newTestRedis(t)}
	ctx := context.Background()
	id := uuid.New()

	cache.set(ctx, id, &dto.ProductResponse{ID: id.String(), Name: "A"}, cache.generation(ctx, id))
	got, ok := cache.get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)

	cache.invalidate(ctx, id)
	_, ok = cache.get(ctx, id)
	assert.False(t, ok)
}

// A response loaded before a write must not land in the cache after that
// write invalidated the product.
func TestProductCache_StaleFillSkipped(t *testing.T) {
	cache := productCache{rdb: newTestRedis(t)}
	ctx := context.Background()
	id := uuid.New()

	gen := cache.generation(ctx, id)
	// concurrent stock movement commits and invalidates here
	cache.invalidate(ctx, id)
	cache.set(ctx, id, &dto.ProductResponse{ID: id.String(), Name: "stale"}, gen)

	_, ok := cache.get(ctx, id)
	assert.False(t, ok)

	// a fresh read after the write fills normally
	cache.set(ctx, id, &dto.ProductResponse{ID: id.String(), Name: "fresh"}, cache.generation(ctx, id))
	got, ok := cache.get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "fresh", got.Name)
}

func TestProductCache_NilClientIsNoop(t *testing.T) {
	cache := productCache{}
	ctx := context.Background()
	id := uuid.New()
	assert.Equal(t, "", cache.generation(ctx, id))
	cache.set(ctx, id, &dto.ProductResponse{ID: id.String()}, "")
	cache.invalidate(ctx, id)
	_, ok := cache.get(ctx, id)
	assert.False(t, ok)
}

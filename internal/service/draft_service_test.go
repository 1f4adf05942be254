package service

import (
	"context"
	"testing"

	"samplepedia/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftService(t *testing.T) (*DraftService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewDraftService(rdb), mr
}

func TestDraftService_SaveAndGet(t *testing.T) {
	svc, mr := newDraftService(t)
	ctx := context.Background()

	err := svc.Save(ctx, 7, map[string]string{
		"sha256":       "abc123",
		"goal":         "Identify the C2 protocol",
		"difficulty":   "medium",
		"nonsense":     "dropped",
		"download_link": "",
	})
	require.NoError(t, err)

	draft, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"sha256":     "abc123",
		"goal":       "Identify the C2 protocol",
		"difficulty": "medium",
	}, draft)

	// Unknown fields and empty values never reach Redis.
	assert.False(t, mr.Exists("draft:task:8"))

	ttl := mr.TTL(cache.DraftKey(7))
	assert.Equal(t, cache.DraftTTL, ttl)
}

func TestDraftService_Save_NoFields(t *testing.T) {
	svc, _ := newDraftService(t)

	err := svc.Save(context.Background(), 7, map[string]string{"bogus": "x"})
	assertValidationError(t, err)
}

func TestDraftService_Clear(t *testing.T) {
	svc, mr := newDraftService(t)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, 7, map[string]string{"sha256": "abc123"}))
	require.True(t, mr.Exists(cache.DraftKey(7)))

	require.NoError(t, svc.Clear(ctx, 7))
	assert.False(t, mr.Exists(cache.DraftKey(7)))

	draft, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, draft)
}

func TestDraftService_WithoutRedis(t *testing.T) {
	svc := NewDraftService(nil)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, 7, map[string]string{"sha256": "abc123"}))
	require.NoError(t, svc.Clear(ctx, 7))

	draft, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, draft)
}

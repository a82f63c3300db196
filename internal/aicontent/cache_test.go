package aicontent

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *DescriptionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDescriptionCache(client, time.Minute)
}

func TestKeyIsDeterministic(t *testing.T) {
	a := Key("description", "a thorny, six-legged grazer")
	b := Key("description", "a thorny, six-legged grazer")
	assert.Equal(t, a, b)
}

func TestKeyDistinguishesKindAndPrompt(t *testing.T) {
	base := Key("description", "prompt one")
	assert.NotEqual(t, base, Key("species_name", "prompt one"), "differing kind should change the cache key")
	assert.NotEqual(t, base, Key("description", "prompt two"), "differing prompt should change the cache key")
}

func TestDescriptionCacheSetThenGet(t *testing.T) {
	cache := newTestCache(t)
	key := Key("description", "a burrowing tuber-eater")

	require.NoError(t, cache.Set(t.Context(), key, "a squat, clawed burrower"))
	got, err := cache.Get(t.Context(), key)
	require.NoError(t, err)
	assert.Equal(t, "a squat, clawed burrower", got)
}

func TestDescriptionCacheGetMissReturnsRedisNil(t *testing.T) {
	cache := newTestCache(t)
	_, err := cache.Get(t.Context(), Key("description", "never cached"))
	assert.ErrorIs(t, err, redis.Nil)
}

func TestGenerateCachedHitsCacheWithoutCallingTransport(t *testing.T) {
	cache := newTestCache(t)
	req := ContentRequest{Kind: "description", Prompt: "a reef-dwelling filter feeder"}
	key := Key(req.Kind, req.Prompt)
	require.NoError(t, cache.Set(t.Context(), key, "cached text"))

	called := false
	pub := &fakePublisher{respond: func(subj string, data []byte, timeout time.Duration) (*nats.Msg, error) {
		called = true
		resp, _ := json.Marshal(ContentResponse{Text: "live text"})
		return &nats.Msg{Data: resp}, nil
	}}
	c := NewClient(pub, "ai.content")

	text, err := c.GenerateCached(t.Context(), cache, req)
	require.NoError(t, err)
	assert.Equal(t, "cached text", text)
	assert.False(t, called, "a cache hit should skip the live NATS round trip")
}

func TestGenerateCachedFallsThroughToLiveCallWithNilCache(t *testing.T) {
	pub := &fakePublisher{respond: func(subj string, data []byte, timeout time.Duration) (*nats.Msg, error) {
		resp, _ := json.Marshal(ContentResponse{Text: "live response"})
		return &nats.Msg{Data: resp}, nil
	}}
	c := NewClient(pub, "ai.content")

	text, err := c.GenerateCached(t.Context(), nil, ContentRequest{Kind: "description", Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "live response", text)
}

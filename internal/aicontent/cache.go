package aicontent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DescriptionCache implements a cache-aside layer over generated species
// content, keyed by a hash of the request's kind+prompt, so repeated
// speciation events along the same differentiation axis don't re-pay the
// AI round trip for near-identical prompts within the TTL window.
type DescriptionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDescriptionCache wires a cache against a live redis client. A zero
// ttl defaults to 24h, long enough to span a single simulation run.
func NewDescriptionCache(client *redis.Client, ttl time.Duration) *DescriptionCache {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &DescriptionCache{client: client, ttl: ttl}
}

// Key derives a stable cache key from the request kind and prompt text.
func Key(kind, prompt string) string {
	sum := sha256.Sum256([]byte(kind + "\x00" + prompt))
	return fmt.Sprintf("aicontent:%s:%s", kind, hex.EncodeToString(sum[:])[:32])
}

// Get retrieves a cached response text. Returns redis.Nil on cache miss.
func (c *DescriptionCache) Get(ctx context.Context, key string) (string, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return "", err
	}
	var resp ContentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Set caches a response text under key with the configured TTL.
func (c *DescriptionCache) Set(ctx context.Context, key, text string) error {
	data, err := json.Marshal(ContentResponse{Text: text})
	if err != nil {
		return fmt.Errorf("marshaling cached content: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// GenerateCached wraps Client.Generate with a cache-aside lookup: a hit
// skips the NATS round trip entirely, a miss falls through to the live
// call and populates the cache in the background so the caller never
// blocks on the write.
func (c *Client) GenerateCached(ctx context.Context, cache *DescriptionCache, req ContentRequest) (string, error) {
	if cache == nil {
		return c.Generate(ctx, req)
	}

	key := Key(req.Kind, req.Prompt)
	if text, err := cache.Get(ctx, key); err == nil {
		return text, nil
	} else if err != redis.Nil {
		// unexpected cache error; fall through to a live call rather than fail
	}

	text, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	go func() {
		_ = cache.Set(context.Background(), key, text)
	}()

	return text, nil
}

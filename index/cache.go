package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/kataras/golog"
	"github.com/redis/go-redis/v9"
)

// EmbedCache caches embeddings in Redis, keyed by the SHA-256 of the
// chunk text. Cache failures are logged and treated as misses so the
// pipeline never depends on Redis being up.
type EmbedCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// CacheOptions configures the embedding cache.
type CacheOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // key prefix, default "ragsql:embed:"
	TTL      time.Duration // default 0 (no expiration)
}

// NewEmbedCache connects an embedding cache to Redis.
func NewEmbedCache(opts CacheOptions) *EmbedCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "ragsql:embed:"
	}

	return &EmbedCache{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close releases the Redis connection.
func (c *EmbedCache) Close() error {
	return c.client.Close()
}

func (c *EmbedCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for text, if any.
func (c *EmbedCache) Get(ctx context.Context, text string) ([]float32, bool) {
	data, err := c.client.Get(ctx, c.key(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		golog.Warnf("embedding cache read failed: %v", err)
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		golog.Warnf("embedding cache entry corrupt: %v", err)
		return nil, false
	}
	return embedding, true
}

// Put stores the embedding for text.
func (c *EmbedCache) Put(ctx context.Context, text string, embedding []float32) {
	data, err := json.Marshal(embedding)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(text), data, c.ttl).Err(); err != nil {
		golog.Warnf("embedding cache write failed: %v", err)
	}
}

package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nao1215/contentscale/internal/model"
)

// DefaultCacheTTL is how long a rendered page stays cached.
const DefaultCacheTTL = time.Hour

// ErrCacheMiss is returned by a PageStore when the key is absent.
var ErrCacheMiss = errors.New("render: cache miss")

// PageStore stores serialized pages by key.
type PageStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// cachedPage carries the HTML, which model.Page leaves out of JSON.
type cachedPage struct {
	Page *model.Page `json:"page"`
	HTML string      `json:"html"`
}

// CachedRenderer serves repeated renders of the same URL from a PageStore.
// Store errors are logged and the page is rendered as if the cache were absent.
type CachedRenderer struct {
	next   Renderer
	store  PageStore
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// CacheOption configures a CachedRenderer.
type CacheOption func(*CachedRenderer)

// WithCacheTTL sets the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedRenderer) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCachePrefix sets the key prefix.
func WithCachePrefix(prefix string) CacheOption {
	return func(c *CachedRenderer) {
		c.prefix = prefix
	}
}

// WithCacheLogger sets the logger for store errors.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedRenderer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedRenderer wraps next with store.
func NewCachedRenderer(next Renderer, store PageStore, opts ...CacheOption) *CachedRenderer {
	c := &CachedRenderer{
		next:   next,
		store:  store,
		ttl:    DefaultCacheTTL,
		prefix: "contentscale:page:",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the wrapped renderer's name.
func (c *CachedRenderer) Name() string {
	return c.next.Name()
}

// Key returns the store key of rawURL.
func (c *CachedRenderer) Key(rawURL string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(rawURL)))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Render returns the cached page for rawURL, rendering and storing it on a miss.
func (c *CachedRenderer) Render(ctx context.Context, rawURL string) (*model.Page, error) {
	key := c.Key(rawURL)

	if page, ok := c.lookup(ctx, key, rawURL); ok {
		return page, nil
	}

	page, err := c.next.Render(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedPage{Page: page, HTML: page.HTML})
	if err != nil {
		c.logger.Warn("failed to encode page for cache", "url", rawURL, "error", err)
		return page, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("failed to store page in cache", "url", rawURL, "error", err)
	}
	return page, nil
}

func (c *CachedRenderer) lookup(ctx context.Context, key, rawURL string) (*model.Page, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("failed to read page cache", "url", rawURL, "error", err)
		}
		return nil, false
	}

	var entry cachedPage
	if err := json.Unmarshal(data, &entry); err != nil || entry.Page == nil {
		c.logger.Warn("discarding unreadable cache entry", "url", rawURL, "error", err)
		return nil, false
	}

	page := entry.Page
	page.HTML = entry.HTML
	page.FromCache = true
	c.logger.Debug("page served from cache", "url", rawURL, "hash", page.Hash)
	return page, true
}

// RedisStore is a PageStore backed by Redis.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore connects to the Redis server at addr and verifies it with PING.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value of key, or ErrCacheMiss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores value under key for ttl.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

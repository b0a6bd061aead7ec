package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
)

const (
	feedPrefix    = "factcheck:feed:"
	articlePrefix = "factcheck:article:"
	resultPrefix  = "factcheck:result:"

	feedTTL    = time.Hour
	articleTTL = 30 * time.Minute
	resultTTL  = 10 * time.Minute
)

// Cache holds intermediate pipeline products across checks. All methods are
// best-effort: a miss and a backend failure look the same to callers.
type Cache interface {
	GetFeed(ctx context.Context, claim, region string) (items []newsfetch.Item, feedURL string, ok bool)
	PutFeed(ctx context.Context, claim, region string, items []newsfetch.Item, feedURL string)
	GetArticle(ctx context.Context, url string) (string, bool)
	PutArticle(ctx context.Context, url, text string)
	GetResult(ctx context.Context, key string) (*Result, bool)
	PutResult(ctx context.Context, key string, res *Result)
}

// CacheKey identifies a full check result by its request parameters.
func CacheKey(claim, region string, maxArticles, freshnessHours int) string {
	return hashKey(claim, region, fmt.Sprint(maxArticles), fmt.Sprint(freshnessHours))
}

func hashKey(parts ...string) string {
	h := xxhash.NewS64(0)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// RedisCache backs Cache with Redis. A nil client degrades to a no-op.
type RedisCache struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisCache(rdb *redis.Client, log *zap.Logger) *RedisCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, log: log}
}

type feedEntry struct {
	FeedURL string           `json:"feed_url"`
	Items   []newsfetch.Item `json:"items"`
}

func (c *RedisCache) GetFeed(ctx context.Context, claim, region string) ([]newsfetch.Item, string, bool) {
	var entry feedEntry
	if !c.getJSON(ctx, feedPrefix+hashKey(claim, region), &entry) {
		return nil, "", false
	}
	return entry.Items, entry.FeedURL, true
}

func (c *RedisCache) PutFeed(ctx context.Context, claim, region string, items []newsfetch.Item, feedURL string) {
	c.putJSON(ctx, feedPrefix+hashKey(claim, region), feedEntry{FeedURL: feedURL, Items: items}, feedTTL)
}

func (c *RedisCache) GetArticle(ctx context.Context, url string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	text, err := c.rdb.Get(ctx, articlePrefix+hashKey(url)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("article cache read failed", zap.Error(err))
		}
		return "", false
	}
	return text, true
}

func (c *RedisCache) PutArticle(ctx context.Context, url, text string) {
	if c == nil || c.rdb == nil || text == "" {
		return
	}
	if err := c.rdb.Set(ctx, articlePrefix+hashKey(url), text, articleTTL).Err(); err != nil {
		c.log.Debug("article cache write failed", zap.Error(err))
	}
}

func (c *RedisCache) GetResult(ctx context.Context, key string) (*Result, bool) {
	var res Result
	if !c.getJSON(ctx, resultPrefix+key, &res) {
		return nil, false
	}
	return &res, true
}

func (c *RedisCache) PutResult(ctx context.Context, key string, res *Result) {
	c.putJSON(ctx, resultPrefix+key, res, resultTTL)
}

func (c *RedisCache) getJSON(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Debug("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *RedisCache) putJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stampPrefix  = "factcheck:last:"
	streamChecks = "factcheck.checks"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// StampSession marks a check attempt for the session. It returns false when
// another attempt already landed inside the window.
func StampSession(ctx context.Context, rdb *redis.Client, sessionID string, window time.Duration) bool {
	if rdb == nil {
		return true
	}
	ok, err := rdb.SetNX(ctx, stampPrefix+sessionID, time.Now().Unix(), window).Result()
	if err != nil {
		return true
	}
	return ok
}

// PublishCheck emits a finished check onto the stream the Discord bot reads.
func PublishCheck(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamChecks,
		Values: payload,
	}).Result()
	return err
}

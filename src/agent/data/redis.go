package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verisight-labs/trustagent/src/agent/types"
)

const runCachePrefix = "trustagent:run:"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// RunCacheKey derives the cache key for one request. Uploads are excluded
// from caching entirely, so the key covers the full decision surface.
func RunCacheKey(prompt, websiteURL, websiteText string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write([]byte(websiteURL))
	h.Write([]byte{0})
	h.Write([]byte(websiteText))
	return runCachePrefix + hex.EncodeToString(h.Sum(nil))
}

// GetCachedRun returns a previously stored response for key, or false.
func GetCachedRun(ctx context.Context, rdb *redis.Client, key string) (types.AgentRunResponse, bool) {
	var resp types.AgentRunResponse
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("data: run cache get failed: %v", err)
		}
		return resp, false
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		log.Printf("data: run cache entry malformed, ignoring: %v", err)
		return resp, false
	}
	return resp, true
}

// PutCachedRun stores resp under key with ttl; best effort.
func PutCachedRun(ctx context.Context, rdb *redis.Client, key string, resp types.AgentRunResponse, ttl time.Duration) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("data: run cache set failed: %v", err)
	}
}

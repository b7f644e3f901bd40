// Manual check of the optional storage backends: writes one scan row to
// MySQL and round-trips one cached run through Redis.
//
// Run from repo root:
//
//	MYSQL_DSN=... REDIS_URL=... go run ./scripts/storage/test_storage.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/verisight-labs/trustagent/src/agent/data"
	"github.com/verisight-labs/trustagent/src/agent/types"
)

func main() {
	log.SetFlags(0)

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		log.Fatal("MYSQL_DSN not set")
	}
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL not set")
	}

	db := data.MustMySQL(dsn)
	history, err := data.NewHistory(db)
	if err != nil {
		log.Fatalf("history init: %v", err)
	}

	sample := types.AgentRunResponse{
		TrustScore:            42,
		TrustScoreExplanation: "storage smoke test",
		FakeFacts:             []types.Fact{{Fact: "test claim", TruthValue: false}},
		TrueFacts:             []types.Fact{},
		FakeMedia:             []types.MediaItem{},
		TrueMedia:             []types.MediaItem{},
	}
	history.Record("https://example.test/storage-check", sample)
	log.Print("mysql: scan row recorded")

	rdb := data.MustRedis(redisURL)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := data.RunCacheKey("storage smoke", "https://example.test/storage-check", "")
	data.PutCachedRun(ctx, rdb, key, sample, time.Minute)
	got, ok := data.GetCachedRun(ctx, rdb, key)
	if !ok {
		log.Fatal("redis: cached run not found after write")
	}
	if got.TrustScore != sample.TrustScore {
		log.Fatalf("redis: trust_score mismatch: %d != %d", got.TrustScore, sample.TrustScore)
	}
	log.Print("redis: cached run round-tripped")

	log.Print("✓ storage backends ok")
}

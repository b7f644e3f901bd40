// Minimal end-to-end integration test for the trust agent API.
//
// Run from repo root with the agent and its backends up:
//
//	go run ./scripts/api/test_api.go
//
// Environment:
//
//	API_URL   – base URL (default http://localhost:8080/v1)
//	API_KEY   – key to authenticate with (optional)
//	REDIS_URL – redis URL to verify caching (optional)
//
// Flow:
//
//  1. GET  /healthz            → server is up
//  2. POST /agent/run          → full evaluation, assert trust_score
//  3. POST /agent/run (again)  → assert the cached verdict matches
//  4. REDIS                    → assert a cache key was written
//  5. POST /agent/explain      → reject an unknown explanation type
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	baseURL  = getenv("API_URL", "http://localhost:8080/v1")
	apiKey   = os.Getenv("API_KEY")
	redisURL = os.Getenv("REDIS_URL")
)

const sampleText = "A new study shows that drinking two cups of coffee a day cures all forms of cancer."

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	checkHealth()

	first := runAgent()
	if first.TrustScore < 0 || first.TrustScore > 100 {
		log.Fatalf("run: trust_score out of range: %d", first.TrustScore)
	}
	if first.TrustScoreExplanation == "" {
		log.Fatal("run: empty trust_score_explanation")
	}

	second := runAgent()
	if second.TrustScore != first.TrustScore {
		log.Fatalf("run: cached score mismatch: %d != %d", second.TrustScore, first.TrustScore)
	}

	if redisURL != "" {
		checkCacheKey()
	}

	checkExplainValidation()

	fmt.Println("✓ all endpoints passed")
}

func checkHealth() {
	resp, err := http.Get(baseURL[:len(baseURL)-len("/v1")] + "/healthz")
	if err != nil {
		log.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("healthz: status %d", resp.StatusCode)
	}
}

type runResponse struct {
	TrustScore            int      `json:"trust_score"`
	TrustScoreExplanation string   `json:"trust_score_explanation"`
	AITextScore           *float64 `json:"ai_text_score"`
	FakeFacts             []any    `json:"fake_facts"`
	TrueFacts             []any    `json:"true_facts"`
}

func runAgent() runResponse {
	var resp runResponse
	doJSON("POST", "/agent/run", map[string]any{
		"api_key":         apiKey,
		"prompt":          "Is this claim trustworthy?",
		"website_content": sampleText,
	}, &resp, http.StatusOK)
	fmt.Printf("run: trust_score=%d fake_facts=%d true_facts=%d\n",
		resp.TrustScore, len(resp.FakeFacts), len(resp.TrueFacts))
	return resp
}

func checkCacheKey() {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	keys, err := rdb.Keys(ctx, "trustagent:run:*").Result()
	if err != nil {
		log.Fatalf("redis keys: %v", err)
	}
	if len(keys) == 0 {
		log.Fatal("redis: no cached run keys found")
	}
	fmt.Printf("cache: %d key(s) present\n", len(keys))
}

func checkExplainValidation() {
	var resp map[string]any
	doJSON("POST", "/agent/explain", map[string]any{
		"api_key":          apiKey,
		"response":         map[string]any{"trust_score": 50},
		"explanation_type": "hologram",
	}, &resp, http.StatusBadRequest)
}

func doJSON(method, path string, body any, out any, wantStatus int) {
	raw, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("%s %s: marshal: %v", method, path, err)
	}
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: status %d, want %d", method, path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

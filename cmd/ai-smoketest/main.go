// Manual smoke test for the configured LLM endpoint. Sends the two prompts
// the agent depends on (action planning and trust scoring) and prints the
// raw model output.
//
// Run from repo root:
//
//	go run ./cmd/ai-smoketest -mode both
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/verisight-labs/trustagent/src/agent/config"
	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/llmjson"
)

var (
	modeFlag    = flag.String("mode", "both", "plan|score|both")
	modelFlag   = flag.String("model", "", "Override model name")
	promptFlag  = flag.String("prompt", defaultPrompt, "User prompt for plan mode")
	timeoutFlag = flag.Duration("timeout", 45*time.Second, "Per-call timeout")
	tempFlag    = flag.Float64("temp", 0.2, "Completion temperature")
	maxLenFlag  = flag.Int("max-bytes", 1200, "Maximum bytes of output to print (0=unlimited)")
)

const defaultPrompt = `Evaluate this content for trustworthiness.

Website text: "A new study shows that drinking two cups of coffee a day cures all forms of cancer."

Return a JSON array of verification actions.`

const defaultEvidence = `Summary of safety checks:

[ai_text_detection]: overall_score=0.82 (probability text is AI-generated; 1.0 = fully AI, 0.0 = human)
[fact_check]: truth_value=false explanation=No clinical evidence supports this claim.

Output only a JSON object: {"trust_score": <0-100>, "explanation": "<2-4 sentences>"}`

func main() {
	log.SetFlags(0)
	flag.Parse()

	cfg := config.Load()
	client := ai.NewClient(ai.FactoryConfig{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          pickFirst(*modelFlag, cfg.LLMModel),
		Temperature:    *tempFlag,
		TimeoutSeconds: cfg.LLMTimeoutSeconds,
	})

	switch *modeFlag {
	case "plan":
		runPlan(client)
	case "score":
		runScore(client)
	case "both":
		runPlan(client)
		runScore(client)
	default:
		log.Fatalf("invalid mode: %q", *modeFlag)
	}
}

func runPlan(client ai.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, *promptFlag, ai.Options{
		SystemPrompt: "You are a content verification planner. Output ONLY a JSON array of actions. Valid actions: ai_text_detection, ai_media_detection, fact_check, information_graph, content_safety.",
	})
	if err != nil {
		fmt.Printf("plan FAILED: %v\n", err)
		return
	}
	fmt.Printf("=== plan (%.1fs) ===\n%s\n", time.Since(start).Seconds(), truncate(reply, *maxLenFlag))
	if _, err := llmjson.ExtractArray(reply, "actions"); err != nil {
		fmt.Printf("plan WARNING: output is not a parseable action array: %v\n", err)
	}
}

func runScore(client ai.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, defaultEvidence, ai.Options{
		SystemPrompt: "You are a trust evaluator. Output ONLY a JSON object with trust_score (0-100) and explanation.",
	})
	if err != nil {
		fmt.Printf("score FAILED: %v\n", err)
		return
	}
	fmt.Printf("=== score (%.1fs) ===\n%s\n", time.Since(start).Seconds(), truncate(reply, *maxLenFlag))
	if _, err := llmjson.ExtractObject(reply); err != nil {
		fmt.Printf("score WARNING: output is not a parseable verdict object: %v\n", err)
	}
}

func pickFirst(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "\n[...truncated]"
}

// Package synthesis renders the collected evidence as text, asks the
// scoring model for a verdict, and guarantees a score comes back no matter
// what the model returns.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/llmjson"
)

const trustScoreSystemPrompt = `You are a trust evaluator. Given the results of safety checks (AI text likelihood, media deepfake scores, fact checks, information graph), produce:
- trust_score: integer 0-100 (0 = completely untrustworthy, 100 = fully trustworthy)
- explanation: 2-4 sentence human-readable explanation citing the specific evidence (AI text score, fake/true facts, media scores, information graph status)

Output ONLY a JSON object with exactly these two keys: {"trust_score": <0-100>, "explanation": "<text>"}. No markdown, no extra keys.`

// DefaultExplanation accompanies any score the model did not explain.
const DefaultExplanation = "Trust score estimated based on available checks."

// DefaultScore is the verdict of last resort.
const DefaultScore = 50

var scoreRe = regexp.MustCompile(`\b(100|\d{1,2})\b`)

type Synthesizer struct {
	llm ai.Client
}

func New(llm ai.Client) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Score summarizes the results, asks the model for a verdict, and falls
// back through number scanning to the default. It cannot fail: the score is
// the terminal deliverable of the pipeline.
func (s *Synthesizer) Score(ctx context.Context, results []types.ActionResult) (int, string) {
	log.Printf("synthesis: requesting trust score (results=%d)", len(results))

	userMessage := BuildSummary(results) +
		"\n\nOutput only a JSON object: {\"trust_score\": <0-100>, \"explanation\": \"<2-4 sentences>\"}"
	content, err := s.llm.Complete(ctx, userMessage, ai.Options{SystemPrompt: trustScoreSystemPrompt})
	if err != nil {
		log.Printf("synthesis: model call failed, using default %d: %v", DefaultScore, err)
		return DefaultScore, DefaultExplanation
	}
	if content == "" {
		log.Printf("synthesis: model returned empty content, using default %d", DefaultScore)
		return DefaultScore, DefaultExplanation
	}

	if obj, err := llmjson.ExtractObject(content); err == nil {
		if raw, ok := obj["trust_score"].(float64); ok {
			score := clamp(int(raw))
			explanation, _ := obj["explanation"].(string)
			if explanation == "" {
				explanation = DefaultExplanation
			}
			log.Printf("synthesis: parsed trust_score=%d", score)
			return score, explanation
		}
	}

	// No valid object: take the first standalone number in range from the
	// raw text.
	for _, m := range scoreRe.FindAllString(content, -1) {
		if v, err := strconv.Atoi(m); err == nil && v >= 0 && v <= 100 {
			log.Printf("synthesis: recovered trust_score=%d from raw text", v)
			return v, DefaultExplanation
		}
	}

	log.Printf("synthesis: could not parse trust score, using default %d", DefaultScore)
	return DefaultScore, DefaultExplanation
}

// BuildSummary renders every result as one kind-tagged line with bounded
// length, so the scoring prompt stays small no matter how big the payloads
// were.
func BuildSummary(results []types.ActionResult) string {
	parts := []string{"Summary of safety checks:\n"}
	for _, r := range results {
		switch r.Kind {
		case planner.KindAITextDetection:
			parts = append(parts, fmt.Sprintf(
				"[ai_text_detection]: overall_score=%v (probability text is AI-generated; 1.0 = fully AI, 0.0 = human)",
				r.Payload["overall_score"]))
		case planner.KindAIMediaDetection:
			chunks, _ := r.Payload["chunks"].([]any)
			scores := make([]string, 0, len(chunks))
			for i, raw := range chunks {
				c, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				index := any(i)
				if v, ok := c["index"]; ok {
					index = v
				}
				scores = append(scores, fmt.Sprintf("chunk%v: ai=%v deepfake=%v",
					index, c["ai_generated_score"], c["deepfake_score"]))
			}
			parts = append(parts, fmt.Sprintf("[ai_media_detection]: media_url=%v media_type=%v scores=[%s]",
				r.Payload["media_url"], r.Payload["media_type"], strings.Join(scores, ", ")))
		case planner.KindFactCheck:
			items, _ := r.Payload["facts"].([]any)
			for _, raw := range items {
				item, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				explanation, _ := item["explanation"].(string)
				parts = append(parts, fmt.Sprintf("[fact_check]: truth_value=%v explanation=%s",
					item["truth_value"], truncate(explanation, 300)))
			}
		case planner.KindInformationGraph:
			parts = append(parts, fmt.Sprintf("[information_graph]: nodes=%d edges=%d related_articles=%d",
				count(r.Payload["nodes"]), count(r.Payload["edges"]), count(r.Payload["related_articles"])))
		case planner.KindContentSafety:
			if msg := r.Err(); msg != "" {
				parts = append(parts, fmt.Sprintf("[content_safety]: error=%s", msg))
			} else {
				parts = append(parts, fmt.Sprintf("[content_safety]: pil=%v harmful=%v unwanted=%v",
					r.Payload["pil"], r.Payload["harmful"], r.Payload["unwanted"]))
			}
		default:
			raw, _ := json.Marshal(r.Payload)
			parts = append(parts, fmt.Sprintf("[%s]: %s", r.Kind, truncate(string(raw), 500)))
		}
	}
	return strings.Join(parts, "\n")
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// truncate cuts on rune boundaries so multibyte explanations never end in
// a broken sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func count(v any) int {
	arr, _ := v.([]any)
	return len(arr)
}

package detectors

import (
	"context"
	"log"
	"time"
)

// TextDetector calls the AI-text-likelihood backend.
type TextDetector struct {
	client
}

func NewTextDetector(baseURL string, timeout time.Duration) *TextDetector {
	return &TextDetector{client: newClient(baseURL, timeout)}
}

// Detect scores text for AI-generation likelihood. Failures come back as an
// error payload, never as a Go error.
func (d *TextDetector) Detect(ctx context.Context, text string) map[string]any {
	stub := func(msg string) map[string]any {
		return map[string]any{"error": msg, "overall_score": nil, "sentence_scores": []any{}}
	}
	if !d.configured() {
		log.Printf("detectors: ai-text skipped: detector URL not set")
		return stub("AI_TEXT_DETECTOR_URL not set")
	}
	out, err := d.postJSON(ctx, "/v1/ai-detect", map[string]any{"text": text})
	if err != nil {
		log.Printf("detectors: ai-text error: %v", err)
		return stub(err.Error())
	}
	log.Printf("detectors: ai-text ok overall_score=%v", out["overall_score"])
	return out
}

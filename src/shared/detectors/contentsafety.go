package detectors

import (
	"context"
	"log"
	"time"
)

// SafetyChecker calls the content-safety backend (privacy leakage, harmful
// content, unwanted connections).
type SafetyChecker struct {
	client
}

func NewSafetyChecker(baseURL string, timeout time.Duration) *SafetyChecker {
	return &SafetyChecker{client: newClient(baseURL, timeout)}
}

func (s *SafetyChecker) Check(ctx context.Context, websiteText string) map[string]any {
	stub := func(msg string) map[string]any {
		return map[string]any{"error": msg, "pil": nil, "harmful": nil, "unwanted": nil}
	}
	if !s.configured() {
		log.Printf("detectors: content-safety skipped: checker URL not set")
		return stub("CONTENT_SAFETY_URL not set")
	}
	log.Printf("detectors: content-safety text_len=%d", len(websiteText))
	out, err := s.postJSON(ctx, "/v1/content-safety/check", map[string]any{"website_text": websiteText})
	if err != nil {
		log.Printf("detectors: content-safety error: %v", err)
		return stub(err.Error())
	}
	log.Printf("detectors: content-safety ok pil=%v harmful=%v unwanted=%v",
		out["pil"], out["harmful"], out["unwanted"])
	return out
}

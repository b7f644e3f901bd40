package detectors

import (
	"context"
	"log"
	"time"
)

// FactChecker calls the fact-checking backend, one claim per call.
type FactChecker struct {
	client
}

func NewFactChecker(baseURL string, timeout time.Duration) *FactChecker {
	return &FactChecker{client: newClient(baseURL, timeout)}
}

// Check verifies one claim. The error stub carries truth_value=true so a
// backend outage never manufactures false facts.
func (f *FactChecker) Check(ctx context.Context, fact string) map[string]any {
	if !f.configured() {
		log.Printf("detectors: fact-check skipped: checker URL not set")
		return map[string]any{"error": "FACT_CHECKING_URL not set", "truth_value": true, "explanation": ""}
	}
	log.Printf("detectors: fact-check fact=%s", shorten(fact))
	out, err := f.postJSON(ctx, "/v1/fact/check", map[string]any{"fact": fact})
	if err != nil {
		log.Printf("detectors: fact-check error: %v", err)
		return map[string]any{"error": err.Error(), "truth_value": true, "explanation": err.Error()}
	}
	log.Printf("detectors: fact-check ok truth_value=%v", out["truth_value"])
	return out
}

package detectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Explainer proxies a finished run to the media-explanation backend, which
// renders it as a video, audio track or flashcard set. Unlike the detection
// clients it returns hard errors: the caller relays them as HTTP failures
// instead of folding them into a verdict.
type Explainer struct {
	client
}

func NewExplainer(baseURL string, timeout time.Duration) *Explainer {
	return &Explainer{client: newClient(baseURL, timeout)}
}

// Generate returns the rendered explanation body and its content type.
func (e *Explainer) Generate(ctx context.Context, response any, explanationType, userPrompt string) ([]byte, string, error) {
	if !e.configured() {
		return nil, "", fmt.Errorf("detectors: MEDIA_EXPLANATION_URL not set")
	}
	jsonBody, err := json.Marshal(map[string]any{
		"response":         response,
		"explanation_type": explanationType,
		"user_prompt":      userPrompt,
	})
	if err != nil {
		return nil, "", fmt.Errorf("detectors: marshal explain request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v1/explain/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, "", fmt.Errorf("detectors: create explain request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("detectors: explain request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("detectors: read explain response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("detectors: explain status %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, resp.Header.Get("Content-Type"), nil
}

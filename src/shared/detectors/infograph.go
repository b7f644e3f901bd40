package detectors

import (
	"context"
	"log"
	"time"
)

// GraphBuilder calls the information-graph backend.
type GraphBuilder struct {
	client
}

func NewGraphBuilder(baseURL string, timeout time.Duration) *GraphBuilder {
	return &GraphBuilder{client: newClient(baseURL, timeout)}
}

func (g *GraphBuilder) Build(ctx context.Context, websiteText, websiteURL string) map[string]any {
	stub := func(msg string) map[string]any {
		return map[string]any{"error": msg, "nodes": []any{}, "edges": []any{}, "related_articles": []any{}}
	}
	if !g.configured() {
		log.Printf("detectors: info-graph skipped: builder URL not set")
		return stub("INFO_GRAPH_URL not set")
	}
	log.Printf("detectors: info-graph url=%s text_len=%d", shorten(websiteURL), len(websiteText))
	out, err := g.postJSON(ctx, "/v1/info-graph/build", map[string]any{
		"website_text": websiteText,
		"website_url":  websiteURL,
	})
	if err != nil {
		log.Printf("detectors: info-graph error: %v", err)
		return stub(err.Error())
	}
	log.Printf("detectors: info-graph ok nodes=%d edges=%d",
		lenOf(out["nodes"]), lenOf(out["edges"]))
	return out
}

func lenOf(v any) int {
	arr, _ := v.([]any)
	return len(arr)
}

// Package classify reduces the raw result set of one run into typed
// evidence buckets. Everything here is a pure function over the collected
// results; classification depends only on deterministic keys, never on the
// order actions happened to finish in.
package classify

import (
	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/types"
)

// A chunk at or above this score on either axis marks the whole media item
// as fake. Fixed here rather than taken from the backend's own label so
// classification stays deterministic across providers.
const MediaFakeThreshold = 0.5

// FakeFacts collects fact-check items whose truth_value is exactly false.
func FakeFacts(results []types.ActionResult) []types.Fact {
	return factsWhere(results, false)
}

// TrueFacts collects fact-check items whose truth_value is exactly true.
func TrueFacts(results []types.ActionResult) []types.Fact {
	return factsWhere(results, true)
}

// factsWhere partitions strictly on a boolean truth_value. Items with a
// missing or non-boolean truth_value are dropped from both buckets:
// ambiguous evidence must not silently count as either.
func factsWhere(results []types.ActionResult, want bool) []types.Fact {
	out := []types.Fact{}
	for _, r := range results {
		if r.Kind != planner.KindFactCheck {
			continue
		}
		items, _ := r.Payload["facts"].([]any)
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok || item["error"] != nil {
				continue
			}
			tv, ok := item["truth_value"].(bool)
			if !ok || tv != want {
				continue
			}
			out = append(out, types.Fact{
				TruthValue:  tv,
				Explanation: str(item["explanation"]),
				Fact:        str(item["fact"]),
				Source:      str(item["source"]),
			})
		}
	}
	return out
}

// AITextScore returns the highest overall_score across all text-detection
// results: the worst-case detector wins. Nil when none produced a score.
func AITextScore(results []types.ActionResult) *float64 {
	var best *float64
	for _, r := range results {
		if r.Kind != planner.KindAITextDetection {
			continue
		}
		if s, ok := num(r.Payload["overall_score"]); ok {
			if best == nil || s > *best {
				v := s
				best = &v
			}
		}
	}
	return best
}

// FakeMedia collects media items where any chunk crosses the fake
// threshold.
func FakeMedia(results []types.ActionResult) []types.MediaItem {
	return mediaWhere(results, true)
}

// TrueMedia collects media items where no chunk crosses the fake threshold.
func TrueMedia(results []types.ActionResult) []types.MediaItem {
	return mediaWhere(results, false)
}

func mediaWhere(results []types.ActionResult, wantFake bool) []types.MediaItem {
	out := []types.MediaItem{}
	for _, r := range results {
		if r.Kind != planner.KindAIMediaDetection {
			continue
		}
		item, ok := mediaItem(r.Payload)
		if !ok {
			continue
		}
		if mediaIsFake(item) == wantFake {
			out = append(out, item)
		}
	}
	return out
}

// mediaItem maps one media payload into a MediaItem. Errored and skipped
// payloads carry no evidence and map to nothing.
func mediaItem(payload map[string]any) (types.MediaItem, bool) {
	if payload["error"] != nil || payload["skipped"] == true {
		return types.MediaItem{}, false
	}
	item := types.MediaItem{
		MediaURL:        str(payload["media_url"]),
		MediaType:       str(payload["media_type"]),
		DurationSeconds: numOr(payload["duration_seconds"], 0),
		ChunkSeconds:    int(numOr(payload["chunk_seconds"], 0)),
		Provider:        str(payload["provider"]),
		Chunks:          []types.MediaChunk{},
	}
	chunks, _ := payload["chunks"].([]any)
	for i, raw := range chunks {
		c, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		chunk := types.MediaChunk{
			Index:        int(numOr(c["index"], float64(i))),
			StartSeconds: numOr(c["start_seconds"], 0),
			EndSeconds:   numOr(c["end_seconds"], 0),
			Label:        str(c["label"]),
		}
		if s, ok := num(c["ai_generated_score"]); ok {
			chunk.AIGeneratedScore = &s
		}
		if s, ok := num(c["deepfake_score"]); ok {
			chunk.DeepfakeScore = &s
		}
		if raw, ok := c["provider_raw"].(map[string]any); ok {
			chunk.ProviderRaw = raw
		}
		item.Chunks = append(item.Chunks, chunk)
	}
	return item, true
}

func mediaIsFake(item types.MediaItem) bool {
	for _, c := range item.Chunks {
		if c.AIGeneratedScore != nil && *c.AIGeneratedScore >= MediaFakeThreshold {
			return true
		}
		if c.DeepfakeScore != nil && *c.DeepfakeScore >= MediaFakeThreshold {
			return true
		}
	}
	return false
}

// InfoGraphResult maps the first error-free information-graph result. A
// second occurrence means the plan degenerated and is ignored, not merged.
func InfoGraphResult(results []types.ActionResult) *types.InfoGraph {
	for _, r := range results {
		if r.Kind != planner.KindInformationGraph || r.Err() != "" {
			continue
		}
		graph := &types.InfoGraph{
			Nodes:           []types.InfoGraphNode{},
			Edges:           []types.InfoGraphEdge{},
			RelatedArticles: []types.InfoGraphArticle{},
		}
		if src, ok := r.Payload["source"].(map[string]any); ok && len(src) > 0 {
			graph.Source = &types.InfoGraphSource{URL: str(src["url"]), Title: str(src["title"])}
		}
		nodes, _ := r.Payload["nodes"].([]any)
		for _, raw := range nodes {
			n, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			node := types.InfoGraphNode{
				ID:          str(n["id"]),
				Type:        strOr(n["type"], "entity"),
				Label:       str(n["label"]),
				Description: str(n["description"]),
				SourceURL:   str(n["source_url"]),
			}
			graph.Nodes = append(graph.Nodes, node)
		}
		edges, _ := r.Payload["edges"].([]any)
		for _, raw := range edges {
			e, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			edge := types.InfoGraphEdge{
				ID:       str(e["id"]),
				Source:   str(e["source"]),
				Target:   str(e["target"]),
				Relation: strOr(e["relation"], "related_to"),
			}
			if w, ok := num(e["weight"]); ok {
				edge.Weight = &w
			}
			graph.Edges = append(graph.Edges, edge)
		}
		articles, _ := r.Payload["related_articles"].([]any)
		for _, raw := range articles {
			a, ok := raw.(map[string]any)
			if !ok || str(a["url"]) == "" {
				continue
			}
			graph.RelatedArticles = append(graph.RelatedArticles, types.InfoGraphArticle{
				URL:     str(a["url"]),
				Title:   str(a["title"]),
				Snippet: str(a["snippet"]),
			})
		}
		return graph
	}
	return nil
}

// ContentSafetyResult takes the first content-safety result carrying at
// least one non-null score.
func ContentSafetyResult(results []types.ActionResult) *types.ContentSafetyScores {
	for _, r := range results {
		if r.Kind != planner.KindContentSafety || r.Err() != "" {
			continue
		}
		pil, okPil := num(r.Payload["pil"])
		harmful, okHarmful := num(r.Payload["harmful"])
		unwanted, okUnwanted := num(r.Payload["unwanted"])
		if !okPil && !okHarmful && !okUnwanted {
			continue
		}
		return &types.ContentSafetyScores{PIL: pil, Harmful: harmful, Unwanted: unwanted}
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strOr(v any, def string) string {
	if s, _ := v.(string); s != "" {
		return s
	}
	return def
}

func num(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func numOr(v any, def float64) float64 {
	if f, ok := num(v); ok {
		return f
	}
	return def
}

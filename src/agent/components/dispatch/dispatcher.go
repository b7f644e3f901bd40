// Package dispatch resolves plan actions to backend calls and fans them out
// concurrently. Nothing in this package returns an error to its caller:
// every failure mode is encoded into the action's own payload so one bad
// action can never taint its siblings.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/verisight-labs/trustagent/src/agent/components/facts"
	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/components/uploads"
	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/detectors"
)

// Dispatcher routes one action to the matching backend client.
type Dispatcher struct {
	Text      *detectors.TextDetector
	Media     *detectors.MediaChecker
	Facts     *detectors.FactChecker
	Safety    *detectors.SafetyChecker
	Graph     *detectors.GraphBuilder
	Extractor *facts.Extractor

	// FactConcurrency bounds the nested fact-check fan-out; zero means 4.
	FactConcurrency int
}

// Execute runs one action and returns its (kind, payload) result. Failures
// are payload values, never Go errors.
func (d *Dispatcher) Execute(ctx context.Context, action planner.Action, run types.RunContext, reg *uploads.Registry) types.ActionResult {
	log.Printf("dispatch: executing action kind=%s", action.Kind)
	switch action.Kind {
	case planner.KindAITextDetection:
		return d.textDetection(ctx, action)
	case planner.KindAIMediaDetection:
		return d.mediaDetection(ctx, action, reg)
	case planner.KindFactCheck:
		return d.factCheck(ctx, action, run)
	case planner.KindInformationGraph:
		websiteText := fallback(action.WebsiteText, run.WebsiteText)
		websiteURL := fallback(action.WebsiteURL, run.WebsiteURL)
		return types.ActionResult{Kind: action.Kind, Payload: d.Graph.Build(ctx, websiteText, websiteURL)}
	case planner.KindContentSafety:
		websiteText := fallback(action.WebsiteText, run.WebsiteText)
		if strings.TrimSpace(websiteText) == "" {
			return types.ActionResult{Kind: action.Kind, Payload: map[string]any{
				"error": "missing website_text", "pil": nil, "harmful": nil, "unwanted": nil,
			}}
		}
		return types.ActionResult{Kind: action.Kind, Payload: d.Safety.Check(ctx, strings.TrimSpace(websiteText))}
	}
	// Unknown kinds are a deliberate no-op: possibly a forward-compatible
	// action this build does not understand yet.
	log.Printf("dispatch: unknown action kind=%s", action.Kind)
	return types.ActionResult{Kind: action.Kind, Payload: map[string]any{}}
}

func (d *Dispatcher) textDetection(ctx context.Context, action planner.Action) types.ActionResult {
	if strings.TrimSpace(action.Text) == "" {
		return types.ActionResult{Kind: action.Kind, Payload: map[string]any{
			"error": "missing text", "overall_score": nil, "sentence_scores": []any{},
		}}
	}
	return types.ActionResult{Kind: action.Kind, Payload: d.Text.Detect(ctx, action.Text)}
}

func (d *Dispatcher) mediaDetection(ctx context.Context, action planner.Action, reg *uploads.Registry) types.ActionResult {
	ref := strings.TrimSpace(action.MediaRef)
	if ref == "" {
		return types.ActionResult{Kind: action.Kind, Payload: map[string]any{
			"error": "missing media_url", "chunks": []any{}, "media_url": "",
		}}
	}
	if uploads.IsPlaceholder(ref) && reg.Len() > 0 {
		file, err := reg.Resolve(ref)
		if err != nil {
			// Never substitute another file; name the unresolved ref.
			return types.ActionResult{Kind: action.Kind, Payload: map[string]any{
				"error":     fmt.Sprintf("uploaded file not found: %q", strings.TrimPrefix(ref, "upload:")),
				"chunks":    []any{},
				"media_url": ref,
			}}
		}
		return types.ActionResult{Kind: action.Kind, Payload: d.Media.CheckUpload(ctx, file.Bytes, file.Filename, file.ContentType)}
	}
	if !isHTTPURL(ref) {
		// Models hallucinate placeholder URLs like [image1]; skip rather
		// than hand the checker a bogus target.
		log.Printf("dispatch: media ref is not a valid HTTP URL, skipping: %q", ref)
		return types.ActionResult{Kind: action.Kind, Payload: map[string]any{
			"skipped": true, "reason": "not a valid URL", "chunks": []any{}, "media_url": ref,
		}}
	}
	return types.ActionResult{Kind: action.Kind, Payload: d.Media.CheckURL(ctx, ref)}
}

// factCheck derives the claim list and verifies each claim concurrently.
// When the request carries page text, extraction wins and plan-supplied
// facts are only a fallback for an empty extraction.
func (d *Dispatcher) factCheck(ctx context.Context, action planner.Action, run types.RunContext) types.ActionResult {
	var claims []string
	if strings.TrimSpace(run.WebsiteText) != "" {
		claims = d.Extractor.Extract(ctx, run.WebsiteText)
		if len(claims) == 0 {
			claims = action.Facts
		}
	} else {
		claims = action.Facts
	}

	results := d.checkAll(ctx, claims)
	return types.ActionResult{Kind: action.Kind, Payload: map[string]any{"facts": results}}
}

// checkAll fans one call per claim out behind a semaphore and waits for the
// whole batch. Checks start only after extraction has settled.
func (d *Dispatcher) checkAll(ctx context.Context, claims []string) []any {
	if len(claims) == 0 {
		return []any{}
	}
	limit := d.FactConcurrency
	if limit <= 0 {
		limit = 4
	}

	var wg sync.WaitGroup
	results := make([]any, len(claims))
	semaphore := make(chan struct{}, limit)
	for i, claim := range claims {
		wg.Add(1)
		go func(index int, fact string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			out := d.Facts.Check(ctx, fact)
			if _, ok := out["fact"]; !ok {
				out["fact"] = fact
			}
			results[index] = out
		}(i, claim)
	}
	wg.Wait()
	return results
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

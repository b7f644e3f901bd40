// Package pipeline drives one trust evaluation end to end: plan, fan out,
// classify, synthesize, compile.
package pipeline

import (
	"context"
	"log"
	"strings"

	"github.com/verisight-labs/trustagent/src/agent/components/classify"
	"github.com/verisight-labs/trustagent/src/agent/components/dispatch"
	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/components/synthesis"
	"github.com/verisight-labs/trustagent/src/agent/components/uploads"
	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/textutil"
)

// PageFetcher supplies page text for a URL when the caller did not send any.
type PageFetcher interface {
	PageText(ctx context.Context, url string) (string, error)
}

type Pipeline struct {
	Planner     *planner.Planner
	Dispatcher  *dispatch.Dispatcher
	Synthesizer *synthesis.Synthesizer
	// Fetcher is optional; without it a URL-only request runs with no page
	// text.
	Fetcher PageFetcher
}

// Run executes the full pipeline for one request. It never fails on
// backend-level errors: the response is always structurally complete, with
// absent evidence as empty lists and nil optionals.
func (p *Pipeline) Run(ctx context.Context, run types.RunContext) types.AgentRunResponse {
	run.WebsiteText = textutil.Clean(run.WebsiteText)
	if run.WebsiteText == "" && run.WebsiteURL != "" && p.Fetcher != nil {
		text, err := p.Fetcher.PageText(ctx, run.WebsiteURL)
		if err != nil {
			log.Printf("pipeline: page fetch failed, continuing without text: %v", err)
		} else {
			run.WebsiteText = textutil.Clean(text)
			log.Printf("pipeline: fetched page text (len=%d)", len(run.WebsiteText))
		}
	}

	reg := uploads.NewRegistry(run.Uploads)
	log.Printf("pipeline: run started uploads=%d website_url=%v force_fact=%v force_media=%v",
		reg.Len(), run.WebsiteURL != "", run.SendFactCheck, run.SendMediaCheck)

	plan := p.Planner.BuildPlan(ctx, run)
	all := append(dispatch.InjectedUploadActions(reg), plan...)
	all = applyForceFlags(all, run)

	results := p.Dispatcher.RunAll(ctx, all, run, reg)
	score, explanation := p.Synthesizer.Score(ctx, results)
	resp := Compile(score, explanation, results)

	log.Printf("pipeline: run done trust_score=%d fake_facts=%d true_facts=%d fake_media=%d true_media=%d",
		resp.TrustScore, len(resp.FakeFacts), len(resp.TrueFacts), len(resp.FakeMedia), len(resp.TrueMedia))
	return resp
}

// applyForceFlags injects the checks the caller demanded when the plan left
// them out. Uploads are already covered by the unconditional injection, so
// a forced media check only adds the page URL as a target.
func applyForceFlags(actions []planner.Action, run types.RunContext) []planner.Action {
	if run.SendFactCheck && !hasKind(actions, planner.KindFactCheck) {
		actions = append(actions, planner.Action{Kind: planner.KindFactCheck})
	}
	if run.SendMediaCheck && !hasKind(actions, planner.KindAIMediaDetection) &&
		strings.HasPrefix(run.WebsiteURL, "http") {
		actions = append(actions, planner.Action{Kind: planner.KindAIMediaDetection, MediaRef: run.WebsiteURL})
	}
	return actions
}

func hasKind(actions []planner.Action, kind string) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Compile merges the classifier buckets and the synthesized verdict into
// the terminal response.
func Compile(score int, explanation string, results []types.ActionResult) types.AgentRunResponse {
	return types.AgentRunResponse{
		TrustScore:            score,
		TrustScoreExplanation: explanation,
		AITextScore:           classify.AITextScore(results),
		FakeFacts:             classify.FakeFacts(results),
		TrueFacts:             classify.TrueFacts(results),
		FakeMedia:             classify.FakeMedia(results),
		TrueMedia:             classify.TrueMedia(results),
		InfoGraph:             classify.InfoGraphResult(results),
		ContentSafety:         classify.ContentSafetyResult(results),
	}
}

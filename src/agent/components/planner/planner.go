// Package planner turns a model-generated action plan into a validated list
// of typed actions.
package planner

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/llmjson"
)

const actionsSystemPrompt = `You are a safety-analysis agent. Given the user prompt, output ONLY a valid JSON array of action objects. No wrapper object (e.g. no {"actions": [...]}), no markdown, no code fences, no explanation - just the array.
Each action is an object with "type" (or "action") and type-specific fields:
- ai_text_detection: { "type": "ai_text_detection", "text": "<text to send to AI text detector>" }
- ai_media_detection: { "type": "ai_media_detection", "media_url": "<full http/https URL of image or video>" } (one object per URL; ONLY include this action if media_url is a real http/https URL - never use placeholders like [image1])
- fact_check: { "type": "fact_check", "facts": ["<fact1>", "<fact2>"] }
- information_graph: { "type": "information_graph", "website_url": "<source URL if known, else empty string>" } - website text is supplied by the system from the request; do not include website_text.
- content_safety: { "type": "content_safety" } - for checking website text for privacy leakage (PIL), harmful content, and unwanted connections. Website text is supplied by the system from the request; do not include website_text.
If the user has uploaded media files, the system will run media checks on them automatically; you may still add ai_media_detection for any http(s) URLs found in the content.
If the user asks whether they can trust the website, run fact_check as well as information_graph.
If the user asks whether the website is safe, run content_safety.
Run ai_media_detection and ai_text_detection every time.
Output only the JSON array of action objects.`

// Planner drives the planning model and validates its output.
type Planner struct {
	llm ai.Client
}

func New(llm ai.Client) *Planner {
	return &Planner{llm: llm}
}

// BuildPlan asks the planning model for actions. Any failure - model error,
// empty output, unparseable JSON - degrades to an empty plan: the pipeline
// still runs system-injected actions and still reaches synthesis.
func (p *Planner) BuildPlan(ctx context.Context, run types.RunContext) []Action {
	log.Printf("planner: requesting plan (prompt=%v, website_text=%v, uploads=%d)",
		run.Prompt != "", run.WebsiteText != "", len(run.Uploads))

	content, err := p.llm.Complete(ctx, buildUserMessage(run), ai.Options{SystemPrompt: actionsSystemPrompt})
	if err != nil {
		log.Printf("planner: model call failed: %v", err)
		return nil
	}
	if content == "" {
		log.Printf("planner: model returned empty content")
		return nil
	}
	actions := ParseActions(content)
	kinds := make([]string, len(actions))
	for i, a := range actions {
		kinds[i] = a.Kind
	}
	log.Printf("planner: parsed %d actions: %v", len(actions), kinds)
	return actions
}

// ParseActions extracts the action list from raw model output. A wrapper
// object with an "actions"/"actions_list" key is tolerated; elements that
// are not objects or lack a discriminator are dropped.
func ParseActions(content string) []Action {
	raw, err := llmjson.ExtractArray(content, "actions", "actions_list")
	if err != nil {
		log.Printf("planner: failed to parse plan JSON: %v", err)
		return nil
	}
	var out []Action
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if a, ok := decodeAction(m); ok {
			out = append(out, a)
		}
	}
	return out
}

func buildUserMessage(run types.RunContext) string {
	var parts []string
	if run.Prompt != "" {
		parts = append(parts, fmt.Sprintf("User prompt: %s", run.Prompt))
	}
	if run.WebsiteText != "" {
		parts = append(parts, "The user has provided website content for this page; it will be used when running information_graph or content_safety. Do not include website_text in your action objects.")
	}
	if len(run.Uploads) > 0 {
		names := make([]string, len(run.Uploads))
		for i, f := range run.Uploads {
			names[i] = f.Filename
		}
		parts = append(parts, fmt.Sprintf(
			"The user has also uploaded the following media file(s) for safety check (filenames): %s. The system will run a media (deepfake/AI) check on each of these.",
			strings.Join(names, ", ")))
	}
	if len(parts) == 0 {
		return "Analyze for safety and output the JSON array of actions."
	}
	return strings.Join(parts, "\n\n")
}

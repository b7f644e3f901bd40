// Package facts turns page prose into discrete checkable claims via a
// dedicated model call.
package facts

import (
	"context"
	"log"
	"strings"

	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/llmjson"
	"github.com/verisight-labs/trustagent/src/shared/textutil"
)

const extractionSystemPrompt = `You are a fact-extraction assistant. Given text (e.g. from a web page), extract discrete, checkable factual claims - statements that can be verified as true or false. Output ONLY a JSON array of strings, e.g. ["claim 1", "claim 2"]. No wrapper object, no markdown, no code fences, no explanation. Each array element should be one factual claim.`

// Page text beyond this is cut before the extraction call to stay inside
// model token limits.
const maxTextLength = 30000

type Extractor struct {
	llm ai.Client
}

func New(llm ai.Client) *Extractor {
	return &Extractor{llm: llm}
}

// Extract returns the checkable claims found in websiteText. Failures
// degrade to an empty list; the dispatcher then falls back to plan-supplied
// facts.
func (e *Extractor) Extract(ctx context.Context, websiteText string) []string {
	text := strings.TrimSpace(websiteText)
	if text == "" {
		return nil
	}
	text = textutil.Truncate(text, maxTextLength)
	log.Printf("facts: extracting claims (text_len=%d)", len(text))

	content, err := e.llm.Complete(ctx,
		"Extract checkable factual claims from the following text:\n\n"+text,
		ai.Options{SystemPrompt: extractionSystemPrompt})
	if err != nil {
		log.Printf("facts: extraction call failed: %v", err)
		return nil
	}
	if content == "" {
		log.Printf("facts: extraction returned empty content")
		return nil
	}

	raw, err := llmjson.ExtractArray(content, "facts")
	if err != nil {
		log.Printf("facts: failed to parse extraction JSON: %v", err)
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	log.Printf("facts: extracted %d claims", len(out))
	return out
}

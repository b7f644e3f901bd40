package planner

import "strings"

// Known action kinds. The kind is a plain string so unrecognized values
// survive parsing: they dispatch to an empty result instead of erroring,
// which keeps old deployments tolerant of newer plans.
const (
	KindAITextDetection  = "ai_text_detection"
	KindAIMediaDetection = "ai_media_detection"
	KindFactCheck        = "fact_check"
	KindInformationGraph = "information_graph"
	KindContentSafety    = "content_safety"
)

// Action is one validated unit of verification work from the plan. Only the
// fields matching Kind are populated.
type Action struct {
	Kind string

	// ai_text_detection
	Text string
	// ai_media_detection: an http(s) URL or an upload placeholder
	// (upload:<index> / upload:<filename>)
	MediaRef string
	// fact_check; may be empty when facts are derived from page text
	Facts []string
	// information_graph / content_safety
	WebsiteText string
	// information_graph
	WebsiteURL string
}

// actionKind normalizes the discriminator, accepting either of the two key
// names models have used.
func actionKind(m map[string]any) string {
	for _, key := range []string{"action", "type"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.ToLower(strings.TrimSpace(s))
		}
	}
	return ""
}

// decodeAction builds an Action from one raw plan element. Returns false
// when the element has no usable discriminator.
func decodeAction(m map[string]any) (Action, bool) {
	kind := actionKind(m)
	if kind == "" {
		return Action{}, false
	}
	a := Action{Kind: kind}
	switch kind {
	case KindAITextDetection:
		a.Text = stringField(m, "text")
	case KindAIMediaDetection:
		a.MediaRef = stringField(m, "media_url", "media_ref")
	case KindFactCheck:
		a.Facts = stringList(m["facts"])
	case KindInformationGraph:
		a.WebsiteText = stringField(m, "website_text", "text")
		a.WebsiteURL = stringField(m, "website_url", "url")
	case KindContentSafety:
		a.WebsiteText = stringField(m, "website_text", "text")
	}
	return a, true
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// stringList tolerates a bare string where a list was expected.
func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if strings.TrimSpace(t) != "" {
			out = append(out, strings.TrimSpace(t))
		}
	}
	return out
}

// Package types defines the request and response shapes of one trust
// evaluation run.
package types

// UploadedFile is one binary artifact submitted with a run. It lives only
// for the duration of the run and is never persisted.
type UploadedFile struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// RunContext is the immutable per-request bundle handed through the
// pipeline.
type RunContext struct {
	Prompt      string
	WebsiteText string
	WebsiteURL  string
	Uploads     []UploadedFile

	// Force flags: inject the corresponding actions even when the plan
	// omits them.
	SendFactCheck  bool
	SendMediaCheck bool
}

// ActionResult pairs an action kind with its raw backend payload. Payloads
// carrying an "error" key mean the call failed or was skipped; consumers
// treat those as absent evidence.
type ActionResult struct {
	Kind    string
	Payload map[string]any
}

// Err returns the payload's error string, or "" when the result is clean.
func (r ActionResult) Err() string {
	s, _ := r.Payload["error"].(string)
	return s
}

// Fact is one checked claim with its verdict.
type Fact struct {
	TruthValue  bool   `json:"truth_value"`
	Explanation string `json:"explanation"`
	Fact        string `json:"fact"`
	Source      string `json:"source"`
}

// MediaChunk is a per-segment media verdict (images are a single chunk).
type MediaChunk struct {
	Index            int            `json:"index"`
	StartSeconds     float64        `json:"start_seconds"`
	EndSeconds       float64        `json:"end_seconds"`
	AIGeneratedScore *float64       `json:"ai_generated_score"`
	DeepfakeScore    *float64       `json:"deepfake_score"`
	Label            string         `json:"label"`
	ProviderRaw      map[string]any `json:"provider_raw,omitempty"`
}

// MediaItem is one checked media resource with its chunk scores.
type MediaItem struct {
	MediaURL        string       `json:"media_url"`
	MediaType       string       `json:"media_type"`
	DurationSeconds float64      `json:"duration_seconds"`
	ChunkSeconds    int          `json:"chunk_seconds"`
	Provider        string       `json:"provider"`
	Chunks          []MediaChunk `json:"chunks"`
}

type InfoGraphSource struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type InfoGraphNode struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url,omitempty"`
}

type InfoGraphEdge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation string   `json:"relation"`
	Weight   *float64 `json:"weight"`
}

type InfoGraphArticle struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// InfoGraph is the entity/relation graph built from the source page and
// related articles.
type InfoGraph struct {
	Source          *InfoGraphSource   `json:"source"`
	Nodes           []InfoGraphNode    `json:"nodes"`
	Edges           []InfoGraphEdge    `json:"edges"`
	RelatedArticles []InfoGraphArticle `json:"related_articles"`
}

// ContentSafetyScores holds the 0-1 risk scores from the content-safety
// backend: privacy information leakage, harmful content, unwanted
// connections.
type ContentSafetyScores struct {
	PIL      float64 `json:"pil"`
	Harmful  float64 `json:"harmful"`
	Unwanted float64 `json:"unwanted"`
}

// AgentRunResponse is the terminal value of one run. Constructed once,
// never mutated after.
type AgentRunResponse struct {
	TrustScore            int                  `json:"trust_score"`
	TrustScoreExplanation string               `json:"trust_score_explanation"`
	AITextScore           *float64             `json:"ai_text_score"`
	FakeFacts             []Fact               `json:"fake_facts"`
	TrueFacts             []Fact               `json:"true_facts"`
	FakeMedia             []MediaItem          `json:"fake_media"`
	TrueMedia             []MediaItem          `json:"true_media"`
	InfoGraph             *InfoGraph           `json:"info_graph"`
	ContentSafety         *ContentSafetyScores `json:"content_safety"`
}

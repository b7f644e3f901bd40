package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verisight-labs/trustagent/src/agent/components/facts"
	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/components/uploads"
	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/detectors"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(_ context.Context, _ string, _ ai.Options) (string, error) {
	return f.reply, f.err
}

var _ ai.Client = (*fakeLLM)(nil)

func emptyRegistry() *uploads.Registry { return uploads.NewRegistry(nil) }

// newDispatcher wires every backend to base so unused clients are
// configured but harmless.
func newDispatcher(base string, llm ai.Client) *Dispatcher {
	timeout := 5 * time.Second
	return &Dispatcher{
		Text:      detectors.NewTextDetector(base, timeout),
		Media:     detectors.NewMediaChecker(base, timeout),
		Facts:     detectors.NewFactChecker(base, timeout),
		Safety:    detectors.NewSafetyChecker(base, timeout),
		Graph:     detectors.NewGraphBuilder(base, timeout),
		Extractor: facts.New(llm),
	}
}

func TestTextDetectionBlankTextShortCircuits(t *testing.T) {
	d := newDispatcher("", &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAITextDetection, Text: "   "}, types.RunContext{}, emptyRegistry())
	assert.Equal(t, planner.KindAITextDetection, res.Kind)
	assert.Equal(t, "missing text", res.Err())
}

func TestTextDetectionForwardsToBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ai-detect", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "generated text", body["text"])
		json.NewEncoder(w).Encode(map[string]any{"overall_score": 0.92, "sentence_scores": []any{}})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAITextDetection, Text: "generated text"}, types.RunContext{}, emptyRegistry())
	assert.Empty(t, res.Err())
	assert.Equal(t, 0.92, res.Payload["overall_score"])
}

func TestMediaUploadPlaceholderSendsBytes(t *testing.T) {
	var gotName, gotType string
	var gotBytes []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/media/check/upload", r.URL.Path)
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		gotName = fh.Filename
		gotType = fh.Header.Get("Content-Type")
		gotBytes, _ = io.ReadAll(f)
		json.NewEncoder(w).Encode(map[string]any{
			"media_url": fh.Filename, "media_type": "image",
			"chunks": []any{map[string]any{"index": 0, "ai_generated_score": 0.1, "deepfake_score": 0.1}},
		})
	}))
	defer srv.Close()

	// Extensionless filename: the backend detects the media type from the
	// part's content type, so the upload's own type must travel with it.
	reg := uploads.NewRegistry([]types.UploadedFile{
		{Bytes: []byte("jpeg-data"), Filename: "pic", ContentType: "image/jpeg"},
	})
	d := newDispatcher(srv.URL, &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAIMediaDetection, MediaRef: "upload:0"}, types.RunContext{}, reg)

	assert.Empty(t, res.Err())
	assert.Equal(t, "pic", gotName)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, []byte("jpeg-data"), gotBytes)
}

func TestMediaUnresolvedPlaceholderNamesRef(t *testing.T) {
	reg := uploads.NewRegistry([]types.UploadedFile{{Filename: "only.png"}})
	d := newDispatcher("", &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAIMediaDetection, MediaRef: "upload:2"}, types.RunContext{}, reg)
	assert.Contains(t, res.Err(), "uploaded file not found")
	assert.Contains(t, res.Err(), "2")
}

func TestMediaHallucinatedPlaceholderSkipped(t *testing.T) {
	d := newDispatcher("", &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAIMediaDetection, MediaRef: "[image1]"}, types.RunContext{}, emptyRegistry())
	assert.Empty(t, res.Err())
	assert.Equal(t, true, res.Payload["skipped"])
	assert.Equal(t, "[image1]", res.Payload["media_url"])
}

func TestMediaURLForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/media/check", r.URL.Path)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "https://cdn.test/v.mp4", body["media_url"])
		json.NewEncoder(w).Encode(map[string]any{"media_url": body["media_url"], "chunks": []any{}})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAIMediaDetection, MediaRef: "https://cdn.test/v.mp4"}, types.RunContext{}, emptyRegistry())
	assert.Empty(t, res.Err())
}

func TestFactCheckExtractionPrecedesPlanFacts(t *testing.T) {
	var checked []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		checked = append(checked, body["fact"].(string))
		json.NewEncoder(w).Encode(map[string]any{"truth_value": false, "explanation": "debunked"})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{reply: `["vaccines cause autism"]`})
	run := types.RunContext{WebsiteText: "Vaccines cause autism."}
	action := planner.Action{Kind: planner.KindFactCheck, Facts: []string{"plan-supplied fact"}}

	res := d.Execute(context.Background(), action, run, emptyRegistry())
	require.Empty(t, res.Err())
	assert.Equal(t, []string{"vaccines cause autism"}, checked)

	items, ok := res.Payload["facts"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, false, item["truth_value"])
	assert.Equal(t, "vaccines cause autism", item["fact"])
}

func TestFactCheckFallsBackToPlanFacts(t *testing.T) {
	var checked int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&checked, 1)
		json.NewEncoder(w).Encode(map[string]any{"truth_value": true, "explanation": ""})
	}))
	defer srv.Close()

	// Extraction yields nothing usable; the plan's own facts are used.
	d := newDispatcher(srv.URL, &fakeLLM{reply: "no json here"})
	run := types.RunContext{WebsiteText: "some page text"}
	action := planner.Action{Kind: planner.KindFactCheck, Facts: []string{"a", "b"}}

	res := d.Execute(context.Background(), action, run, emptyRegistry())
	items := res.Payload["facts"].([]any)
	assert.Len(t, items, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&checked))
}

func TestFactCheckWithoutWebsiteTextUsesPlanFacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"truth_value": true, "explanation": ""})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{reply: `["should not be called"]`})
	action := planner.Action{Kind: planner.KindFactCheck, Facts: []string{"plan fact"}}
	res := d.Execute(context.Background(), action, types.RunContext{}, emptyRegistry())

	items := res.Payload["facts"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "plan fact", items[0].(map[string]any)["fact"])
}

func TestFactCheckEmptyClaimsYieldsEmptyList(t *testing.T) {
	d := newDispatcher("", &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindFactCheck}, types.RunContext{}, emptyRegistry())
	assert.Empty(t, res.Err())
	assert.Equal(t, []any{}, res.Payload["facts"])
}

func TestInfoGraphFallsBackToRequestContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "page body", body["website_text"])
		assert.Equal(t, "https://site.test", body["website_url"])
		json.NewEncoder(w).Encode(map[string]any{"nodes": []any{}, "edges": []any{}, "related_articles": []any{}})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{})
	run := types.RunContext{WebsiteText: "page body", WebsiteURL: "https://site.test"}
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindInformationGraph}, run, emptyRegistry())
	assert.Empty(t, res.Err())
}

func TestContentSafetyBlankTextIsError(t *testing.T) {
	d := newDispatcher("", &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindContentSafety}, types.RunContext{}, emptyRegistry())
	assert.Equal(t, "missing website_text", res.Err())
}

func TestUnknownKindIsNoOp(t *testing.T) {
	d := newDispatcher("", &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: "future_check"}, types.RunContext{}, emptyRegistry())
	assert.Equal(t, "future_check", res.Kind)
	assert.Empty(t, res.Err())
	assert.Empty(t, res.Payload)
}

func TestBackendFailureEncodedNotRaised(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{})
	res := d.Execute(context.Background(), planner.Action{Kind: planner.KindAITextDetection, Text: "x"}, types.RunContext{}, emptyRegistry())
	assert.Contains(t, res.Err(), "status 500")
}

func TestRunAllCompletesDespiteFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"overall_score": 0.5, "sentence_scores": []any{}})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, &fakeLLM{})
	actions := []planner.Action{
		{Kind: planner.KindAITextDetection, Text: "ok"},
		{Kind: planner.KindAITextDetection}, // blank text, encoded error
		{Kind: planner.KindContentSafety},   // missing website_text
		{Kind: "mystery"},                   // unknown no-op
	}
	results := d.RunAll(context.Background(), actions, types.RunContext{}, emptyRegistry())
	require.Len(t, results, 4)
	byKind := map[string]int{}
	for _, r := range results {
		byKind[r.Kind]++
	}
	assert.Equal(t, 2, byKind[planner.KindAITextDetection])
	assert.Equal(t, 1, byKind["mystery"])
}

func TestInjectedUploadActions(t *testing.T) {
	reg := uploads.NewRegistry([]types.UploadedFile{{Filename: "a"}, {Filename: "b"}})
	actions := InjectedUploadActions(reg)
	require.Len(t, actions, 2)
	assert.Equal(t, "upload:0", actions[0].MediaRef)
	assert.Equal(t, "upload:1", actions[1].MediaRef)
	assert.Empty(t, InjectedUploadActions(emptyRegistry()))
}

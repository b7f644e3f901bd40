package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verisight-labs/trustagent/src/agent/components/dispatch"
	"github.com/verisight-labs/trustagent/src/agent/components/facts"
	"github.com/verisight-labs/trustagent/src/agent/components/pipeline"
	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/components/synthesis"
	"github.com/verisight-labs/trustagent/src/agent/config"
	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/detectors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLLM struct {
	reply string
}

func (f *fakeLLM) Complete(_ context.Context, _ string, _ ai.Options) (string, error) {
	return f.reply, nil
}

// offlinePipeline runs fully without detector backends: unconfigured clients
// answer with error stubs and the verdict comes from the canned scorer.
func offlinePipeline() *pipeline.Pipeline {
	timeout := time.Second
	return &pipeline.Pipeline{
		Planner: planner.New(&fakeLLM{reply: `[{"action": "ai_text_detection", "text": "some text"}]`}),
		Dispatcher: &dispatch.Dispatcher{
			Text:      detectors.NewTextDetector("", timeout),
			Media:     detectors.NewMediaChecker("", timeout),
			Facts:     detectors.NewFactChecker("", timeout),
			Safety:    detectors.NewSafetyChecker("", timeout),
			Graph:     detectors.NewGraphBuilder("", timeout),
			Extractor: facts.New(&fakeLLM{reply: "[]"}),
		},
		Synthesizer: synthesis.New(&fakeLLM{reply: `{"trust_score": 55, "explanation": "Limited evidence."}`}),
	}
}

func newTestServer(cfg config.Config) *gin.Engine {
	return New(cfg, offlinePipeline(), nil, nil, nil)
}

func postJSON(t *testing.T, g *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	g := newTestServer(config.Config{})
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunRejectsUnknownAPIKey(t *testing.T) {
	g := newTestServer(config.Config{AllowedAPIKeys: []string{"secret"}})
	w := postJSON(t, g, "/v1/agent/run", map[string]any{"api_key": "wrong", "prompt": "check"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRunAcceptsConfiguredAPIKey(t *testing.T) {
	g := newTestServer(config.Config{AllowedAPIKeys: []string{"secret"}})
	w := postJSON(t, g, "/v1/agent/run", map[string]any{"api_key": "secret", "prompt": "check"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunAllowsAnyKeyWhenUnrestricted(t *testing.T) {
	g := newTestServer(config.Config{})
	w := postJSON(t, g, "/v1/agent/run", map[string]any{"prompt": "check"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunRejectsMalformedJSON(t *testing.T) {
	g := newTestServer(config.Config{})
	req := httptest.NewRequest("POST", "/v1/agent/run", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunReturnsCompleteResponse(t *testing.T) {
	g := newTestServer(config.Config{})
	w := postJSON(t, g, "/v1/agent/run", map[string]any{
		"prompt": "evaluate", "website_content": "Some article text.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.AgentRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 55, resp.TrustScore)
	assert.Equal(t, "Limited evidence.", resp.TrustScoreExplanation)
	assert.NotNil(t, resp.FakeFacts)
	assert.NotNil(t, resp.TrueMedia)
	// Unconfigured detectors answer with error stubs, so no evidence lands.
	assert.Nil(t, resp.AITextScore)
}

func TestRunMultipartWithFiles(t *testing.T) {
	g := newTestServer(config.Config{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("prompt", "check this image"))
	part, err := mw.CreateFormFile("files", "photo.jpg")
	require.NoError(t, err)
	part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/v1/agent/run", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.AgentRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 55, resp.TrustScore)
}

func TestRunRejectsOversizedUpload(t *testing.T) {
	g := newTestServer(config.Config{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "huge.bin")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0}, maxUploadBytes+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/v1/agent/run", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "huge.bin")
}

func TestExplainUnavailableWithoutBackend(t *testing.T) {
	g := newTestServer(config.Config{})
	w := postJSON(t, g, "/v1/agent/explain", map[string]any{
		"response": map[string]any{"trust_score": 10}, "explanation_type": "video",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExplainRejectsUnknownType(t *testing.T) {
	g := newTestServer(config.Config{})
	w := postJSON(t, g, "/v1/agent/explain", map[string]any{
		"response": map[string]any{"trust_score": 10}, "explanation_type": "hologram",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplainRelaysRenderedMedia(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/explain/generate", r.URL.Path)
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("mp4-bytes"))
	}))
	defer backend.Close()

	explainer := detectors.NewExplainer(backend.URL, time.Second)
	g := New(config.Config{}, offlinePipeline(), nil, nil, explainer)

	w := postJSON(t, g, "/v1/agent/explain", map[string]any{
		"response": map[string]any{"trust_score": 10}, "explanation_type": "video",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "mp4-bytes", w.Body.String())
}

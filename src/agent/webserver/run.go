package webserver

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/verisight-labs/trustagent/src/agent/components/pipeline"
	"github.com/verisight-labs/trustagent/src/agent/config"
	"github.com/verisight-labs/trustagent/src/agent/data"
	"github.com/verisight-labs/trustagent/src/agent/types"
	"github.com/verisight-labs/trustagent/src/shared/detectors"
)

// Uploads larger than this are rejected before they reach the pipeline.
const maxUploadBytes = 50 * 1024 * 1024

type handlers struct {
	cfg       config.Config
	pipeline  *pipeline.Pipeline
	rdb       *redis.Client
	history   *data.History
	explainer *detectors.Explainer
}

type runRequest struct {
	APIKey         string `json:"api_key" form:"api_key"`
	Prompt         string `json:"prompt" form:"prompt"`
	WebsiteContent string `json:"website_content" form:"website_content"`
	WebsiteURL     string `json:"website_url" form:"website_url"`
	SendFactCheck  bool   `json:"send_fact_check" form:"send_fact_check"`
	SendMediaCheck bool   `json:"send_media_check" form:"send_media_check"`
}

func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run accepts either a JSON body or multipart form data (form fields plus
// "files" parts) and returns the compiled trust verdict.
func (h *handlers) Run(c *gin.Context) {
	var req runRequest
	var uploadedFiles []types.UploadedFile

	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
			return
		}
		files, err := readUploads(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
			return
		}
		uploadedFiles = files
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
			return
		}
	}

	if !h.apiKeyAllowed(req.APIKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid API key"})
		return
	}

	log.Printf("webserver: agent run prompt=%v website_content_len=%d uploads=%d",
		req.Prompt != "", len(req.WebsiteContent), len(uploadedFiles))

	run := types.RunContext{
		Prompt:         req.Prompt,
		WebsiteText:    req.WebsiteContent,
		WebsiteURL:     req.WebsiteURL,
		Uploads:        uploadedFiles,
		SendFactCheck:  req.SendFactCheck,
		SendMediaCheck: req.SendMediaCheck,
	}

	// Upload bytes never enter the cache key, so runs with files bypass
	// the cache entirely.
	cacheable := h.rdb != nil && len(uploadedFiles) == 0
	cacheKey := data.RunCacheKey(req.Prompt, req.WebsiteURL, req.WebsiteContent)
	if cacheable {
		if resp, ok := data.GetCachedRun(c.Request.Context(), h.rdb, cacheKey); ok {
			log.Printf("webserver: run served from cache")
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp := h.pipeline.Run(c.Request.Context(), run)

	if cacheable {
		data.PutCachedRun(c.Request.Context(), h.rdb, cacheKey, resp,
			time.Duration(h.cfg.CacheTTLSeconds)*time.Second)
	}
	h.history.Record(req.WebsiteURL, resp)

	c.JSON(http.StatusOK, resp)
}

func (h *handlers) apiKeyAllowed(key string) bool {
	if len(h.cfg.AllowedAPIKeys) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedAPIKeys {
		if key == allowed {
			return true
		}
	}
	return false
}

func isMultipart(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "multipart/form-data"
}

func readUploads(c *gin.Context) ([]types.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	var out []types.UploadedFile
	for _, fh := range form.File["files"] {
		// Rejecting outright keeps upload indices stable for the rest of
		// the batch.
		if fh.Size > maxUploadBytes {
			return nil, fmt.Errorf("file %q exceeds the %d MB upload limit", fh.Filename, maxUploadBytes/(1024*1024))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		fileBytes, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, types.UploadedFile{
			Bytes:       fileBytes,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return out, nil
}

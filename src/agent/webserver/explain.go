package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verisight-labs/trustagent/src/agent/types"
)

type explainRequest struct {
	APIKey          string                 `json:"api_key"`
	Response        types.AgentRunResponse `json:"response" binding:"required"`
	ExplanationType string                 `json:"explanation_type" binding:"required,oneof=video audio flashcards"`
	UserPrompt      string                 `json:"user_prompt"`
}

// Explain forwards a finished run to the media-explanation backend and
// relays the rendered body unchanged.
func (h *handlers) Explain(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if h.explainer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "media explanation is not configured"})
		return
	}

	log.Printf("webserver: explain type=%s user_prompt=%v", req.ExplanationType, req.UserPrompt != "")
	body, contentType, err := h.explainer.Generate(c.Request.Context(), req.Response, req.ExplanationType, req.UserPrompt)
	if err != nil {
		log.Printf("webserver: explain failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"err": err.Error()})
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, body)
}

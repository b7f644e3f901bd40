package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/verisight-labs/trustagent/src/agent/components/pipeline"
	"github.com/verisight-labs/trustagent/src/agent/config"
	"github.com/verisight-labs/trustagent/src/agent/data"
	"github.com/verisight-labs/trustagent/src/shared/detectors"
)

// New builds the gin engine with all agent routes attached. rdb and history
// may be nil; the matching features are then disabled.
func New(cfg config.Config, p *pipeline.Pipeline, rdb *redis.Client, history *data.History, explainer *detectors.Explainer) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	g.Use(cors.Default())

	h := &handlers{cfg: cfg, pipeline: p, rdb: rdb, history: history, explainer: explainer}

	g.GET("/healthz", h.Health)
	v1 := g.Group("/v1")
	v1.POST("/agent/run", h.Run)
	v1.POST("/agent/explain", h.Explain)
	return g
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verisight-labs/trustagent/src/agent/components/dispatch"
	"github.com/verisight-labs/trustagent/src/agent/components/facts"
	"github.com/verisight-labs/trustagent/src/agent/components/pipeline"
	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/components/synthesis"
	"github.com/verisight-labs/trustagent/src/agent/config"
	"github.com/verisight-labs/trustagent/src/agent/data"
	"github.com/verisight-labs/trustagent/src/agent/webserver"
	"github.com/verisight-labs/trustagent/src/shared/ai"
	"github.com/verisight-labs/trustagent/src/shared/detectors"
	"github.com/verisight-labs/trustagent/src/shared/fetch"
)

func main() {
	cfg := config.Load()

	var history *data.History
	if cfg.MySQLDSN != "" {
		db := data.MustMySQL(cfg.MySQLDSN)
		h, err := data.NewHistory(db)
		if err != nil {
			log.Fatalf("history: %v", err)
		}
		history = h
	} else {
		log.Printf("MYSQL_DSN not set, scan history disabled")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	} else {
		log.Printf("REDIS_URL not set, run cache disabled")
	}

	llm := ai.NewClient(ai.FactoryConfig{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          cfg.LLMModel,
		TimeoutSeconds: cfg.LLMTimeoutSeconds,
	})

	serviceTimeout := time.Duration(cfg.ServiceTimeoutSeconds * float64(time.Second))
	p := &pipeline.Pipeline{
		Planner: planner.New(llm),
		Dispatcher: &dispatch.Dispatcher{
			Text:            detectors.NewTextDetector(cfg.AITextDetectorURL, serviceTimeout),
			Media:           detectors.NewMediaChecker(cfg.MediaCheckingURL, serviceTimeout),
			Facts:           detectors.NewFactChecker(cfg.FactCheckingURL, serviceTimeout),
			Safety:          detectors.NewSafetyChecker(cfg.ContentSafetyURL, time.Duration(cfg.ContentSafetyTimeoutSeconds*float64(time.Second))),
			Graph:           detectors.NewGraphBuilder(cfg.InfoGraphURL, time.Duration(cfg.InfoGraphTimeoutSeconds*float64(time.Second))),
			Extractor:       facts.New(llm),
			FactConcurrency: cfg.FactCheckConcurrency,
		},
		Synthesizer: synthesis.New(llm),
		Fetcher:     fetch.New(serviceTimeout),
	}

	explainer := detectors.NewExplainer(cfg.MediaExplanationURL,
		time.Duration(cfg.MediaExplanationTimeoutSeconds*float64(time.Second)))

	router := webserver.New(cfg, p, rdb, history, explainer)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("trustagent listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}

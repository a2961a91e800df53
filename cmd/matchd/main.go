// cmd/matchd/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bamaai-connect/internal/common/cache"
	"bamaai-connect/internal/common/config"
	"bamaai-connect/internal/common/database"
	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/common/observability"
	"bamaai-connect/internal/events"
	"bamaai-connect/internal/match"
	"bamaai-connect/internal/match/mlclient"
	"bamaai-connect/internal/match/retriever"
	"bamaai-connect/internal/router"
	"bamaai-connect/internal/search"
	"bamaai-connect/internal/search/analytics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting matchd", map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := pg.Ping(ctx); err != nil {
		log.Error("postgres unreachable", map[string]interface{}{"error": err.Error()})
		cancel()
		os.Exit(1)
	}
	cancel()

	rds, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("failed to connect to redis", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer rds.Close()

	var resultCache *cache.Cache
	if cfg.Cache.Enabled {
		resultCache = cache.New(rds.Client, cfg.Cache.TTL, log)
	}

	var index retriever.SemanticIndex
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.Error("failed to create elasticsearch client", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		if err := es.Ping(); err != nil {
			// Retrieval degrades to the keyword pass; don't refuse to start.
			log.Warn("elasticsearch unreachable at startup", map[string]interface{}{"error": err.Error()})
		}
		index = retriever.NewElasticsearchIndex(es.Client, cfg.Database.Elasticsearch.Index)
	}

	store := retriever.NewPostgresStore(pg.DB)
	ret := retriever.New(store, index, resultCache, retriever.Config{
		CandidateLimit:      cfg.Matching.CandidateLimit,
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
	}, log)

	var predictor mlclient.Predictor
	if cfg.ML.Enabled {
		predictor = mlclient.New(cfg.ML.BaseURL, cfg.ML.APIKey, cfg.ML.Timeout)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		snsPub, err := events.NewSNSPublisher(context.Background(), cfg.Events.Region, cfg.Events.TopicARN, log)
		if err != nil {
			log.Warn("event publisher unavailable, continuing without events", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = snsPub
		}
	}

	builder := search.NewBuilder(
		search.NewRedisSuggestions(rds.Client, log),
		analytics.NewPostgresRecorder(pg.DB, log),
		log,
	)

	service := match.NewService(ret, predictor, builder, publisher, match.Config{
		RetrievalTimeout:   cfg.Matching.RetrievalTimeout,
		MLTimeout:          cfg.ML.Timeout,
		DefaultPageSize:    cfg.Matching.DefaultPageSize,
		MaxPageSize:        cfg.Matching.MaxPageSize,
		HighScoreThreshold: cfg.Matching.HighScoreThreshold,
	}, log)

	handler, err := router.New(service, resultCache, obs, log)
	if err != nil {
		log.Error("failed to build router", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": addr})
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("server error", map[string]interface{}{"error": err.Error()})
	case sig := <-shutdown:
		log.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
			_ = srv.Close()
		}
	}
}

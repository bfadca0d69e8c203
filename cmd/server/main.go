// Command server is the composition root: it loads configuration, wires
// every leaf component by explicit constructor injection (no DI container,
// per the anti-singleton design note), and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qdrant/go-client/qdrant"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nbaqa/hro/internal/cache"
	"github.com/nbaqa/hro/internal/chatmodel"
	"github.com/nbaqa/hro/internal/config"
	"github.com/nbaqa/hro/internal/conversation"
	"github.com/nbaqa/hro/internal/embedding"
	"github.com/nbaqa/hro/internal/facade"
	"github.com/nbaqa/hro/internal/logger"
	"github.com/nbaqa/hro/internal/observability"
	"github.com/nbaqa/hro/internal/orchestrator"
	"github.com/nbaqa/hro/internal/rerank"
	"github.com/nbaqa/hro/internal/sqlgen"
	"github.com/nbaqa/hro/internal/statstore"
	"github.com/nbaqa/hro/internal/vectorindex"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	ctx := context.Background()

	if err := run(ctx, *configPath); err != nil {
		logger.Errorf(ctx, "server exited: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	index, err := loadVectorIndex(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("load vector index: %w", err)
	}
	index.Configure(cfg.RetrievalOversample, cfg.QualityThreshold)

	embedder, err := embedding.New(embedding.Config{
		Source:     cfg.EmbeddingSource,
		BaseURL:    cfg.EmbeddingBaseURL,
		APIKey:     cfg.EmbeddingAPIKey,
		ModelName:  cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDim,
		PoolSize:   8,
	})
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}

	chatModel, err := chatmodel.New(chatmodel.Config{
		Source:    cfg.ChatSource,
		BaseURL:   cfg.ChatBaseURL,
		APIKey:    cfg.ChatAPIKey,
		ModelName: cfg.ChatModel,
	})
	if err != nil {
		return fmt.Errorf("build chat model: %w", err)
	}

	store, err := statstore.New(db, 10, cfg.SQLRowCap, time.Duration(cfg.SQLTimeoutMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("build statistics store: %w", err)
	}

	redisCache := cache.New(cfg.RedisAddr, 0)
	defer func() {
		if redisCache != nil {
			_ = redisCache.Close()
		}
	}()

	convs := conversation.New(db)

	var reranker rerank.Reranker
	if cfg.RerankModel != "" {
		reranker = rerank.New(rerank.Config{
			ModelName: cfg.RerankModel,
			APIKey:    cfg.RerankAPIKey,
			BaseURL:   cfg.RerankBaseURL,
		})
	}

	orch := orchestrator.New(orchestrator.Config{
		Embedder:      embedder,
		ChatModel:     chatModel,
		Validator:     sqlgen.NewValidator(),
		Generator:     sqlgen.NewGenerator(chatModel),
		Store:         store,
		Index:         index,
		Conversations: convs,
		Metrics:       metrics,
		Reranker:      reranker,
		Cache:         redisCache,
		HistoryTurns:  cfg.ConversationHistoryTurns,
	})

	f := facade.New(orch, convs, time.Duration(cfg.RequestDeadlineMs)*time.Millisecond)
	router := f.Router()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigCh:
		logger.Info(ctx, "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadVectorIndex builds the in-memory Index from whichever backing store
// cfg.VectorDriver names.
func loadVectorIndex(ctx context.Context, cfg *config.Config, db *gorm.DB) (*vectorindex.Index, error) {
	var loader vectorindex.Loader
	switch cfg.VectorDriver {
	case "qdrant":
		client, err := qdrant.NewClient(&qdrant.Config{Host: cfg.QdrantAddr})
		if err != nil {
			return nil, fmt.Errorf("connect qdrant: %w", err)
		}
		loader = vectorindex.NewQdrantLoader(client, cfg.QdrantCollection)
	default:
		loader = vectorindex.NewPostgresLoader(db)
	}
	return loader.Load(ctx)
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ForDaCulture/document-processing-system/internal/api"
	"github.com/ForDaCulture/document-processing-system/internal/api/handlers"
	"github.com/ForDaCulture/document-processing-system/internal/config"
	"github.com/ForDaCulture/document-processing-system/internal/database"
	"github.com/ForDaCulture/document-processing-system/internal/embedding"
	"github.com/ForDaCulture/document-processing-system/internal/ingest"
	"github.com/ForDaCulture/document-processing-system/internal/llm"
	"github.com/ForDaCulture/document-processing-system/internal/metrics"
	"github.com/ForDaCulture/document-processing-system/internal/queue"
	"github.com/ForDaCulture/document-processing-system/internal/queue/workers"
	"github.com/ForDaCulture/document-processing-system/internal/store"
	"github.com/ForDaCulture/document-processing-system/internal/suggest"
	"github.com/ForDaCulture/document-processing-system/internal/vectorstore"
	"github.com/ForDaCulture/document-processing-system/pkg/chunker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Vector index: pgvector when a database is configured, in-memory
	// otherwise. Documents and suggestions always live in memory.
	var index vectorstore.Index = vectorstore.NewMemoryIndex()
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, using in-memory vector index", "error", err)
		db = nil
	} else {
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			slog.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		index = vectorstore.NewPgVectorIndex(db)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisUp := rdb.Ping(ctx).Err() == nil
	if !redisUp {
		slog.Warn("redis unavailable, background indexing disabled", "addr", cfg.Redis.Addr)
	}
	defer rdb.Close()

	st := store.NewMemory()
	st.SetReviewThreshold(cfg.Suggest.ReviewThreshold)

	gateway := llm.NewGateway(cfg.LLM)
	embedSvc := embedding.NewService(gateway, cfg.LLM.EmbeddingModel)

	// Empty provider defers to the gateway default so runtime provider
	// switches through the config endpoint take effect.
	generator := suggest.NewLLMGenerator(gateway, "", cfg.LLM.DefaultModel)
	engine := suggest.NewEngine(st, embedSvc, index, generator, suggest.Options{
		TopK:               cfg.Suggest.TopK,
		Concurrency:        cfg.Suggest.Concurrency,
		UpstreamTimeout:    cfg.Suggest.UpstreamTimeout,
		BaselineConfidence: cfg.Suggest.BaselineConfidence,
	})

	ingestSvc := ingest.NewService(embedSvc, index, chunker.ChunkOptions{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		Strategy:     "recursive",
	})

	// The document store is process-local, so the indexing worker runs
	// embedded here rather than as a separate binary.
	var queueClient *queue.Client
	var asynqSrv *asynq.Server
	if redisUp {
		queueClient = queue.NewClient(cfg.Redis)
		defer queueClient.Close()

		asynqSrv = asynq.NewServer(
			asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
			asynq.Config{Concurrency: 4},
		)

		registry := queue.NewHandlersRegistry()
		indexWorker := workers.NewIndexWorker(st, ingestSvc)
		registry.Register(queue.TypeDocumentIndex, asynq.HandlerFunc(indexWorker.ProcessTask))

		go func() {
			slog.Info("starting indexing worker", "concurrency", 4)
			if err := asynqSrv.Run(registry.Mux()); err != nil {
				slog.Error("worker error", "error", err)
			}
		}()
	}

	m := metrics.New("api")

	var indexer handlers.Indexer
	if queueClient != nil {
		indexer = queueClient
	}
	handler := api.NewRouter(api.Deps{
		Store:   st,
		Engine:  engine,
		Gateway: gateway,
		Indexer: indexer,
		Metrics: m,
		DB:      db,
		Redis:   rdb,
		Config:  cfg,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	if asynqSrv != nil {
		asynqSrv.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

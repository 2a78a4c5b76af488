package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/cache"
	"github.com/bazaria-cloud/searchd/internal/config"
	dbRedis "github.com/bazaria-cloud/searchd/internal/db/redis"
	"github.com/bazaria-cloud/searchd/internal/domain"
	logpkg "github.com/bazaria-cloud/searchd/internal/logger"
	"github.com/bazaria-cloud/searchd/internal/metrics"
	"github.com/bazaria-cloud/searchd/internal/repository/annindex"
	listingrepo "github.com/bazaria-cloud/searchd/internal/repository/listing"
	chiTransport "github.com/bazaria-cloud/searchd/internal/transport/chi"
	openaiTransport "github.com/bazaria-cloud/searchd/internal/transport/openai"
	indexeruc "github.com/bazaria-cloud/searchd/internal/usecase/indexer"
	searchuc "github.com/bazaria-cloud/searchd/internal/usecase/search"
	"github.com/bazaria-cloud/searchd/internal/version"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.Register()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
		Logger:   logger,
	})

	var paraphraser domain.Paraphraser
	if cfg.Paraphrase.Enabled {
		paraphraser = openaiTransport.NewParaphraser(&openaiTransport.ParaphraserConfig{
			APIKey:      cfg.Embedding.APIKey,
			BaseURL:     cfg.Embedding.BaseURL,
			Model:       cfg.Paraphrase.Model,
			MaxVariants: cfg.Paraphrase.MaxVariants,
			Logger:      logger,
		})
	}

	if err := os.MkdirAll(cfg.Cache.Dir, 0o750); err != nil {
		logger.Fatal("Failed to create cache directory", zap.Error(err))
	}
	embCache := cache.New[[]float32](
		filepath.Join(cfg.Cache.Dir, "embeddings.json"),
		time.Duration(cfg.Cache.EmbeddingTTLSeconds)*time.Second,
		logger,
	)
	resultCache := cache.New[domain.CachedResultSet](
		filepath.Join(cfg.Cache.Dir, "results.json"),
		time.Duration(cfg.Cache.ResultTTLSeconds)*time.Second,
		logger,
	)

	repo := listingrepo.New(store)

	if err := os.MkdirAll(filepath.Dir(cfg.Index.SnapshotPath), 0o750); err != nil {
		logger.Fatal("Failed to create index directory", zap.Error(err))
	}
	index := annindex.New(cfg.Index.SnapshotPath, logger)

	indexer := indexeruc.New(repo, embedder, index, cfg.Index.SnapshotPath, logger)

	if err := index.Load(); err != nil {
		if cfg.Index.RebuildOnStart {
			logger.Info("No index snapshot, rebuilding from the document store", zap.Error(err))
			if _, err := indexer.Rebuild(ctx); err != nil {
				logger.Warn("Startup index build failed, semantic search disabled until reindex",
					zap.Error(err))
			}
		} else {
			logger.Warn("No index snapshot loaded, semantic search disabled until reindex",
				zap.Error(err))
		}
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if cfg.Index.Watch {
		go func() {
			if err := index.Watch(watchCtx); err != nil {
				logger.Error("Index watcher stopped", zap.Error(err))
			}
		}()
	}

	retriever := searchuc.NewVectorRetriever(index, embedder, embCache, logger)
	expander := searchuc.NewQueryExpander(retriever, paraphraser,
		time.Duration(cfg.Paraphrase.TimeoutSec)*time.Second, logger)
	lexical := searchuc.NewLexicalMatcher(repo, cfg.Index.PageSize, cfg.Search.LexicalMaxScan)

	rerankCfg := searchuc.DefaultRerankConfig()
	rerankCfg.Enabled = cfg.Search.RerankEnabled
	searchSvc := searchuc.New(lexical, expander, repo,
		searchuc.NewReranker(rerankCfg), resultCache, cfg.Search.TopK, logger)

	server := chiTransport.NewServer(searchSvc, indexer, index, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogMiddleware emits a canonical log line per request and propagates X-Request-ID.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http_request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

// Command seedctl loads marketplace listings from a JSON file into the
// document store. Intended for local development and demo datasets; the
// running server picks the new listings up on the next reindex.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/config"
	dbRedis "github.com/bazaria-cloud/searchd/internal/db/redis"
	"github.com/bazaria-cloud/searchd/internal/domain"
	logpkg "github.com/bazaria-cloud/searchd/internal/logger"
	listingrepo "github.com/bazaria-cloud/searchd/internal/repository/listing"
)

func main() {
	_ = godotenv.Load()

	var file string
	flag.StringVar(&file, "file", "data/listings.json", "path to a JSON array of listings")
	flag.Parse()

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

	data, err := os.ReadFile(file)
	if err != nil {
		logger.Fatal("Failed to read listings file", zap.String("file", file), zap.Error(err))
	}
	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		logger.Fatal("Failed to parse listings file", zap.String("file", file), zap.Error(err))
	}
	if len(listings) == 0 {
		logger.Fatal("Listings file is empty", zap.String("file", file))
	}

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

	repo := listingrepo.New(store)
	for _, l := range listings {
		if err := repo.Put(ctx, l); err != nil {
			logger.Fatal("Failed to store listing", zap.String("id", l.ID), zap.Error(err))
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		logger.Warn("Failed to count listings", zap.Error(err))
	}
	logger.Info("Seed complete",
		zap.Int("seeded", len(listings)),
		zap.Int("total", count),
	)
}

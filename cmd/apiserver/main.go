// Package main serves the read path: published meta decks, counter-deck
// queries, and per-player season statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/api"
	"github.com/ramonehamilton/royale-meta/internal/cache"
	"github.com/ramonehamilton/royale-meta/internal/config"
	"github.com/ramonehamilton/royale-meta/internal/counter"
	"github.com/ramonehamilton/royale-meta/internal/royale"
	"github.com/ramonehamilton/royale-meta/internal/stats"
	"github.com/ramonehamilton/royale-meta/internal/storage"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
	"github.com/ramonehamilton/royale-meta/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.royale-meta/config.toml)")
	port       = flag.Int("port", 0, "Listen port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		log.Fatalf("apiserver failed: %v", err)
	}
}

func run(logger *slog.Logger) error {
	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()

	timeout, _ := cfg.GetAPITimeout()
	backoffBase, _ := cfg.GetBackoffBase()
	client := royale.NewClient(royale.ClientOptions{
		BaseURL:           cfg.API.BaseURL,
		Token:             cfg.API.Token,
		RequestsPerSecond: float64(cfg.API.RequestsPerSecond),
		Burst:             cfg.API.Burst,
		Timeout:           timeout,
		MaxRetries:        cfg.API.MaxRetries,
		BackoffBase:       backoffBase,
	})

	snapshots := repository.NewSnapshotRepository(db.Conn())
	battles := repository.NewBattleRepository(db.Conn())

	cacheTTL, _ := cfg.GetCacheTTL()
	var counterCache *cache.Cache[*models.CounterQueryResult]
	statsCache := stats.NewCache(cacheTTL, cache.SystemClock{})
	if cfg.Cache.Enabled {
		counterCache = cache.New[*models.CounterQueryResult](cacheTTL, cache.SystemClock{})
	} else {
		statsCache = nil
	}

	refreshInterval, _ := cfg.GetRefreshInterval()
	statsService := stats.NewService(client, battles, statsCache, refreshInterval, logger)
	counterEngine := counter.New(snapshots, counterCache, logger)

	server := api.NewServer(&api.Config{Port: cfg.Server.Port}, &api.Services{
		Meta:      snapshots,
		Counters:  counterEngine,
		Stats:     statsService,
		Snapshots: snapshots,
	}, logger)

	if err := server.Start(); err != nil {
		return fmt.Errorf("start API server: %w", err)
	}
	logger.Info("serving", "url", fmt.Sprintf("http://localhost:%d", server.Port()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

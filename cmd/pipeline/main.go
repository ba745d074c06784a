// Package main runs one batch pipeline pass: discover players, fetch
// their battle logs, aggregate deck and matchup statistics, and publish a
// fresh snapshot generation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/cards"
	"github.com/ramonehamilton/royale-meta/internal/config"
	"github.com/ramonehamilton/royale-meta/internal/pipeline"
	"github.com/ramonehamilton/royale-meta/internal/royale"
	"github.com/ramonehamilton/royale-meta/internal/storage"
	"github.com/ramonehamilton/royale-meta/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.royale-meta/config.toml)")
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
		log.Fatalf("pipeline failed: %v", err)
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
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.API.Token == "" {
		return fmt.Errorf("game API token is required (set ROYALE_API_TOKEN or api.token)")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
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

	cardTTL, _ := cfg.GetCardRefreshTTL()
	costs := cards.NewIndex(cards.Options{
		Fetch:      client.GetCards,
		RefreshTTL: cardTTL,
		Logger:     logger,
	})
	defer func() { _ = costs.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Pipeline.CardOverrideFile != "" {
		if err := costs.LoadOverrideFile(cfg.Pipeline.CardOverrideFile); err != nil {
			logger.Warn("loading card override file failed", "error", err)
		}
	}
	if err := costs.Refresh(ctx); err != nil {
		logger.Warn("card catalog refresh failed, using default costs", "error", err)
	}

	snapshots := repository.NewSnapshotRepository(db.Conn())
	p := pipeline.New(client, snapshots, costs, pipeline.Config{
		PlayersToSample:   cfg.Pipeline.PlayersToSample,
		Location:          cfg.Pipeline.Location,
		ClanLimit:         cfg.Pipeline.ClanLimit,
		TopMembersPerClan: cfg.Pipeline.TopMembersPerClan,
		Concurrency:       cfg.Pipeline.Concurrency,
		BattlesPerPlayer:  cfg.Pipeline.BattlesPerPlayer,
		MinSampleSize:     cfg.Pipeline.MinSampleSize,
		KeepGenerations:   cfg.Pipeline.KeepGenerations,
	}, logger)

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Published generation %d: %d players (%d failed), %d battles, %d meta decks, %d counter rows in %s\n",
		report.GenerationID, report.PlayersSampled, report.PlayersFailed,
		report.BattlesProcessed, report.MetaDecks, report.CounterDecks, report.Duration.Round(time.Millisecond))

	if cfg.Database.BackupDir != "" {
		bm := storage.NewBackupManager(cfg.Database.Path, storage.BackupConfig{
			Dir:      cfg.Database.BackupDir,
			Password: os.Getenv("ROYALE_BACKUP_PASSWORD"),
			Keep:     5,
		})
		backupPath, err := bm.Backup()
		if err != nil {
			logger.Warn("backup failed", "error", err)
		} else {
			logger.Info("database backed up", "path", backupPath)
		}
	}

	return nil
}

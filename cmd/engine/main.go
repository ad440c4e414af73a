// Command engine wires every collaborator-bearing service together,
// starts the scheduler, and blocks until an interrupt or termination
// signal is received. The HTTP router described in spec §6 is an
// out-of-scope collaborator; this binary's job ends at constructing and
// retiring the engine's own background components.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hanzidojo/engine/internal/blobstore"
	"github.com/hanzidojo/engine/internal/config"
	"github.com/hanzidojo/engine/internal/gamesession"
	"github.com/hanzidojo/engine/internal/generator"
	"github.com/hanzidojo/engine/internal/qgen"
	"github.com/hanzidojo/engine/internal/scheduler"
	"github.com/hanzidojo/engine/internal/selection"
	"github.com/hanzidojo/engine/internal/store"
	"github.com/hanzidojo/engine/internal/usersettings"
	"github.com/hanzidojo/engine/internal/word"
	"github.com/hanzidojo/engine/internal/word/scraper"
	"github.com/hanzidojo/engine/internal/wrongword"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("engine exited with error")
		os.Exit(1)
	}
}

// shutdownTimeout bounds how long the store's PrepareForShutdown waits
// for in-flight operations to return their connections (spec §4.1).
const shutdownTimeout = 10 * time.Second

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == config.EnvDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, store.Options{
		Host:              cfg.Store.Host,
		User:              cfg.Store.User,
		Password:          cfg.Store.Password,
		Database:          cfg.Store.Database,
		SSLMode:           cfg.Store.SSLMode,
		Port:              cfg.Store.Port,
		MaxOpenConns:      cfg.Store.MaxOpenConns,
		ConnMaxIdleTime:   cfg.Store.ConnMaxIdleTime,
		StatementTimeout:  cfg.Store.StatementTimeout,
		IdleInTxTimeout:   cfg.Store.IdleInTxTimeout,
		KeepaliveIdleSec:  cfg.Store.KeepaliveIdleSec,
		KeepaliveIntvlSec: cfg.Store.KeepaliveIntvlSec,
		KeepaliveCount:    cfg.Store.KeepaliveCount,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	dictionary := scraper.New(cfg.Word.DictionaryBaseURL, cfg.Word.DictionaryScrapeTimeout)
	words := word.New(db, dictionary, cfg.Word.PronunciationURLTemplate, cfg.Word.StrokeAnimationURLTemplate, logger)
	wrongwords := wrongword.New(db, words, logger)

	blobs, err := blobstore.New(ctx, cfg.BlobStore, logger)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	gen := generator.New(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.DefaultMaxTokens, logger)
	gqen := qgen.New(db, words, blobs, gen, cfg.QGen.BatchSize, cfg.QGen.MaxWait, logger)

	engine := selection.New(db, words, wrongwords, gqen, cfg.Selection, logger)
	_ = engine // consumed by the out-of-scope HTTP router; constructed here so its lifetime matches the process's.

	sessions := gamesession.New(db, logger)
	_ = sessions // same: wired for the router, exercised here only to confirm construction succeeds.

	settings := usersettings.New(db)
	_ = settings

	sched := scheduler.New(db, logger)
	sched.Start()

	logger.Info().Msg("engine started")
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	// Reverse dependency order (spec §5): queue manager, then the
	// external-generator client (no owned resources to release beyond
	// its HTTP client, left to GC), then the scheduler, then the store.
	gqen.Stop()
	sched.Stop()
	db.PrepareForShutdown(shutdownTimeout)
	if err := db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	logger.Info().Msg("engine stopped")
	return nil
}

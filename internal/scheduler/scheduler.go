// Package scheduler runs the engine's periodic maintenance jobs (spec
// §4.10): stale game-session cleanup, stale auth-session cleanup, and a
// connection-pool refresh probe.
//
// Grounded on pkg/connector/memory_sync.go's ensureIntervalSync
// ticker-in-a-goroutine idiom (beeper-ai-bridge), generalized from a
// single interval sync to several independently-ticking jobs, and given
// an explicit stop channel in the style of internal/batchqueue's
// Processor so the scheduler participates in the same graceful-shutdown
// sequence.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/store"
)

const (
	gameSessionCleanupInterval = 6 * time.Hour
	authSessionCleanupInterval = 12 * time.Hour
	connectionRefreshInterval  = 10 * time.Minute
)

// Scheduler owns the three periodic jobs, each on its own ticker. Jobs run
// sequentially within their own schedule (spec §4.10): a slow run of one
// job never delays or skips a run of another, but a job that is still
// running when its own next tick fires has that tick dropped, not queued
// (missed fires are skipped, no backfill).
type Scheduler struct {
	db  *store.DB
	log zerolog.Logger

	stopCh chan struct{}
	doneWG sync.WaitGroup
}

// New builds a Scheduler. Call Start to begin running jobs.
func New(db *store.DB, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		log:    log.With().Str("component", "scheduler").Logger(),
		stopCh: make(chan struct{}),
	}
}

// Start launches all three jobs as background goroutines. Safe to call
// once; calling it twice starts duplicate tickers.
func (s *Scheduler) Start() {
	s.runJob("cleanup_game_sessions", gameSessionCleanupInterval, s.cleanupGameSessions)
	s.runJob("cleanup_auth_sessions", authSessionCleanupInterval, s.cleanupAuthSessions)
	s.runJob("refresh_connection_pool", connectionRefreshInterval, s.refreshConnectionPool)
}

// Stop signals all jobs to exit and waits for the current tick of each
// (if any is mid-run) to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.doneWG.Wait()
}

func (s *Scheduler) runJob(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.doneWG.Add(1)
	go func() {
		defer s.doneWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				select {
				case <-s.stopCh:
					return
				default:
				}
				fn(context.Background())
				s.log.Debug().Str("job", name).Msg("ran scheduled job")
			}
		}
	}()
}

func (s *Scheduler) cleanupGameSessions(ctx context.Context) {
	result, err := s.db.CleanupGameSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup_game_sessions failed")
		return
	}
	s.log.Info().
		Int64("abandoned_count", result.AbandonedCount).
		Int64("deleted_count", result.DeletedCount).
		Msg("cleaned stale game sessions")
}

func (s *Scheduler) cleanupAuthSessions(ctx context.Context) {
	result, err := s.db.CleanupAuthSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup_auth_sessions failed")
		return
	}
	s.log.Info().
		Int64("expired_count", result.ExpiredCount).
		Int64("deleted_count", result.DeletedCount).
		Msg("cleaned stale auth sessions")
}

// refreshConnectionPool executes a trivial query to keep idle pool
// connections alive and detect a dead pool early (spec §4.10).
func (s *Scheduler) refreshConnectionPool(ctx context.Context) {
	if _, _, err := s.db.Query(ctx, store.FetchOne, "SELECT 1"); err != nil {
		s.log.Warn().Err(err).Msg("connection pool refresh probe failed")
	}
}

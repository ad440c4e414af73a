// Package store is the relational store adapter (spec §4.1). It owns the
// connection pool and exposes typed CRUD, stored-procedure calls, and
// parameterized complex queries; callers never see a raw *sql.DB.
//
// Grounded on pkg/textfs/store.go and pkg/connector/memory_manager.go's use
// of go.mau.fi/util/dbutil for $n-placeholder, ctx-first queries (their
// db.Exec(ctx, ...)/db.Query(ctx, ...)/db.QueryRow(ctx, ...) seam), adapted
// from SQLite to Postgres via lib/pq, and on joestump-claude-ops/internal
// /db/db.go for the embedded-migrations-on-Open shape. Pool tuning
// (SetMaxOpenConns, Stats, the migration runner's explicit BeginTx) stays
// on the raw *sql.DB: nothing in the pack's dbutil usage exercises pool
// configuration or ad-hoc multi-statement transactions, only the
// Exec/Query/QueryRow seam that every other store method goes through.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"go.mau.fi/util/dbutil"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps a *sql.DB connection pool to the Postgres-compatible store.
// Every typed CRUD/procedure operation below reads and writes through dbu,
// the corpus's ctx-aware connection seam; conn stays around for pool
// tuning and the migration runner's transaction control.
type DB struct {
	conn *sql.DB
	dbu  *dbutil.Database
	log  zerolog.Logger

	statementTimeout time.Duration
}

// Options configures Open. Zero values fall back to spec-mandated defaults
// (pool min 1 / max 6, 5m idle lifetime, 60s per-statement timeout).
type Options struct {
	Host, User, Password, Database, SSLMode string
	Port                                     int
	MaxOpenConns                             int
	ConnMaxIdleTime                          time.Duration
	StatementTimeout                         time.Duration
	IdleInTxTimeout                          time.Duration
	KeepaliveIdleSec, KeepaliveIntvlSec      int
	KeepaliveCount                           int
	Logger                                   zerolog.Logger
}

func (o Options) dsn() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d user=%s dbname=%s sslmode=%s",
		o.Host, o.Port, o.User, o.Database, valueOr(o.SSLMode, "disable"))
	if o.Password != "" {
		fmt.Fprintf(&b, " password=%s", o.Password)
	}
	fmt.Fprintf(&b, " connect_timeout=10")
	fmt.Fprintf(&b, " keepalives=1 keepalives_idle=%d keepalives_interval=%d keepalives_count=%d",
		valueOrInt(o.KeepaliveIdleSec, 300), valueOrInt(o.KeepaliveIntvlSec, 30), valueOrInt(o.KeepaliveCount, 3))
	idleInTx := o.IdleInTxTimeout
	if idleInTx == 0 {
		idleInTx = 30 * time.Second
	}
	fmt.Fprintf(&b, " idle_in_transaction_session_timeout=%d", idleInTx.Milliseconds())
	return b.String()
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func valueOrInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Open opens the pool, applies pool limits, sets the per-connection
// session timeout, and runs all pending migrations.
func Open(ctx context.Context, opts Options) (*DB, error) {
	conn, err := sql.Open("postgres", opts.dsn())
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	maxOpen := valueOrInt(opts.MaxOpenConns, 6)
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(1) // pool minimum-1 semantics: keep one warm idle connection
	idleLifetime := opts.ConnMaxIdleTime
	if idleLifetime == 0 {
		idleLifetime = 5 * time.Minute
	}
	conn.SetConnMaxIdleTime(idleLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	idleInTx := opts.IdleInTxTimeout
	if idleInTx == 0 {
		idleInTx = 30 * time.Second
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("SET idle_in_transaction_session_timeout = %d", idleInTx.Milliseconds())); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: session setup: %w", err)
	}

	stmtTimeout := opts.StatementTimeout
	if stmtTimeout == 0 {
		stmtTimeout = 60 * time.Second
	}

	dbu, err := dbutil.NewWithDB(conn, "postgres")
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: wrap dbutil: %w", err)
	}

	db := &DB{conn: conn, dbu: dbu, log: opts.Logger.With().Str("component", "store").Logger(), statementTimeout: stmtTimeout}

	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return db, nil
}

// migrate applies every embedded *.sql file in lexical order, recording
// each one in a schema_migrations table so re-runs are idempotent. This
// is a hand-rolled forward-only runner rather than goose, since our
// migrations include Postgres CREATE FUNCTION bodies that goose's
// SQLite/MySQL-oriented dialects in the retrieval pack don't target.
func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var already int
		row := d.conn.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations WHERE filename = $1`, name)
		if err := row.Scan(&already); err != nil {
			return err
		}
		if already > 0 {
			continue
		}

		sqlBytes, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}

		tx, err := d.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		d.log.Info().Str("migration", name).Msg("applied migration")
	}
	return nil
}

// PrepareForShutdown waits up to timeout for in-flight operations to
// release their borrowed connections back to the pool.
func (d *DB) PrepareForShutdown(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		stats := d.conn.Stats()
		if stats.InUse == 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Close force-terminates the pool after a short grace period.
func (d *DB) Close() error {
	d.PrepareForShutdown(2 * time.Second)
	return d.conn.Close()
}

// withStatementTimeout bounds ctx to the configured per-statement timeout,
// never extending a caller-supplied shorter deadline.
func (d *DB) withStatementTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.statementTimeout)
}

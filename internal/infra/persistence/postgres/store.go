// Package postgres provides a Postgres-backed persistent store that mirrors
// the in-memory semantics while snapshotting state into a slot table after
// every successful transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"listcore/internal/infra/persistence/memory"
	"listcore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/listcore?sslmode=disable"
)

const (
	slotRecords = "records"
	slotTheme   = "theme"
)

// sqlOpen is swappable so tests can register a stub database/sql driver.
var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to Postgres while reusing the in-memory
// implementation for transactions.
type Store struct {
	*memory.Store
	db       *sql.DB
	mu       sync.Mutex
	log      *slog.Logger
	failures atomic.Uint64
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the slot table exists, and hydrates the in-memory
// store from any existing snapshot.
func NewStore(dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if log == nil {
		log = slog.Default()
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		slot TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, log: log}
	s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, payload FROM state`)
	if err != nil {
		s.log.Warn("state unreadable, starting empty", "error", err)
		return
	}
	defer func() { _ = rows.Close() }()

	var (
		snap  domain.Snapshot
		found bool
	)
	for rows.Next() {
		var (
			slot    string
			payload []byte
		)
		if err := rows.Scan(&slot, &payload); err != nil {
			s.log.Warn("state row unreadable, starting empty", "error", err)
			return
		}
		switch slot {
		case slotRecords:
			if err := json.Unmarshal(payload, &snap.Records); err != nil {
				s.log.Warn("records slot corrupted, starting empty", "error", err)
				return
			}
			found = true
		case slotTheme:
			dark, err := strconv.ParseBool(string(payload))
			if err != nil {
				s.log.Warn("theme slot corrupted, defaulting to light", "error", err)
				continue
			}
			snap.Theme = dark
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("state scan failed, starting empty", "error", err)
		return
	}
	if found {
		s.ImportState(snap)
	}
}

// RunInTransaction applies fn atomically, then snapshots to Postgres. The
// snapshot write is fire-and-forget.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ExportState()
	records, err := json.Marshal(snap.Records)
	if err != nil {
		s.noteFailure("encode records", err)
		return
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.noteFailure("begin", err)
		return
	}
	upsert := `INSERT INTO state(slot,payload) VALUES($1,$2) ON CONFLICT(slot) DO UPDATE SET payload=excluded.payload`
	if _, err := tx.ExecContext(ctx, upsert, slotRecords, records); err != nil {
		_ = tx.Rollback()
		s.noteFailure("upsert records", err)
		return
	}
	if _, err := tx.ExecContext(ctx, upsert, slotTheme, []byte(strconv.FormatBool(snap.Theme))); err != nil {
		_ = tx.Rollback()
		s.noteFailure("upsert theme", err)
		return
	}
	if err := tx.Commit(); err != nil {
		s.noteFailure("commit", err)
	}
}

func (s *Store) noteFailure(op string, err error) {
	s.failures.Add(1)
	s.log.Error("persist failed, session continues in memory", "op", op, "error", err)
}

// Reset clears in-memory state and empties the slot table.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Store.Reset(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE slot = $1`, slotRecords); err != nil {
		return fmt.Errorf("clear records slot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE slot = $1`, slotTheme); err != nil {
		return fmt.Errorf("clear theme slot: %w", err)
	}
	return nil
}

// PersistFailures returns how many snapshot writes have failed so far.
func (s *Store) PersistFailures() uint64 { return s.failures.Load() }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// SetOpener overrides the database opener. Tests only.
func SetOpener(open func(driver, dsn string) (*sql.DB, error)) (restore func()) {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = open
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}

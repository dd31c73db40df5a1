// Package sqlite persists the in-memory state to a single SQLite table of
// named slots. State is snapshotted in full after every successful
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"listcore/internal/infra/persistence/memory"
	"listcore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const defaultPath = "listcore.db"

// Slot names mirror the two keys the persisted layout defines: one JSON
// array of records and one boolean theme literal.
const (
	slotRecords = "records"
	slotTheme   = "theme"
)

// Store is a snapshotting SQLite-backed persistent store.
type Store struct {
	*memory.Store
	db       *sql.DB
	mu       sync.Mutex
	path     string
	log      *slog.Logger
	failures atomic.Uint64
}

// NewStore opens the database at path, ensures the slot table, and hydrates
// the in-memory state from any prior snapshot.
func NewStore(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if log == nil {
		log = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		slot TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path, log: log}
	s.load()
	return s, nil
}

// load reads the slots back into a snapshot. A missing or undecodable slot
// is treated as no prior state.
func (s *Store) load() {
	rows, err := s.db.Query(`SELECT slot, payload FROM state`)
	if err != nil {
		s.log.Warn("state unreadable, starting empty", "path", s.path, "error", err)
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
			s.log.Warn("state row unreadable, starting empty", "path", s.path, "error", err)
			return
		}
		switch slot {
		case slotRecords:
			if err := json.Unmarshal(payload, &snap.Records); err != nil {
				s.log.Warn("records slot corrupted, starting empty", "path", s.path, "error", err)
				return
			}
			found = true
		case slotTheme:
			dark, err := strconv.ParseBool(string(payload))
			if err != nil {
				s.log.Warn("theme slot corrupted, defaulting to light", "path", s.path, "error", err)
				continue
			}
			snap.Theme = dark
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("state scan failed, starting empty", "path", s.path, "error", err)
		return
	}
	if found {
		s.ImportState(snap)
	}
}

// RunInTransaction applies fn atomically, then snapshots state to SQLite.
// The snapshot write is fire-and-forget.
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
	upsert := `INSERT INTO state(slot,payload) VALUES(?,?) ON CONFLICT(slot) DO UPDATE SET payload=excluded.payload`
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
	s.log.Error("persist failed, session continues in memory", "op", op, "path", s.path, "error", err)
}

// Reset clears in-memory state and empties the slot table.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Store.Reset(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state`); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	return nil
}

// PersistFailures returns how many snapshot writes have failed so far.
func (s *Store) PersistFailures() uint64 { return s.failures.Load() }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

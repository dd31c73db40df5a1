// Package fs provides a single-file JSON persistence driver. The file is
// the durable slot: human-readable, portable, rewritten in full after every
// successful transaction.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"listcore/internal/infra/persistence/memory"
	"listcore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const defaultPath = "listcore.json"

// Store persists the in-memory state to one JSON document. Load failures
// fall back to the empty snapshot; write failures are logged and counted
// but never surfaced, so the in-memory state stays authoritative for the
// session even when durability is lost.
type Store struct {
	*memory.Store
	mu       sync.Mutex
	path     string
	log      *slog.Logger
	failures atomic.Uint64
}

// NewStore opens (or initializes) the JSON-file-backed store at path.
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
	s := &Store{Store: memory.NewStore(), path: path, log: log}
	s.load()
	return s, nil
}

// load hydrates the memory store from the slot. Absent or corrupted
// payloads are treated as "no prior state", never as an error.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("state file unreadable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("state file corrupted, starting empty", "path", s.path, "error", err)
		return
	}
	s.ImportState(snap)
}

// RunInTransaction applies fn atomically, then rewrites the slot. The write
// is fire-and-forget.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	s.persist()
	return nil
}

func (s *Store) persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ExportState()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.noteFailure("encode state", err)
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.noteFailure("write state", err)
		return
	}
	// Rename keeps the slot update atomic at the filesystem level.
	if err := os.Rename(tmp, s.path); err != nil {
		s.noteFailure("replace state", err)
	}
}

func (s *Store) noteFailure(op string, err error) {
	s.failures.Add(1)
	s.log.Error("persist failed, session continues in memory", "op", op, "path", s.path, "error", err)
}

// Reset clears in-memory state and removes the slot file.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Store.Reset(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}

// PersistFailures returns how many snapshot writes have failed so far.
func (s *Store) PersistFailures() uint64 { return s.failures.Load() }

// Path returns the configured slot file path.
func (s *Store) Path() string { return s.path }

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"listcore/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.AddRecord(domain.Draft{Title: "Persist", Priority: domain.PriorityHigh}); err != nil {
			return err
		}
		tx.SetTheme(true)
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file missing: %v", err)
	}

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload sqlite store: %v", err)
	}
	defer func() { _ = reloaded.Close() }()

	records := reloaded.ListRecords()
	if len(records) != 1 || records[0].Title != "Persist" || records[0].Priority != domain.PriorityHigh {
		t.Fatalf("expected persisted record, got %+v", records)
	}
	if !reloaded.Theme() {
		t.Fatalf("theme slot lost")
	}
	if reloaded.Fresh() {
		t.Fatalf("reloaded store must not be fresh")
	}
	if reloaded.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reloaded.Path())
	}
	if reloaded.DB() == nil {
		t.Fatalf("expected db handle")
	}
}

func TestSQLiteStoreThemeSlotHoldsBoolLiteral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.SetTheme(true)
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	var payload []byte
	if err := store.DB().QueryRow(`SELECT payload FROM state WHERE slot = ?`, slotTheme).Scan(&payload); err != nil {
		t.Fatalf("read theme slot: %v", err)
	}
	if string(payload) != "true" {
		t.Fatalf("theme slot should hold the literal \"true\", got %q", payload)
	}
}

func TestSQLiteStoreWriteFailureKeepsSessionAlive(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	_ = store.Close()
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRecord(domain.Draft{Title: "Still here"})
		return err
	}); err != nil {
		t.Fatalf("write failure must not surface: %v", err)
	}
	if store.PersistFailures() == 0 {
		t.Fatalf("expected persist failure to be counted")
	}
	if got := len(store.ListRecords()); got != 1 {
		t.Fatalf("in-memory state must stay authoritative, got %d records", got)
	}
}

func TestSQLiteStoreResetClearsSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRecord(domain.Draft{Title: "Temporary"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	var n int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&n); err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty slot table, got %d rows", n)
	}

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer func() { _ = reloaded.Close() }()
	if !reloaded.Fresh() {
		t.Fatalf("cleared slot must read back as fresh")
	}
}

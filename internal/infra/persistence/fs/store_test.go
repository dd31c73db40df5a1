package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"listcore/pkg/domain"
)

func TestFSStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if !store.Fresh() {
		t.Fatalf("expected fresh store for absent slot")
	}
	ctx := context.Background()
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.AddRecord(domain.Draft{Title: "Persist me", Category: "chores"}); err != nil {
			return err
		}
		tx.SetTheme(true)
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("slot file missing: %v", err)
	}

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Fresh() {
		t.Fatalf("reloaded store must not be fresh")
	}
	records := reloaded.ListRecords()
	if len(records) != 1 || records[0].Title != "Persist me" || records[0].Category != "chores" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if !reloaded.Theme() {
		t.Fatalf("theme preference lost")
	}
}

func TestFSStoreRoundTripPreservesOrderAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	titles := []string{"zeta", "alpha", "midway"}
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		for _, title := range titles {
			if _, err := tx.AddRecord(domain.Draft{Title: title, Priority: domain.PriorityMedium}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	a, b := store.ListRecords(), reloaded.ListRecords()
	if len(a) != len(b) {
		t.Fatalf("count mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || a[i].Priority != b[i].Priority || !a[i].CreatedAt.Equal(b[i].CreatedAt) {
			t.Fatalf("record %d not equal after round trip:\n  %+v\n  %+v", i, a[i], b[i])
		}
	}
}

func TestFSStoreCorruptedSlotFallsBackEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("corrupted slot must not error: %v", err)
	}
	if !store.Fresh() {
		t.Fatalf("corrupted slot must be treated as no prior state")
	}
	if got := len(store.ListRecords()); got != 0 {
		t.Fatalf("expected empty collection, got %d", got)
	}
}

func TestFSStoreWriteFailureKeepsSessionAlive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	// Turn the slot path into a directory so the rename must fail.
	if err := os.MkdirAll(path, 0o750); err != nil {
		t.Fatalf("block slot: %v", err)
	}
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRecord(domain.Draft{Title: "Survives in memory"})
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

func TestFSStoreResetClearsSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRecord(domain.Draft{Title: "Temporary"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("slot file should be removed, stat err=%v", err)
	}
	if got := len(store.ListRecords()); got != 0 {
		t.Fatalf("expected empty store after reset, got %d", got)
	}
}

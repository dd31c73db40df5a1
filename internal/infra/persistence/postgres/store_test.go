package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"listcore/internal/infra/persistence/postgres/testutil"
	"listcore/pkg/domain"
)

func stubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := SetOpener(func(string, string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore("postgres://stub", nil)
	if err != nil {
		t.Fatalf("new postgres store: %v", err)
	}
	return store, conn
}

func TestPostgresStorePersistsSlots(t *testing.T) {
	store, conn := stubStore(t)
	if !store.Fresh() {
		t.Fatalf("empty slot table must read as fresh")
	}
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.AddRecord(domain.Draft{Title: "Tracked"}); err != nil {
			return err
		}
		tx.SetTheme(true)
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	records, ok := conn.Slots["records"]
	if !ok || !strings.Contains(string(records), "Tracked") {
		t.Fatalf("records slot not written: %q", records)
	}
	if string(conn.Slots["theme"]) != "true" {
		t.Fatalf("theme slot should hold \"true\", got %q", conn.Slots["theme"])
	}
}

func TestPostgresStoreHydratesFromSlots(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.Slots["records"] = []byte(`[{"id":"r1","title":"Hydrated","done":true,"created_at":"2025-01-01T00:00:00Z"}]`)
	conn.Slots["theme"] = []byte("true")
	restore := SetOpener(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("postgres://stub", nil)
	if err != nil {
		t.Fatalf("new postgres store: %v", err)
	}
	if store.Fresh() {
		t.Fatalf("hydrated store must not be fresh")
	}
	records := store.ListRecords()
	if len(records) != 1 || records[0].Title != "Hydrated" || !records[0].Done {
		t.Fatalf("unexpected records: %+v", records)
	}
	if !store.Theme() {
		t.Fatalf("theme preference lost")
	}
}

func TestPostgresStoreCorruptedSlotStartsEmpty(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.Slots["records"] = []byte("{corrupt")
	restore := SetOpener(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("postgres://stub", nil)
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

func TestPostgresStoreWriteFailureKeepsSessionAlive(t *testing.T) {
	store, conn := stubStore(t)
	conn.FailBegin = true
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRecord(domain.Draft{Title: "In memory only"})
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

func TestPostgresStoreResetClearsSlots(t *testing.T) {
	store, conn := stubStore(t)
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRecord(domain.Draft{Title: "Temporary"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := conn.Slots["records"]; ok {
		t.Fatalf("records slot should be cleared")
	}
	if _, ok := conn.Slots["theme"]; ok {
		t.Fatalf("theme slot should be cleared")
	}
}

func TestPostgresStorePingFailureSurfaces(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := SetOpener(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("postgres://stub", nil); err == nil {
		t.Fatalf("expected ping failure to surface")
	}
}

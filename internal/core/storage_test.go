package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestOpenPersistentStoreSelectsDriver(t *testing.T) {
	log := slog.Default()

	t.Setenv("LISTCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(log)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if !store.Fresh() {
		t.Fatalf("memory store should open fresh")
	}

	t.Setenv("LISTCORE_STORAGE_DRIVER", "fs")
	t.Setenv("LISTCORE_FS_PATH", filepath.Join(t.TempDir(), "state.json"))
	store, err = OpenPersistentStore(log)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.AddRecord(Draft{Title: "Durable"})
		return err
	}); err != nil {
		t.Fatalf("fs transaction: %v", err)
	}

	t.Setenv("LISTCORE_STORAGE_DRIVER", "bogus")
	if _, err := OpenPersistentStore(log); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

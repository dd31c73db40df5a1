package core

import (
	"fmt"
	"log/slog"
	"os"

	"listcore/internal/infra/persistence/fs"
	"listcore/internal/infra/persistence/memory"
	"listcore/internal/infra/persistence/postgres"
	"listcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageFS       StorageDriver = "fs"       // single JSON file (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to the JSON file driver when unset.
//
//	LISTCORE_STORAGE_DRIVER: memory|fs|sqlite|postgres (default fs)
//	LISTCORE_FS_PATH: path to the JSON slot file (default ./listcore.json)
//	LISTCORE_SQLITE_PATH: path to the sqlite file (default ./listcore.db)
//	LISTCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(log *slog.Logger) (PersistentStore, error) {
	driver := os.Getenv("LISTCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageFS)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageFS:
		return fs.NewStore(os.Getenv("LISTCORE_FS_PATH"), log)
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("LISTCORE_SQLITE_PATH"), log)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("LISTCORE_POSTGRES_DSN"), log)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

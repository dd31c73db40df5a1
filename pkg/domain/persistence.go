package domain

import "context"

// Snapshot captures the full persisted shape: the ordered record collection
// plus the theme preference. It round-trips losslessly through JSON, with
// time fields as RFC 3339 strings.
type Snapshot struct {
	Records []Record `json:"records"`
	Theme   bool     `json:"theme"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := Snapshot{Theme: s.Theme}
	if s.Records != nil {
		cp.Records = make([]Record, len(s.Records))
		for i, r := range s.Records {
			cp.Records[i] = r.Clone()
		}
	}
	return cp
}

// Transaction exposes the mutations a persistence implementation must
// support within an atomic scope. Missing-ID operations are total no-ops
// reported through the found flag, never errors; only invalid input
// (ValidationError) rejects.
type Transaction interface {
	AddRecord(Draft) (Record, error)
	UpdateRecord(id string, mutate func(*Record) error) (Record, bool, error)
	RemoveRecord(id string) bool
	ToggleRecord(id string) (Record, bool)
	SetTheme(dark bool)
	ListRecords() []Record
	FindRecord(id string) (Record, bool)
	Theme() bool
}

// TransactionView provides read-only access to snapshot state.
type TransactionView interface {
	ListRecords() []Record
	FindRecord(id string) (Record, bool)
	Theme() bool
}

// PersistentStore is the minimal abstraction over durable backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	ListRecords() []Record
	GetRecord(id string) (Record, bool)
	Theme() bool
	// Fresh reports whether the backend held no prior persisted state when
	// the store was opened. Callers use it to decide whether to seed.
	Fresh() bool
	// Reset clears both in-memory and persisted state back to the empty
	// snapshot.
	Reset(ctx context.Context) error
	ExportState() Snapshot
	ImportState(Snapshot)
}

// Package memory provides the in-memory implementation of the record
// persistence store, used directly for tests and ephemeral sessions and
// embedded by every durable driver.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"listcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Record aliases domain.Record for persistence operations.
	Record = domain.Record
	// Draft aliases domain.Draft supplied to AddRecord.
	Draft = domain.Draft
	// Snapshot aliases domain.Snapshot, the persisted shape.
	Snapshot = domain.Snapshot
	// Transaction aliases domain.Transaction, a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView for read-only access.
	TransactionView = domain.TransactionView
)

// state is the ordered, owned collection plus the theme flag. Insertion
// order is the natural order of the collection and must survive commits.
type state struct {
	records []Record
	theme   bool
}

func (s state) clone() state {
	cp := state{theme: s.theme}
	if s.records != nil {
		cp.records = make([]Record, len(s.records))
		for i, r := range s.records {
			cp.records[i] = r.Clone()
		}
	}
	return cp
}

// Store owns the authoritative record collection for one session. Mutations
// run against a clone of the state which replaces the committed state only
// when the transaction function succeeds.
type Store struct {
	mu    sync.RWMutex
	state state
	fresh bool
	nowFn func() time.Time
	idFn  func() string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		fresh: true,
		nowFn: func() time.Time { return time.Now().UTC() },
		idFn:  uuid.NewString,
	}
}

// Tx is the transaction handle passed to RunInTransaction functions.
type Tx struct {
	store *Store
	state *state
	now   time.Time
}

var _ domain.Transaction = (*Tx)(nil)

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy is committed only when fn returns nil.
func (s *Store) RunInTransaction(_ context.Context, fn func(Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	tx := &Tx{store: s, state: &working, now: s.nowFn()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = working
	return nil
}

// View executes fn against a read-only snapshot of committed state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(&view{state: &snapshot})
}

// AddRecord validates the draft, stamps identity and creation time, and
// appends the record at the end of the collection.
func (tx *Tx) AddRecord(d Draft) (Record, error) {
	if err := d.Validate(); err != nil {
		return Record{}, err
	}
	r := Record{
		ID:        tx.store.idFn(),
		Title:     strings.TrimSpace(d.Title),
		Notes:     d.Notes,
		Category:  d.Category,
		Priority:  d.Priority,
		DueAt:     d.DueAt,
		CreatedAt: tx.now,
	}
	tx.state.records = append(tx.state.records, r.Clone())
	return r.Clone(), nil
}

// UpdateRecord replaces the matching record with a mutated copy at the same
// position. A missing id is a no-op reported via the found flag. ID and
// CreatedAt are restored after the mutator runs; a mutation that blanks the
// title rejects with a ValidationError.
func (tx *Tx) UpdateRecord(id string, mutate func(*Record) error) (Record, bool, error) {
	idx := tx.indexOf(id)
	if idx < 0 {
		return Record{}, false, nil
	}
	current := tx.state.records[idx].Clone()
	if err := mutate(&current); err != nil {
		return Record{}, true, err
	}
	current.ID = id
	current.CreatedAt = tx.state.records[idx].CreatedAt
	if strings.TrimSpace(current.Title) == "" {
		return Record{}, true, domain.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	current.Title = strings.TrimSpace(current.Title)
	tx.state.records[idx] = current.Clone()
	return current, true, nil
}

// RemoveRecord filters the record out of the collection; false when absent.
func (tx *Tx) RemoveRecord(id string) bool {
	idx := tx.indexOf(id)
	if idx < 0 {
		return false
	}
	tx.state.records = append(tx.state.records[:idx], tx.state.records[idx+1:]...)
	return true
}

// ToggleRecord flips the completion flag; a missing id is a no-op.
func (tx *Tx) ToggleRecord(id string) (Record, bool) {
	idx := tx.indexOf(id)
	if idx < 0 {
		return Record{}, false
	}
	current := tx.state.records[idx].Clone()
	current.Done = !current.Done
	tx.state.records[idx] = current.Clone()
	return current, true
}

// SetTheme records the dark-mode preference inside the transaction.
func (tx *Tx) SetTheme(dark bool) { tx.state.theme = dark }

// ListRecords returns the transactional collection in order.
func (tx *Tx) ListRecords() []Record { return cloneRecords(tx.state.records) }

// FindRecord retrieves a record by ID from the transactional state.
func (tx *Tx) FindRecord(id string) (Record, bool) {
	if idx := tx.indexOf(id); idx >= 0 {
		return tx.state.records[idx].Clone(), true
	}
	return Record{}, false
}

// Theme returns the transactional theme flag.
func (tx *Tx) Theme() bool { return tx.state.theme }

func (tx *Tx) indexOf(id string) int {
	for i, r := range tx.state.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

type view struct {
	state *state
}

func (v *view) ListRecords() []Record { return cloneRecords(v.state.records) }

func (v *view) FindRecord(id string) (Record, bool) {
	for _, r := range v.state.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Record{}, false
}

func (v *view) Theme() bool { return v.state.theme }

// Read helpers ---------------------------------------------------------------

// ListRecords returns the committed collection in insertion order.
func (s *Store) ListRecords() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.state.records)
}

// GetRecord retrieves a record by ID from committed state.
func (s *Store) GetRecord(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.state.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Record{}, false
}

// Theme returns the committed dark-mode preference.
func (s *Store) Theme() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.theme
}

// Fresh reports whether the store was opened without prior persisted state.
// The pure in-memory store is always fresh until a snapshot is imported.
func (s *Store) Fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fresh
}

// Reset discards all state back to the empty snapshot.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	return nil
}

// ExportState captures a point-in-time clone of the full state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Records: cloneRecords(s.state.records), Theme: s.state.theme}
}

// ImportState replaces the committed state with the supplied snapshot and
// marks the store as hydrated from prior state.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := snap.Clone()
	s.state = state{records: cp.Records, theme: cp.Theme}
	s.fresh = false
}

// SetClock overrides the creation timestamp source. Tests only.
func (s *Store) SetClock(now func() time.Time) { s.nowFn = now }

// SetIDSource overrides the record ID generator. Tests only.
func (s *Store) SetIDSource(next func() string) { s.idFn = next }

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

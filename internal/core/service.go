package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"listcore/internal/blob"
	"listcore/internal/theme"
)

// Service exposes the operation set the UI collaborator drives: record
// mutations, derived view projection, and the theme preference. Every
// operation runs synchronously and persists through the underlying store.
type Service struct {
	store   PersistentStore
	log     *slog.Logger
	metrics MetricsRecorder
	detect  theme.Detector
	seed    []Draft
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithThemeDetector overrides the OS dark-scheme probe used when no
// persisted theme exists.
func WithThemeDetector(d theme.Detector) Option {
	return func(s *Service) { s.detect = d }
}

// WithSeed sets the records installed into a fresh store. An explicit empty
// slice disables seeding.
func WithSeed(drafts []Draft) Option {
	return func(s *Service) { s.seed = drafts }
}

// NewService constructs a service over the supplied store. When the store
// opened without prior persisted state, the seed records are installed and
// the theme is initialized from the detector signal.
func NewService(store PersistentStore, opts ...Option) (*Service, error) {
	s := &Service{
		store:   store,
		log:     slog.Default(),
		metrics: NopMetricsRecorder{},
		detect:  theme.Detect,
		seed:    SeedDrafts(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if store.Fresh() {
		if err := s.initFresh(context.Background()); err != nil {
			return nil, fmt.Errorf("initialize fresh store: %w", err)
		}
	}
	return s, nil
}

func (s *Service) initFresh(ctx context.Context) error {
	dark, ok := s.detect()
	if len(s.seed) == 0 && !ok {
		return nil
	}
	return s.store.RunInTransaction(ctx, func(tx Transaction) error {
		for _, d := range s.seed {
			if _, err := tx.AddRecord(d); err != nil {
				return err
			}
		}
		if ok {
			tx.SetTheme(dark)
		}
		return nil
	})
}

// Store returns the underlying persistent store.
func (s *Service) Store() PersistentStore { return s.store }

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
}

// Add validates the draft and appends a new record.
func (s *Service) Add(ctx context.Context, d Draft) (Record, error) {
	start := time.Now()
	var created Record
	err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.AddRecord(d)
		return err
	})
	s.observe(ctx, "add", start, err)
	if err != nil {
		s.log.Info("add rejected", "error", err)
		return Record{}, err
	}
	return created, nil
}

// Update applies the mutator to the record with the given id. found is
// false when no such record exists; the store is then unchanged.
func (s *Service) Update(ctx context.Context, id string, mutate func(*Record) error) (Record, bool, error) {
	start := time.Now()
	var (
		updated Record
		found   bool
	)
	err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, found, err = tx.UpdateRecord(id, mutate)
		return err
	})
	s.observe(ctx, "update", start, err)
	if err != nil {
		return Record{}, found, err
	}
	return updated, found, nil
}

// Remove deletes the record with the given id; removing an unknown id is a
// no-op reported through found.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	var found bool
	err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		found = tx.RemoveRecord(id)
		return nil
	})
	s.observe(ctx, "remove", start, err)
	return found, err
}

// Toggle flips the completion flag of the record with the given id.
func (s *Service) Toggle(ctx context.Context, id string) (Record, bool, error) {
	start := time.Now()
	var (
		toggled Record
		found   bool
	)
	err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		toggled, found = tx.ToggleRecord(id)
		return nil
	})
	s.observe(ctx, "toggle", start, err)
	return toggled, found, err
}

// Get retrieves one record from committed state.
func (s *Service) Get(id string) (Record, bool) { return s.store.GetRecord(id) }

// List returns the full collection in insertion order.
func (s *Service) List() []Record { return s.store.ListRecords() }

// Project computes the derived view of the collection for the query.
func (s *Service) Project(q Query) []Record {
	return Project(s.store.ListRecords(), q)
}

// Theme returns the current dark-mode preference.
func (s *Service) Theme() bool { return s.store.Theme() }

// ToggleTheme flips and persists the dark-mode preference, returning the
// new value.
func (s *Service) ToggleTheme(ctx context.Context) (bool, error) {
	start := time.Now()
	var dark bool
	err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		dark = !tx.Theme()
		tx.SetTheme(dark)
		return nil
	})
	s.observe(ctx, "toggle_theme", start, err)
	return dark, err
}

// Reset clears the in-memory collection and the persisted slot.
func (s *Service) Reset(ctx context.Context) error {
	start := time.Now()
	err := s.store.Reset(ctx)
	s.observe(ctx, "reset", start, err)
	return err
}

// Export archives the current snapshot as a JSON document in the blob
// store. An empty key derives a timestamped one under snapshots/.
func (s *Service) Export(ctx context.Context, target blob.Store, key string) (blob.Info, error) {
	start := time.Now()
	info, err := s.export(ctx, target, key)
	s.observe(ctx, "export", start, err)
	if err != nil {
		return blob.Info{}, err
	}
	s.log.Info("snapshot exported", "key", info.Key, "bytes", info.Size)
	return info, nil
}

func (s *Service) export(ctx context.Context, target blob.Store, key string) (blob.Info, error) {
	snap := s.store.ExportState()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if key == "" {
		key = fmt.Sprintf("snapshots/listcore-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	}
	return target.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"records": fmt.Sprintf("%d", len(snap.Records))},
	})
}

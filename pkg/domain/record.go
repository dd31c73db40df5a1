// Package domain defines the core record entities, value types, view
// projection primitives, and persistence contracts used by listcore.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks a record for sorting. The zero value means unset.
type Priority string

// Record priorities with their explicit sort ranks (see Rank).
const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank maps a priority to its numeric sort weight. Unset ranks lowest so
// ordering over optional priorities stays total.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Record is one entity in a managed list: a task, an event, a tenant.
// ID and CreatedAt are immutable once the record exists; every mutation
// replaces the record value at the same position in the collection.
type Record struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	Notes     *string    `json:"notes,omitempty"`
	Category  string     `json:"category,omitempty"`
	Priority  Priority   `json:"priority,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Clone returns a deep copy so callers can never alias store-owned state.
func (r Record) Clone() Record {
	cp := r
	if r.Notes != nil {
		notes := *r.Notes
		cp.Notes = &notes
	}
	if r.DueAt != nil {
		due := *r.DueAt
		cp.DueAt = &due
	}
	return cp
}

// Draft carries the caller-supplied fields for a new record. ID, Done and
// CreatedAt are stamped by the store at creation.
type Draft struct {
	Title    string
	Notes    *string
	Category string
	Priority Priority
	DueAt    *time.Time
}

// Validate rejects drafts whose title trims to empty or whose priority is
// unknown. A valid draft produces no error.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if !d.Priority.Valid() {
		return ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", string(d.Priority))}
	}
	return nil
}

// ValidationError reports client-supplied invalid input. It is the only
// error class surfaced by record mutations; everything else is a no-op.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

package domain

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StatusFilter narrows a projection to records in a completion state.
type StatusFilter string

// Status filters. StatusAll keeps every record.
const (
	StatusAll    StatusFilter = "all"
	StatusActive StatusFilter = "active"
	StatusDone   StatusFilter = "done"
)

// SortKey selects the record field a projection orders by. The zero value
// keeps insertion order.
type SortKey string

// Sortable record fields.
const (
	SortNone      SortKey = ""
	SortTitle     SortKey = "title"
	SortCreatedAt SortKey = "created_at"
	SortDueAt     SortKey = "due_at"
	SortPriority  SortKey = "priority"
)

// SortOrder flips the comparator direction.
type SortOrder string

// Sort directions. Ascending is the default.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Query bundles the view parameters a caller projects the collection
// through: free-text search, a status filter, an optional category filter,
// and a sort key plus direction.
type Query struct {
	Search   string
	Status   StatusFilter
	Category string
	Key      SortKey
	Order    SortOrder
}

// Project computes the derived view of records for the given query. It is
// pure: the input slice is never mutated and results are deep copies.
// Filtering always precedes sorting, so the set of included records depends
// only on Search/Status/Category, never on the sort parameters.
func Project(records []Record, q Query) []Record {
	out := make([]Record, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, r := range records {
		if !matchesStatus(r, q.Status) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(r.Category, q.Category) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r.Clone())
	}
	sortRecords(out, q.Key, q.Order)
	return out
}

func matchesStatus(r Record, f StatusFilter) bool {
	switch f {
	case StatusActive:
		return !r.Done
	case StatusDone:
		return r.Done
	default: // StatusAll or unset
		return true
	}
}

// matchesSearch reports whether any designated text field contains the
// lower-cased needle as a substring.
func matchesSearch(r Record, needle string) bool {
	if strings.Contains(strings.ToLower(r.Title), needle) {
		return true
	}
	if r.Notes != nil && strings.Contains(strings.ToLower(*r.Notes), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Category), needle)
}

func sortRecords(records []Record, key SortKey, order SortOrder) {
	if key == SortNone {
		return
	}
	less := comparatorFor(key)
	if order == OrderDesc {
		asc := less
		less = func(a, b Record) bool { return asc(b, a) }
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

func comparatorFor(key SortKey) func(a, b Record) bool {
	switch key {
	case SortTitle:
		col := collate.New(language.Und, collate.Loose)
		return func(a, b Record) bool { return col.CompareString(a.Title, b.Title) < 0 }
	case SortDueAt:
		return func(a, b Record) bool { return instantOf(a.DueAt).Before(instantOf(b.DueAt)) }
	case SortPriority:
		return func(a, b Record) bool { return a.Priority.Rank() < b.Priority.Rank() }
	default: // SortCreatedAt
		return func(a, b Record) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

// instantOf treats an absent optional time as the epoch zero so the order
// over optionals stays total and deterministic.
func instantOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

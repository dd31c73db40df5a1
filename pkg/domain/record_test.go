package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDraftValidation(t *testing.T) {
	cases := []struct {
		name    string
		draft   Draft
		wantErr bool
	}{
		{name: "valid", draft: Draft{Title: "Buy milk"}},
		{name: "valid with attributes", draft: Draft{Title: "Plan", Priority: PriorityHigh, Category: "work"}},
		{name: "blank title", draft: Draft{Title: "   "}, wantErr: true},
		{name: "empty title", draft: Draft{}, wantErr: true},
		{name: "unknown priority", draft: Draft{Title: "x", Priority: Priority("urgent")}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.wantErr {
				var verr ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPriorityRankTable(t *testing.T) {
	ranks := map[Priority]int{
		PriorityNone:   0,
		PriorityLow:    1,
		PriorityMedium: 2,
		PriorityHigh:   3,
	}
	for p, want := range ranks {
		if got := p.Rank(); got != want {
			t.Fatalf("rank of %q: got %d want %d", p, got, want)
		}
	}
	if Priority("bogus").Rank() != 0 {
		t.Fatalf("unknown priority must rank lowest")
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	notes := "original"
	due := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := Record{ID: "r1", Title: "Task", Notes: &notes, DueAt: &due, CreatedAt: time.Now().UTC()}
	cp := r.Clone()
	*cp.Notes = "changed"
	*cp.DueAt = due.Add(time.Hour)
	if *r.Notes != "original" {
		t.Fatalf("clone aliased notes")
	}
	if !r.DueAt.Equal(due) {
		t.Fatalf("clone aliased due time")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	notes := "bring the projector"
	due := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	snap := Snapshot{
		Theme: true,
		Records: []Record{
			{ID: "1", Title: "Annual School Fest", Category: "Upcoming", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "2", Title: "Science Exhibition", Category: "Planning", Notes: &notes, Priority: PriorityHigh, DueAt: &due, Done: true, CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
		},
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"due_at":"2025-03-14T09:30:00Z"`) {
		t.Fatalf("expected RFC 3339 due_at, got %s", data)
	}
	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(snap, back) {
		t.Fatalf("round trip mismatch:\n  in  %+v\n  out %+v", snap, back)
	}
}

func TestSnapshotCloneIndependence(t *testing.T) {
	snap := Snapshot{Records: []Record{{ID: "1", Title: "One"}}}
	cp := snap.Clone()
	cp.Records[0].Title = "Mutated"
	cp.Theme = true
	if snap.Records[0].Title != "One" || snap.Theme {
		t.Fatalf("clone shares state with original")
	}
}

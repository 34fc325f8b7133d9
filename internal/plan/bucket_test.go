package plan

import (
	"testing"

	"weekplan/internal/model"
)

func TestGroupByDayKeys(t *testing.T) {
	events := []model.Event{
		{Title: "a", Day: model.Monday, Start: 60, End: 120},
		{Title: "b", Date: "2026-09-02", Start: 60, End: 120},
		{Title: "c", Start: 60, End: 120}, // unaddressed
		{Title: "d", Day: model.Monday, Date: "2026-09-02", Start: 200, End: 260},
	}

	buckets := GroupByDay(events)
	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(buckets))
	}

	// Concrete date wins over abstract weekday; discovery order is preserved.
	wantKeys := []string{"monday", "2026-09-02", "unspecified"}
	for i, want := range wantKeys {
		if buckets[i].Key != want {
			t.Errorf("bucket[%d].Key = %q, want %q", i, buckets[i].Key, want)
		}
	}
	if len(buckets[1].Events) != 2 {
		t.Errorf("date bucket has %d events, want 2", len(buckets[1].Events))
	}
}

func TestGroupByDayPreservesEventOrder(t *testing.T) {
	events := []model.Event{
		{Title: "late", Day: model.Friday, Start: 900, End: 960},
		{Title: "early", Day: model.Friday, Start: 300, End: 360},
	}
	buckets := GroupByDay(events)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if buckets[0].Events[0].Title != "late" || buckets[0].Events[1].Title != "early" {
		t.Error("GroupByDay reordered events within a bucket")
	}
}

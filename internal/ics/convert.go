package ics

import (
	"time"

	"weekplan/internal/model"
)

// Commitments converts occurrences into date-addressed fixed events for the
// planner. All-day occurrences become full-day markers. An occurrence that
// runs past midnight is clamped to its start date; the spillover is not
// rebooked on the next day.
func Commitments(occs []Occurrence) []model.Event {
	events := make([]model.Event, 0, len(occs))
	for _, occ := range occs {
		ev := model.Event{
			ID:          occ.UID + "/" + occ.Start.Format(time.RFC3339),
			Title:       occ.Summary,
			Date:        occ.Start.Format("2006-01-02"),
			Category:    model.CategoryCommitment,
			Flexibility: model.Fixed,
		}

		if occ.AllDay {
			ev.Start, ev.End = 0, 1439
			events = append(events, ev)
			continue
		}

		ev.Start = occ.Start.Hour()*60 + occ.Start.Minute()
		if sameDate(occ.Start, occ.End) {
			ev.End = occ.End.Hour()*60 + occ.End.Minute()
		} else {
			ev.End = 1439
		}
		// A timed commitment must never satisfy the full-day-marker window,
		// or it would stop acting as an obstacle.
		if ev.Start == 0 && ev.End >= 1439 {
			ev.End = 1438
		}
		if ev.End <= ev.Start {
			continue
		}
		events = append(events, ev)
	}
	return events
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

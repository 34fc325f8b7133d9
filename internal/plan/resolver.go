package plan

import (
	"sort"

	"weekplan/internal/clock"
	"weekplan/internal/model"
)

// Default day bounds for relocation when no item-specific window applies.
const (
	dayStartMinutes = 6 * 60  // 06:00
	dayEndMinutes   = 22 * 60 // 22:00
)

// Relocation-failure reasons carried on conflict notes.
const (
	ReasonFixedImmovable = "fixed time could not be moved"
	ReasonNoFreeSlot     = "no free slot same day within hours"
)

// Resolve detects pairwise time overlaps within each day bucket and relocates
// movable events through a three-phase fallback search. Fixed events are never
// moved; when they clash they stay in place, flagged unresolved. The output
// keeps bucket discovery order, and within a day events are ordered by their
// final start time.
//
// One ConflictNote is emitted per relocation attempt, successful or not.
func Resolve(events []model.Event) ([]model.Event, []model.ConflictNote) {
	out := make([]model.Event, 0, len(events))
	notes := make([]model.ConflictNote, 0)

	for _, bucket := range GroupByDay(events) {
		accepted, dayNotes := resolveDay(bucket)
		out = append(out, accepted...)
		notes = append(notes, dayNotes...)
	}
	return out, notes
}

// resolutionOrder sorts a day's events for processing: fixed items first so
// movable items yield to them regardless of clock order, then by flexibility
// (least movable keeps its slot, most movable relocates), then ascending
// start. Equal keys keep input order.
func resolutionOrder(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Flexibility != out[j].Flexibility {
			return out[i].Flexibility < out[j].Flexibility
		}
		return out[i].Start < out[j].Start
	})
	return out
}

func resolveDay(bucket Bucket) ([]model.Event, []model.ConflictNote) {
	var (
		accepted []model.Event // everything kept for the day, start-sorted
		timed    []model.Event // obstacle list: accepted minus full-day markers
		notes    []model.ConflictNote
	)

	accept := func(ev model.Event) {
		accepted = insertByStart(accepted, ev)
		if !ev.AllDay() {
			timed = insertByStart(timed, ev)
		}
	}

	for _, ev := range resolutionOrder(bucket.Events) {
		ev.Normalize()

		if ev.AllDay() || !overlapsAny(timed, ev) {
			accept(ev)
			continue
		}

		if ev.Flexibility == model.Fixed {
			// Fixed events are never relocated: keep the original time,
			// flag it, and let later events still see it as an obstacle.
			notes = append(notes, model.ConflictNote{
				Title:        ev.Title,
				Day:          bucket.Key,
				OriginalTime: clock.Span(ev.Start, ev.End),
				Status:       model.StatusUnresolved,
				Reason:       ReasonFixedImmovable,
			})
			accept(ev)
			continue
		}

		relocated, note := relocate(ev, timed, bucket.Key)
		notes = append(notes, note)
		accept(relocated)
	}
	return accepted, notes
}

// relocate attempts the three-phase fallback search for a movable conflicted
// event. Phase 1 honors the title's preferred window, phase 2 searches from
// the original start to day end, phase 3 sweeps the whole day. Placements
// from phases 2 and 3 are marked outside the preferred window. If every phase
// fails the event keeps its original time and is flagged unresolved.
func relocate(ev model.Event, timed []model.Event, dayKey string) (model.Event, model.ConflictNote) {
	duration := ev.Duration()
	window, hasWindow := PreferredWindow(ev.Title)

	lo := max(ev.Start, dayStartMinutes)
	hi := dayEndMinutes
	if hasWindow {
		lo = max(lo, window.Start)
		hi = window.End
	}

	start, ok := ForwardFit(timed, duration, lo, hi)
	outside := false
	if !ok {
		start, ok = ForwardFit(timed, duration, max(ev.Start, dayStartMinutes), dayEndMinutes)
		outside = true
	}
	if !ok {
		start, ok = ForwardFit(timed, duration, dayStartMinutes, dayEndMinutes)
		outside = true
	}

	note := model.ConflictNote{
		Title:        ev.Title,
		Day:          dayKey,
		OriginalTime: clock.Span(ev.Start, ev.End),
	}

	if !ok {
		note.Status = model.StatusUnresolved
		note.Reason = ReasonNoFreeSlot
		return ev, note
	}

	ev.Start = start
	ev.End = start + duration
	note.Status = model.StatusResolved
	note.NewTime = clock.Span(ev.Start, ev.End)
	note.OutsidePreferred = outside
	return ev, note
}

func overlapsAny(placed []model.Event, ev model.Event) bool {
	for _, p := range placed {
		if ev.Overlaps(p) {
			return true
		}
	}
	return false
}

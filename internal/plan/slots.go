package plan

import "weekplan/internal/model"

// ForwardFit and FirstGap advance their cursors differently at day
// boundaries: ForwardFit treats its bounds as hard limits for retry with
// widening windows, FirstGap treats wake/sleep as the single working day.

// ForwardFit scans forward from searchStart across placed events (sorted
// ascending by start) and returns the start of the earliest slot of the given
// duration that ends no later than endLimit. The second return is false when
// the day is full within the bounds; that is a normal outcome, not an error.
func ForwardFit(placed []model.Event, duration, searchStart, endLimit int) (int, bool) {
	cursor := searchStart

	for _, ev := range placed {
		if cursor+duration <= ev.Start && cursor+duration <= endLimit {
			return cursor, true
		}
		if ev.End > cursor {
			cursor = ev.End
		}
	}

	if cursor+duration <= endLimit {
		return cursor, true
	}
	return 0, false
}

// FirstGap walks a day's events (sorted ascending by start) between wake and
// sleep and returns the start of the first gap at least duration minutes
// long. Returns false when no such gap exists before sleep.
func FirstGap(events []model.Event, wake, sleep, duration int) (int, bool) {
	current := wake

	for _, ev := range events {
		if ev.Start-current >= duration {
			return current, true
		}
		if ev.End > current {
			current = ev.End
		}
	}

	if sleep-current >= duration {
		return current, true
	}
	return 0, false
}

// sortedByStart returns a copy of events ordered ascending by start time,
// preserving input order for equal starts.
func sortedByStart(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Start < out[j-1].Start; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// timedOnly filters out full-day markers, which never act as obstacles.
func timedOnly(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.AllDay() {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// insertByStart inserts ev into a start-sorted slice, keeping it sorted.
// Events with equal starts keep insertion order.
func insertByStart(events []model.Event, ev model.Event) []model.Event {
	i := len(events)
	for i > 0 && events[i-1].Start > ev.Start {
		i--
	}
	events = append(events, model.Event{})
	copy(events[i+1:], events[i:])
	events[i] = ev
	return events
}

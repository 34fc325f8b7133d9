// Package plan implements the deterministic weekly scheduling engine: placing
// fixed and recurring items onto the week, allocating study time into the
// remaining gaps, and resolving time conflicts by relocating movable events.
//
// The engine is pure and synchronous. Given an input snapshot it produces an
// output snapshot with no hidden state and no I/O; identical input yields
// identical output. "No free slot" is a normal outcome surfaced through
// notes, never an error.
package plan

import (
	"github.com/google/uuid"

	"weekplan/internal/model"
)

// Directives is the structured input to one planning pass: already-materialized
// fixed and recurring items plus either explicit study-hour distributions or
// raw course metadata. When both StudyPlan and Courses are present, StudyPlan
// wins; the course mode exists for callers that have no per-day distribution.
type Directives struct {
	Routine   []model.Event
	LockIns   []model.Event
	Events    []model.Event // one-off items, usually date-addressed
	Deadlines []model.Deadline
	StudyPlan []model.StudyPlanItem
	Courses   []model.Course
}

// PlanWeek assembles the candidate event list for one week. Order matters:
// fixed and recurring items are materialized first, then study hours are
// allocated into gaps the earlier placements left open. Study hours that do
// not fit are dropped and reported through the returned notes, never retried.
//
// The returned events are a candidate list; callers pass them to Resolve for
// conflict detection and repair.
func PlanWeek(d Directives, prefs model.Preferences) ([]model.Event, []model.UnplacedNote) {
	events := make([]model.Event, 0,
		len(d.Routine)+len(d.LockIns)+len(d.Events)+len(d.Deadlines))

	events = appendMaterialized(events, d.Routine, model.CategoryRoutine)
	events = appendMaterialized(events, d.LockIns, model.CategoryLockIn)
	events = appendMaterialized(events, d.Events, model.CategoryOther)

	for _, dl := range d.Deadlines {
		events = append(events, model.Event{
			ID:          uuid.NewString(),
			Title:       dl.Title,
			Date:        dl.Date,
			Day:         dl.Day,
			Start:       0,
			End:         1439, // full-day marker
			Category:    model.CategoryCommitment,
			Flexibility: model.Fixed,
		})
	}

	// Per-weekday obstacle lists for the allocators. Date-addressed events
	// live in their own buckets and never obstruct weekday placement.
	obstacles := weekdayObstacles(events)
	load := make(map[model.Weekday]int)

	var studyEvents []model.Event
	var notes []model.UnplacedNote

	switch {
	case len(d.StudyPlan) > 0:
		studyEvents, notes = allocateStudyHours(d.StudyPlan, obstacles, load, prefs)
	case len(d.Courses) > 0:
		studyEvents, notes = planCourses(d.Courses, obstacles, load, prefs)
	}

	return append(events, studyEvents...), notes
}

func appendMaterialized(dst, src []model.Event, defaultCategory model.Category) []model.Event {
	for _, ev := range src {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.Category == "" {
			ev.Category = defaultCategory
		}
		ev.Normalize()
		dst = append(dst, ev)
	}
	return dst
}

// weekdayObstacles groups timed weekday-addressed events into start-sorted
// per-day lists.
func weekdayObstacles(events []model.Event) map[model.Weekday][]model.Event {
	byDay := make(map[model.Weekday][]model.Event)
	for _, ev := range events {
		if ev.Day == "" || ev.Date != "" || ev.AllDay() {
			continue
		}
		byDay[ev.Day] = append(byDay[ev.Day], ev)
	}
	for day, evs := range byDay {
		byDay[day] = sortedByStart(evs)
	}
	return byDay
}

// allocateStudyHours places each study-plan item's per-day hours using the
// first-gap-fit scan between wake and sleep, honoring the daily study cap.
// Hours that exceed the cap or find no gap are reported as unplaced.
func allocateStudyHours(
	items []model.StudyPlanItem,
	obstacles map[model.Weekday][]model.Event,
	load map[model.Weekday]int,
	prefs model.Preferences,
) ([]model.Event, []model.UnplacedNote) {
	capMinutes := prefs.MaxDailyStudyMinutes()

	var placed []model.Event
	var notes []model.UnplacedNote

	for _, item := range items {
		for _, day := range model.WeekOrder {
			hours := item.Hours[day]
			if hours <= 0 {
				continue
			}
			requested := int(hours * 60)

			grant := requested
			if remaining := capMinutes - load[day]; grant > remaining {
				grant = remaining
			}
			if grant < model.MinEventMinutes {
				notes = append(notes, model.UnplacedNote{
					Title:            item.Title,
					Day:              day,
					RequestedMinutes: requested,
				})
				continue
			}

			start, ok := FirstGap(obstacles[day], prefs.WakeMinutes, prefs.SleepMinutes, grant)
			if !ok {
				notes = append(notes, model.UnplacedNote{
					Title:            item.Title,
					Day:              day,
					RequestedMinutes: requested,
				})
				continue
			}

			ev := model.Event{
				ID:          uuid.NewString(),
				Title:       item.Title,
				Day:         day,
				Start:       start,
				End:         start + grant,
				Category:    model.CategoryStudy,
				Flexibility: model.Medium,
			}
			placed = append(placed, ev)
			obstacles[day] = insertByStart(obstacles[day], ev)
			load[day] += grant

			if grant < requested {
				notes = append(notes, model.UnplacedNote{
					Title:            item.Title,
					Day:              day,
					RequestedMinutes: requested,
					PlacedMinutes:    grant,
				})
			}
		}
	}
	return placed, notes
}

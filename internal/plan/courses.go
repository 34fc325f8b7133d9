package plan

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"weekplan/internal/model"
)

// Course-mode constants. Blocks are fixed length; day scores trade off current
// study load, proximity to class days, and the designated free day.
const (
	studyBlockMinutes    = 60
	classDayBonus        = 120
	freeDayPenalty       = 240
	overlapBufferMinutes = 15
	minBlocksPerCourse   = 2
)

// chronoStarts lists candidate block start times per chronotype, tried before
// the fixed fallback list.
var chronoStarts = map[model.Chronotype][]int{
	model.ChronoMorning:   {8 * 60, 9 * 60, 10 * 60},
	model.ChronoAfternoon: {13 * 60, 14 * 60, 15 * 60},
	model.ChronoNight:     {19 * 60, 20 * 60, 21 * 60},
}

// fallbackStarts is tried after the chronotype candidates, in this order.
var fallbackStarts = []int{9 * 60, 11 * 60, 14 * 60, 16 * 60, 18 * 60, 20 * 60}

// courseUrgency ranks a course by how soon its exam is: max(0.6, 21/max(7, d)).
// Urgency only orders placement attempts; it does not guarantee proportional
// time allocation.
func courseUrgency(c model.Course) float64 {
	days := c.DaysUntilExam
	if days < 7 {
		days = 7
	}
	u := 21.0 / float64(days)
	if u < 0.6 {
		u = 0.6
	}
	return u
}

// planCourses generates study blocks from raw course metadata when no explicit
// per-day hour distribution was supplied. Courses are processed in descending
// urgency; each block tries candidate days ordered by score, then candidate
// start times in chronotype-preferred order. A course that cannot reach its
// target block count is reported, not failed.
func planCourses(
	courses []model.Course,
	obstacles map[model.Weekday][]model.Event,
	load map[model.Weekday]int,
	prefs model.Preferences,
) ([]model.Event, []model.UnplacedNote) {
	ranked := make([]model.Course, len(courses))
	copy(ranked, courses)
	sort.SliceStable(ranked, func(i, j int) bool {
		return courseUrgency(ranked[i]) > courseUrgency(ranked[j])
	})

	starts := candidateStarts(prefs.Chronotype)
	capMinutes := prefs.MaxDailyStudyMinutes()

	var placed []model.Event
	var notes []model.UnplacedNote

	for _, course := range ranked {
		target := targetBlocks(course)

		done := 0
		for done < target {
			ev, ok := placeBlock(course, obstacles, load, prefs, starts, capMinutes)
			if !ok {
				break
			}
			placed = append(placed, ev)
			done++
		}

		if done < target {
			notes = append(notes, model.UnplacedNote{
				Title:            course.Title,
				RequestedMinutes: target * studyBlockMinutes,
				PlacedMinutes:    done * studyBlockMinutes,
			})
		}
	}
	return placed, notes
}

// targetBlocks converts expected weekly hours into a block count, at least
// minBlocksPerCourse.
func targetBlocks(c model.Course) int {
	minutes := int(c.WeeklyHours * 60)
	blocks := int(math.Ceil(float64(minutes) / float64(studyBlockMinutes)))
	if blocks < minBlocksPerCourse {
		blocks = minBlocksPerCourse
	}
	return blocks
}

// placeBlock finds a day and start time for one study block, mutating the
// obstacle and load maps on success.
func placeBlock(
	course model.Course,
	obstacles map[model.Weekday][]model.Event,
	load map[model.Weekday]int,
	prefs model.Preferences,
	starts []int,
	capMinutes int,
) (model.Event, bool) {
	for _, day := range rankDays(course, load, prefs) {
		if load[day]+studyBlockMinutes > capMinutes {
			continue
		}
		for _, start := range starts {
			end := start + studyBlockMinutes
			if start < prefs.WakeMinutes || end > prefs.SleepMinutes {
				continue // quiet hours
			}
			if bufferedOverlap(obstacles[day], start, end) {
				continue
			}

			ev := model.Event{
				ID:          uuid.NewString(),
				Title:       course.Title,
				Day:         day,
				Start:       start,
				End:         end,
				Category:    model.CategoryStudy,
				Flexibility: model.Medium,
			}
			obstacles[day] = insertByStart(obstacles[day], ev)
			load[day] += studyBlockMinutes
			return ev, true
		}
	}
	return model.Event{}, false
}

// rankDays orders candidate weekdays by score: current study load, minus a
// bonus for days the course already meets (pulls study near class days), plus
// a penalty for the designated free day. Ties keep canonical week order.
func rankDays(course model.Course, load map[model.Weekday]int, prefs model.Preferences) []model.Weekday {
	days := make([]model.Weekday, len(model.WeekOrder))
	copy(days, model.WeekOrder)

	score := func(day model.Weekday) int {
		s := load[day]
		for _, meet := range course.MeetingDays {
			if meet == day {
				s -= classDayBonus
				break
			}
		}
		if prefs.FreeDay != "" && day == prefs.FreeDay {
			s += freeDayPenalty
		}
		return s
	}

	sort.SliceStable(days, func(i, j int) bool {
		return score(days[i]) < score(days[j])
	})
	return days
}

// candidateStarts returns chronotype-preferred start times followed by the
// fixed fallback list, de-duplicated in order.
func candidateStarts(c model.Chronotype) []int {
	seen := make(map[int]bool)
	out := make([]int, 0, len(fallbackStarts)+3)
	for _, s := range chronoStarts[c] {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range fallbackStarts {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// bufferedOverlap tests a candidate [start, end) padded by the overlap buffer
// against everything already on the day.
func bufferedOverlap(dayEvents []model.Event, start, end int) bool {
	padded := model.Event{Start: start - overlapBufferMinutes, End: end + overlapBufferMinutes}
	for _, ev := range dayEvents {
		if padded.Overlaps(ev) {
			return true
		}
	}
	return false
}

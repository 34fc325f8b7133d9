package model

import (
	"encoding/json"
	"strings"
)

// Weekday is the abstract weekday slot used by recurring events. Values are
// lowercase English day names, matching the config file representation.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekOrder is the canonical iteration order for weekdays. Map iteration order
// is not deterministic in Go, so every per-day loop in the planner walks this
// slice instead.
var WeekOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday normalizes a day name ("Mon", "monday", "MONDAY") to a Weekday.
// Unknown names return "" and false.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	for _, d := range WeekOrder {
		if s == string(d) || (len(s) >= 3 && strings.HasPrefix(string(d), s[:3])) {
			return d, true
		}
	}
	return "", false
}

// Flexibility governs whether and how eagerly an event may be relocated during
// conflict resolution. Fixed events are never moved; Low events are the most
// willing to move.
type Flexibility int

const (
	Fixed Flexibility = iota
	Strong
	Medium
	Low
)

func (f Flexibility) String() string {
	switch f {
	case Fixed:
		return "fixed"
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	case Low:
		return "low"
	}
	return "unknown"
}

// MarshalJSON renders the flexibility as its config-file string form.
func (f Flexibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON accepts the string form; unknown strings become Medium.
func (f *Flexibility) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = ParseFlexibility(s, Medium)
	return nil
}

// ParseFlexibility maps a config string to a Flexibility. Empty or unknown
// values fall back to the given default.
func ParseFlexibility(s string, def Flexibility) Flexibility {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return Fixed
	case "strong":
		return Strong
	case "medium":
		return Medium
	case "low":
		return Low
	}
	return def
}

// Category labels an event for display and placement heuristics. It never
// affects conflict-resolution correctness.
type Category string

const (
	CategoryRoutine    Category = "routine"
	CategoryCommitment Category = "commitment"
	CategoryStudy      Category = "study"
	CategoryLockIn     Category = "lockin"
	CategoryOther      Category = "other"
)

// MinEventMinutes is the minimum effective duration of any event. Shorter
// windows are clamped up during normalization.
const MinEventMinutes = 15

// Event is the atomic schedulable unit. An event is addressed either by an
// abstract weekday (recurring) or a concrete Date in "2006-01-02" form
// (one-off); exactly one of the two is set. Start and End are minutes since
// midnight with End > Start after Normalize.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Day         Weekday     `json:"day,omitempty"`
	Date        string      `json:"date,omitempty"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
	Category    Category    `json:"category"`
	Flexibility Flexibility `json:"flexibility"`
}

// Normalize clamps the event to the minimum effective duration. Callers are
// responsible for chronological Start/End; Normalize does not repair inverted
// windows.
func (e *Event) Normalize() {
	if e.End-e.Start < MinEventMinutes {
		e.End = e.Start + MinEventMinutes
	}
}

// Duration returns the effective duration in minutes, never below
// MinEventMinutes.
func (e Event) Duration() int {
	d := e.End - e.Start
	if d < MinEventMinutes {
		return MinEventMinutes
	}
	return d
}

// AllDay reports whether the event is a full-day marker (00:00–23:59), such as
// a deadline marker or an imported all-day calendar entry. Full-day markers
// are carried through planning and resolution but are not obstacles for slot
// search and are exempt from overlap detection.
func (e Event) AllDay() bool {
	return e.Start == 0 && e.End >= 1439
}

// Overlaps reports whether two timed events intersect, using the half-open
// test max(startA, startB) < min(endA, endB).
func (e Event) Overlaps(o Event) bool {
	lo := e.Start
	if o.Start > lo {
		lo = o.Start
	}
	hi := e.End
	if o.End < hi {
		hi = o.End
	}
	return lo < hi
}

// DayKey returns the bucket key used to group events for conflict resolution:
// the concrete date when present, otherwise the abstract weekday, otherwise a
// sentinel for unaddressed events.
func (e Event) DayKey() string {
	if e.Date != "" {
		return e.Date
	}
	if e.Day != "" {
		return string(e.Day)
	}
	return "unspecified"
}

// Chronotype hints at which part of the day the user prefers for focused work.
type Chronotype string

const (
	ChronoMorning   Chronotype = "morning"
	ChronoAfternoon Chronotype = "afternoon"
	ChronoNight     Chronotype = "night"
)

// Preferences is the immutable per-run soft-constraint input: waking hours,
// the daily study cap, and optional placement hints.
type Preferences struct {
	WakeMinutes        int        // minutes since midnight
	SleepMinutes       int        // minutes since midnight
	MaxDailyStudyHours float64    // cap on study time placed per day; <= 0 means no cap
	Chronotype         Chronotype // "" means no hint
	FreeDay            Weekday    // "" means no mostly-free day
}

// MaxDailyStudyMinutes returns the per-day study cap in minutes. A zero or
// negative cap means unlimited.
func (p Preferences) MaxDailyStudyMinutes() int {
	if p.MaxDailyStudyHours <= 0 {
		return 1 << 30
	}
	return int(p.MaxDailyStudyHours * 60)
}

// StudyPlanItem is an externally supplied directive: place Hours[d] study
// hours for Title on each weekday d. Consumed once, never mutated.
type StudyPlanItem struct {
	Title string
	Hours map[Weekday]float64
}

// Course is raw course metadata for the urgency-ranked planning mode.
type Course struct {
	Title         string
	DaysUntilExam int
	WeeklyHours   float64
	MeetingDays   []Weekday
}

// Deadline materializes as a full-day fixed marker on its date (or weekday).
type Deadline struct {
	Title string
	Date  string
	Day   Weekday
}

// ResolutionStatus is the outcome of one relocation attempt.
type ResolutionStatus string

const (
	StatusResolved   ResolutionStatus = "resolved"
	StatusUnresolved ResolutionStatus = "unresolved"
)

// ConflictNote records one relocation attempt made by the conflict resolver,
// successful or not. Times are "HH:MM-HH:MM" strings for direct display.
type ConflictNote struct {
	Title            string           `json:"title"`
	Day              string           `json:"day"`
	OriginalTime     string           `json:"original_time"`
	NewTime          string           `json:"new_time,omitempty"`
	Status           ResolutionStatus `json:"status"`
	Reason           string           `json:"reason,omitempty"`
	OutsidePreferred bool             `json:"outside_preferred"`
}

// UnplacedNote reports study minutes the planner asked for but could not
// place. Day is empty for course-level shortfalls in the urgency-ranked mode.
type UnplacedNote struct {
	Title            string  `json:"title"`
	Day              Weekday `json:"day,omitempty"`
	RequestedMinutes int     `json:"requested_minutes"`
	PlacedMinutes    int     `json:"placed_minutes"`
}

// UnplacedMinutes is the shortfall for this note.
func (n UnplacedNote) UnplacedMinutes() int {
	return n.RequestedMinutes - n.PlacedMinutes
}

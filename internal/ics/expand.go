package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "weekplan/internal/log"
)

const maxOccurrencesPerEvent = 1000

// Occurrence is one concrete instance of a (possibly recurring) calendar
// event, normalized into the display timezone.
type Occurrence struct {
	SourceID string
	UID      string
	Summary  string
	Location string
	AllDay   bool
	Start    time.Time
	End      time.Time
}

// ExpandConfig bounds recurrence expansion to a concrete window.
type ExpandConfig struct {
	// Location is the timezone occurrences are converted into. time.Local
	// when nil.
	Location *time.Location

	// RangeStart and RangeEnd delimit the expansion window, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time
}

// Expand turns parsed events into concrete occurrences within the window,
// applying RRULE expansion, EXDATE removal and RECURRENCE-ID overrides.
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]Occurrence, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand range end before start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	bases := make([]ParsedEvent, 0, len(events))
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	out := make([]Occurrence, 0, len(bases))
	for _, ev := range bases {
		out = append(out, expandEvent(ev, overridesByUID[ev.UID], cfg)...)
	}
	return out, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	if ev.RawRRule == "" {
		if !rangesTouch(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			return nil
		}
		start, end := ev.Start, ev.End
		if o, ok := overrideFor(overrides, start); ok {
			ev, start, end = o, o.Start, o.End
		}
		return []Occurrence{makeOccurrence(ev, start, end, cfg.Location)}
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("rrule parse failed, event skipped", err, "uid", ev.UID)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	starts := set.Between(
		cfg.RangeStart.In(ev.Start.Location()),
		cfg.RangeEnd.In(ev.Start.Location()),
		true,
	)
	if len(starts) > maxOccurrencesPerEvent {
		appLog.Error("recurrence truncated", errors.New("occurrence cap reached"),
			"uid", ev.UID, "cap", maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		var end time.Time
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.Add(24 * time.Hour)
		} else {
			end = start.Add(dur)
		}

		inst := ev
		if o, ok := overrideFor(overrides, start); ok {
			inst, start, end = o, o.Start, o.End
		}
		out = append(out, makeOccurrence(inst, start, end, cfg.Location))
	}
	return out
}

func overrideFor(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeOccurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) Occurrence {
	return Occurrence{
		SourceID: ev.Source.ID,
		UID:      ev.UID,
		Summary:  ev.Summary,
		Location: ev.Location,
		AllDay:   ev.AllDay,
		Start:    start.In(loc),
		End:      end.In(loc),
	}
}

func rangesTouch(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

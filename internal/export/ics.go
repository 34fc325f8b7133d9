// Package export renders a resolved week plan as an iCalendar document so
// the plan can be subscribed to from any calendar client.
package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"weekplan/internal/model"
)

var byDayCodes = map[model.Weekday]string{
	model.Monday:    "MO",
	model.Tuesday:   "TU",
	model.Wednesday: "WE",
	model.Thursday:  "TH",
	model.Friday:    "FR",
	model.Saturday:  "SA",
	model.Sunday:    "SU",
}

var weekdayIndex = map[model.Weekday]int{
	model.Monday:    0,
	model.Tuesday:   1,
	model.Wednesday: 2,
	model.Thursday:  3,
	model.Friday:    4,
	model.Saturday:  5,
	model.Sunday:    6,
}

// Options anchors the abstract week to concrete dates.
type Options struct {
	// WeekAnchor is any instant inside the week being exported; weekday
	// events are dated relative to the Monday of this week.
	WeekAnchor time.Time

	// Location is the timezone of the rendered timestamps. time.UTC when nil.
	Location *time.Location

	// CalendarName is the X-WR-CALNAME of the produced calendar.
	CalendarName string
}

// Calendar renders the events as an ICS document. Weekday-addressed events
// become weekly recurring VEVENTs anchored to the current week;
// date-addressed events become plain one-off VEVENTs. Events without a day
// or date are skipped.
func Calendar(events []model.Event, opts Options) (string, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WeekAnchor.IsZero() {
		opts.WeekAnchor = time.Now()
	}
	monday := weekMonday(opts.WeekAnchor.In(opts.Location))

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//weekplan//EN")
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}

	for _, ev := range events {
		var dayStart time.Time
		switch {
		case ev.Date != "":
			parsed, err := time.ParseInLocation("2006-01-02", ev.Date, opts.Location)
			if err != nil {
				return "", fmt.Errorf("event %q: bad date %q", ev.Title, ev.Date)
			}
			dayStart = parsed
		case ev.Day != "":
			dayStart = monday.AddDate(0, 0, weekdayIndex[ev.Day])
		default:
			continue
		}

		ve := cal.AddEvent(ev.ID)
		ve.SetSummary(ev.Title)
		ve.SetDtStampTime(time.Now().In(opts.Location))
		if ev.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, string(ev.Category))
		}

		if ev.AllDay() {
			ve.SetAllDayStartAt(dayStart)
			ve.SetAllDayEndAt(dayStart.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(dayStart.Add(time.Duration(ev.Start) * time.Minute))
			ve.SetEndAt(dayStart.Add(time.Duration(ev.End) * time.Minute))
		}

		if ev.Day != "" && ev.Date == "" {
			ve.AddRrule("FREQ=WEEKLY;BYDAY=" + byDayCodes[ev.Day])
		}
	}

	return cal.Serialize(), nil
}

// weekMonday returns midnight of the Monday of t's week in t's location.
func weekMonday(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7 // Monday 0 .. Sunday 6
	return midnight.AddDate(0, 0, -offset)
}

package plan

import "strings"

// Window is a preferred time-of-day range derived from an event title.
type Window struct {
	Start int
	End   int
}

// keywordWindows maps title keywords to preferred windows. Match order
// matters: "breakfast meeting" classifies as breakfast.
var keywordWindows = []struct {
	keyword string
	window  Window
}{
	{"breakfast", Window{Start: 7 * 60, End: 10 * 60}},
	{"lunch", Window{Start: 11 * 60, End: 15 * 60}},
	{"brunch", Window{Start: 11 * 60, End: 15 * 60}},
	{"dinner", Window{Start: 17 * 60, End: 21 * 60}},
	{"meeting", Window{Start: 8 * 60, End: 20 * 60}},
	{"call", Window{Start: 8 * 60, End: 20 * 60}},
}

// PreferredWindow classifies a title into a preferred time window by keyword
// match. Titles matching no keyword get no window and the second return is
// false. This is a display/placement heuristic, not type-safe dispatch; the
// keyword set is part of the observable relocation behavior.
func PreferredWindow(title string) (Window, bool) {
	t := strings.ToLower(title)
	for _, kw := range keywordWindows {
		if strings.Contains(t, kw.keyword) {
			return kw.window, true
		}
	}
	return Window{}, false
}

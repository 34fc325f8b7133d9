package clock

import "testing"

func TestToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"07:00", 420},
		{"09:30", 570},
		{"23:59", 1439},
		{"12", 720},     // missing minutes component
		{" 8:05 ", 485}, // surrounding whitespace
	}
	for _, c := range cases {
		if got := ToMinutes(c.in); got != c.want {
			t.Errorf("ToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestToTime(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{420, "07:00"},
		{570, "09:30"},
		{1439, "23:59"},
		{65, "01:05"},
	}
	for _, c := range cases {
		if got := ToTime(c.in); got != c.want {
			t.Errorf("ToTime(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for m := 0; m < 1440; m += 7 {
		if got := ToMinutes(ToTime(m)); got != m {
			t.Fatalf("round trip %d -> %q -> %d", m, ToTime(m), got)
		}
	}
}

func TestSpan(t *testing.T) {
	if got := Span(570, 630); got != "09:30-10:30" {
		t.Errorf("Span(570, 630) = %q, want %q", got, "09:30-10:30")
	}
}

package plan

import (
	"testing"

	"weekplan/internal/model"
)

func timed(start, end int) model.Event {
	return model.Event{Title: "busy", Start: start, End: end, Flexibility: model.Fixed}
}

func TestForwardFitEmptyDay(t *testing.T) {
	start, ok := ForwardFit(nil, 60, 360, 1320)
	if !ok || start != 360 {
		t.Errorf("ForwardFit = (%d, %v), want (360, true)", start, ok)
	}
}

func TestForwardFitSkipsOccupied(t *testing.T) {
	placed := []model.Event{timed(540, 600)} // 09:00-10:00
	start, ok := ForwardFit(placed, 60, 570, 1320)
	if !ok || start != 600 {
		t.Errorf("ForwardFit = (%d, %v), want (600, true)", start, ok)
	}
}

func TestForwardFitFitsBeforeFirstEvent(t *testing.T) {
	placed := []model.Event{timed(540, 600)}
	start, ok := ForwardFit(placed, 30, 480, 1320)
	if !ok || start != 480 {
		t.Errorf("ForwardFit = (%d, %v), want (480, true)", start, ok)
	}
}

func TestForwardFitRespectsEndLimit(t *testing.T) {
	placed := []model.Event{timed(360, 1300)}
	if _, ok := ForwardFit(placed, 60, 360, 1320); ok {
		t.Error("ForwardFit found a slot past the end limit")
	}
}

func TestForwardFitCursorNeverMovesBackward(t *testing.T) {
	// The second event is engulfed by the first; the cursor must stay at the
	// first event's end, not retreat to the shorter event's end.
	placed := []model.Event{timed(100, 300), timed(150, 200)}
	start, ok := ForwardFit(placed, 50, 120, 400)
	if !ok || start != 300 {
		t.Errorf("ForwardFit = (%d, %v), want (300, true)", start, ok)
	}
}

func TestForwardFitDayFull(t *testing.T) {
	placed := []model.Event{timed(360, 840), timed(840, 1320)}
	if _, ok := ForwardFit(placed, 15, 360, 1320); ok {
		t.Error("ForwardFit reported a slot on a full day")
	}
}

func TestFirstGapEmptyDay(t *testing.T) {
	start, ok := FirstGap(nil, 420, 1380, 120)
	if !ok || start != 420 {
		t.Errorf("FirstGap = (%d, %v), want (420, true)", start, ok)
	}
}

func TestFirstGapBetweenEvents(t *testing.T) {
	events := []model.Event{timed(420, 480), timed(600, 660)} // 07:00-08:00, 10:00-11:00
	start, ok := FirstGap(events, 420, 1380, 90)
	if !ok || start != 480 {
		t.Errorf("FirstGap = (%d, %v), want (480, true)", start, ok)
	}
}

func TestFirstGapTailOfDay(t *testing.T) {
	events := []model.Event{timed(420, 1200)}
	start, ok := FirstGap(events, 420, 1380, 120)
	if !ok || start != 1200 {
		t.Errorf("FirstGap = (%d, %v), want (1200, true)", start, ok)
	}
}

func TestFirstGapNoRoom(t *testing.T) {
	events := []model.Event{timed(420, 1320)}
	if _, ok := FirstGap(events, 420, 1380, 120); ok {
		t.Error("FirstGap reported a gap on a packed day")
	}
}

func TestFirstGapCursorNeverMovesBackward(t *testing.T) {
	// The second event is engulfed by the first, as can happen with
	// conflicting user-configured items before resolution. The cursor must not
	// retreat to the shorter event's end and grant a slot inside the first.
	events := []model.Event{timed(540, 660), timed(570, 600)}
	start, ok := FirstGap(events, 540, 1320, 60)
	if !ok || start != 660 {
		t.Errorf("FirstGap = (%d, %v), want (660, true)", start, ok)
	}
}

func TestFirstGapTooSmallGapsSkipped(t *testing.T) {
	events := []model.Event{timed(450, 600), timed(630, 840)} // 30-minute gap at 10:00
	start, ok := FirstGap(events, 420, 1380, 60)
	if !ok || start != 840 {
		t.Errorf("FirstGap = (%d, %v), want (840, true)", start, ok)
	}
}

func TestInsertByStartKeepsOrder(t *testing.T) {
	list := []model.Event{timed(100, 200), timed(300, 400)}
	list = insertByStart(list, timed(250, 280))
	wantStarts := []int{100, 250, 300}
	for i, want := range wantStarts {
		if list[i].Start != want {
			t.Fatalf("insertByStart order[%d] = %d, want %d", i, list[i].Start, want)
		}
	}
}

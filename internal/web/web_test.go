package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"weekplan/internal/config"
	"weekplan/internal/model"
)

// A weekly Monday lecture anchored far in the past so any test week contains
// an occurrence.
const lectureFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lecture-1\r\n" +
	"SUMMARY:Morning Lecture\r\n" +
	"DTSTART:20200106T090000Z\r\n" +
	"DTEND:20200106T103000Z\r\n" +
	"RRULE:FREQ=WEEKLY\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.Routine = []config.ItemConfig{
		{Title: "Gym", Day: "monday", Start: "18:00", End: "19:00"},
	}
	cfg.StudyPlan = []config.StudyPlanConfig{
		{Title: "Algorithms", Hours: map[string]float64{"tuesday": 2}},
	}
	return cfg
}

func TestHandlePlan(t *testing.T) {
	srv := httptest.NewServer(NewServer(testConfig(t)).Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/plan")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}

	var resp PlanResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var gym, study *model.Event
	for i := range resp.Events {
		switch resp.Events[i].Title {
		case "Gym":
			gym = &resp.Events[i]
		case "Algorithms":
			study = &resp.Events[i]
		}
	}
	if gym == nil || gym.Start != 1080 {
		t.Errorf("gym = %+v", gym)
	}
	if study == nil || study.Day != model.Tuesday {
		t.Errorf("study = %+v", study)
	}
	if resp.NeedsReview {
		t.Errorf("needs_review = true, conflicts = %+v, unplaced = %+v",
			resp.Conflicts, resp.Unplaced)
	}
}

func TestPlanNeedsReviewOutsidePreferredWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.Routine = []config.ItemConfig{
		{Title: "Seminar", Day: "monday", Start: "07:00", End: "10:00", Flexibility: "fixed"},
		{Title: "Breakfast", Day: "monday", Start: "07:00", End: "08:00"},
	}

	s := NewServer(cfg)
	resp, err := BuildPlan(context.Background(), cfg, s.fetcher)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	var note *model.ConflictNote
	for i := range resp.Conflicts {
		if resp.Conflicts[i].Title == "Breakfast" {
			note = &resp.Conflicts[i]
		}
	}
	if note == nil {
		t.Fatalf("no conflict note for Breakfast, conflicts = %+v", resp.Conflicts)
	}
	if note.Status != model.StatusResolved || !note.OutsidePreferred {
		t.Fatalf("note = %+v, want resolved outside preferred window", note)
	}
	// Even a successful relocation needs confirmation when it landed outside
	// the preferred window.
	if !resp.NeedsReview {
		t.Error("needs_review = false with an outside-preferred relocation")
	}
}

func TestHandlePlanICS(t *testing.T) {
	srv := httptest.NewServer(NewServer(testConfig(t)).Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/plan.ics")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	out := string(body)
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "SUMMARY:Gym") {
		t.Errorf("calendar body:\n%s", out)
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "alice", Password: "s3cret"}

	srv := httptest.NewServer(NewServer(cfg).Handler())
	defer srv.Close()

	// /health stays open.
	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d", res.StatusCode)
	}

	// API rejects missing credentials.
	res, err = http.Get(srv.URL + "/api/plan")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d", res.StatusCode)
	}

	// And accepts the right ones.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/plan", nil)
	req.SetBasicAuth("alice", "s3cret")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d", res.StatusCode)
	}
}

func TestHandleConfigStripsCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "alice", Password: "s3cret"}

	s := NewServer(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "s3cret") {
		t.Error("credentials leaked in /api/config")
	}
}

func TestBuildPlanImportsICSCommitments(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(lectureFeed))
	}))
	defer feed.Close()

	cfg := testConfig(t)
	cfg.ICS = []config.ICSConfig{{ID: "school", URL: feed.URL + "/cal.ics"}}

	s := NewServer(cfg)
	resp, err := BuildPlan(context.Background(), cfg, s.fetcher)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	var lecture *model.Event
	for i := range resp.Events {
		if resp.Events[i].Title == "Morning Lecture" {
			lecture = &resp.Events[i]
		}
	}
	if lecture == nil {
		t.Fatalf("imported commitment missing, events = %+v", resp.Events)
	}
	if lecture.Flexibility != model.Fixed || lecture.Category != model.CategoryCommitment {
		t.Errorf("lecture flags = %v/%v", lecture.Flexibility, lecture.Category)
	}
	if lecture.Date == "" {
		t.Error("imported commitment should be date-addressed")
	}
}

func TestPlanCacheAvoidsRefetch(t *testing.T) {
	var hits int
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(lectureFeed))
	}))
	defer feed.Close()

	cfg := testConfig(t)
	cfg.ICS = []config.ICSConfig{{ID: "school", URL: feed.URL + "/cal.ics"}}

	srv := httptest.NewServer(NewServer(cfg).Handler())
	defer srv.Close()

	for i := 0; i < 2; i++ {
		res, err := http.Get(srv.URL + "/api/plan")
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", res.StatusCode)
		}
	}
	if hits != 1 {
		t.Errorf("feed hits = %d, want 1 (second request should hit the plan cache)", hits)
	}
}

// Package web exposes the planning pipeline over HTTP: a JSON plan API, an
// ICS feed of the resolved week, and a sanitized view of the configuration.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"weekplan/internal/config"
	"weekplan/internal/export"
	"weekplan/internal/ics"
	appLog "weekplan/internal/log"
	"weekplan/internal/model"
	"weekplan/internal/plan"
)

// PlanResponse is the JSON shape of /api/plan.
type PlanResponse struct {
	Events      []model.Event       `json:"events"`
	Unplaced    []model.UnplacedNote `json:"unplaced,omitempty"`
	Conflicts   []model.ConflictNote `json:"conflicts,omitempty"`
	NeedsReview bool                 `json:"needs_review"`
	GeneratedAt time.Time            `json:"generated_at"`
	Timezone    string               `json:"timezone"`
	WeekStart   string               `json:"week_start"`
}

// Server serves the plan API for one loaded configuration.
type Server struct {
	cfg     *config.Config
	fetcher *ics.Fetcher
	mux     *http.ServeMux

	// Cached plan so repeated UI polls do not re-run fetch/parse/plan.
	planMu    sync.RWMutex
	planCache *planCache
}

type planCache struct {
	resp      PlanResponse
	updatedAt time.Time
}

const planCacheTTL = 30 * time.Second

// NewServer constructs a Server for cfg.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:     cfg,
		fetcher: ics.NewFetcher(cfg.CacheDir),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/plan", s.handlePlan)
	s.mux.HandleFunc("/api/plan.ics", s.handlePlanICS)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	return s
}

// Handler returns the HTTP handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware protects every endpoint except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="weekplan", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cachedPlan(r.Context())
	if err != nil {
		appLog.Error("plan build failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build plan")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlanICS(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cachedPlan(r.Context())
	if err != nil {
		appLog.Error("plan build failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build plan")
		return
	}

	body, err := export.Calendar(resp.Events, export.Options{
		WeekAnchor:   resp.GeneratedAt,
		Location:     resolveLocation(s.cfg.Timezone),
		CalendarName: "weekplan",
	})
	if err != nil {
		appLog.Error("plan export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleConfig returns the configuration with credentials stripped.
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	sanitized := *s.cfg
	sanitized.BasicAuth = nil
	writeJSON(w, http.StatusOK, sanitized)
}

func (s *Server) cachedPlan(ctx context.Context) (PlanResponse, error) {
	now := time.Now()

	s.planMu.RLock()
	pc := s.planCache
	s.planMu.RUnlock()
	if pc != nil && now.Sub(pc.updatedAt) < planCacheTTL {
		return pc.resp, nil
	}

	resp, err := BuildPlan(ctx, s.cfg, s.fetcher)
	if err != nil {
		return PlanResponse{}, err
	}

	s.planMu.Lock()
	s.planCache = &planCache{resp: resp, updatedAt: time.Now()}
	s.planMu.Unlock()
	return resp, nil
}

// BuildPlan runs the whole pipeline once: import ICS commitments for the
// current week, assemble the candidate schedule, and resolve conflicts.
// ICS fetch failures degrade to planning without the affected feed.
func BuildPlan(ctx context.Context, cfg *config.Config, fetcher *ics.Fetcher) (PlanResponse, error) {
	loc := resolveLocation(cfg.Timezone)
	now := time.Now().In(loc)

	d := cfg.Directives()
	commitments, err := importCommitments(ctx, cfg, fetcher, now, loc)
	if err != nil {
		return PlanResponse{}, err
	}
	d.Events = append(d.Events, commitments...)

	events, unplaced := plan.PlanWeek(d, cfg.ModelPreferences())
	resolved, conflicts := plan.Resolve(events)

	// A plan needs human confirmation when anything was dropped, left in
	// place unresolved, or relocated outside its preferred window.
	needsReview := len(unplaced) > 0
	for _, c := range conflicts {
		if c.Status == model.StatusUnresolved || c.OutsidePreferred {
			needsReview = true
			break
		}
	}

	return PlanResponse{
		Events:      resolved,
		Unplaced:    unplaced,
		Conflicts:   conflicts,
		NeedsReview: needsReview,
		GeneratedAt: now,
		Timezone:    loc.String(),
		WeekStart:   cfg.WeekStart,
	}, nil
}

// importCommitments fetches and expands the configured ICS feeds over the
// current week and converts the occurrences into fixed events.
func importCommitments(
	ctx context.Context,
	cfg *config.Config,
	fetcher *ics.Fetcher,
	now time.Time,
	loc *time.Location,
) ([]model.Event, error) {
	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, src := range cfg.ICS {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			id = src.Name
		}
		if id == "" {
			id = src.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: src.URL})
	}
	if len(sources) == 0 {
		return nil, nil
	}

	results, fetchErrs := fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Error("some ICS feeds unavailable, planning without them",
			fetchErrs[0], "failed", len(fetchErrs))
	}

	var parsed []ics.ParsedEvent
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics parse failed, feed skipped", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	weekStart := weekMonday(now)
	occs, err := ics.Expand(parsed, ics.ExpandConfig{
		Location:   loc,
		RangeStart: weekStart,
		RangeEnd:   weekStart.AddDate(0, 0, 7),
	})
	if err != nil {
		return nil, err
	}
	return ics.Commitments(occs), nil
}

func weekMonday(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("bad timezone, falling back to UTC", err, "name", name)
		return time.UTC
	}
	return loc
}

// StartServer serves the API on cfg.Listen until ctx is canceled, then shuts
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

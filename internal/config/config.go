// Package config loads and saves the weekplan daemon configuration: the HTTP
// listen address, scheduling preferences, the weekly commitments to plan
// around, and the ICS sources to import commitments from.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"weekplan/internal/clock"
	"weekplan/internal/model"
	"weekplan/internal/plan"
)

// ItemConfig describes one pre-materialized schedule item (routine entry,
// lock-in session, or one-off event). Times are "HH:MM" strings.
type ItemConfig struct {
	Title       string `yaml:"title" json:"title"`
	Day         string `yaml:"day,omitempty" json:"day,omitempty"`
	Date        string `yaml:"date,omitempty" json:"date,omitempty"`
	Start       string `yaml:"start" json:"start"`
	End         string `yaml:"end" json:"end"`
	Flexibility string `yaml:"flexibility,omitempty" json:"flexibility,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// Event converts the item to a model event. Unknown day names leave the
// weekday unset; the item then lands in the unspecified bucket rather than
// failing the whole config.
func (i ItemConfig) Event(defaultFlex model.Flexibility) model.Event {
	day, _ := model.ParseWeekday(i.Day)
	return model.Event{
		Title:       i.Title,
		Day:         day,
		Date:        i.Date,
		Start:       clock.ToMinutes(i.Start),
		End:         clock.ToMinutes(i.End),
		Category:    model.Category(i.Category),
		Flexibility: model.ParseFlexibility(i.Flexibility, defaultFlex),
	}
}

// DeadlineConfig describes a deadline; it materializes as a full-day marker.
type DeadlineConfig struct {
	Title string `yaml:"title" json:"title"`
	Date  string `yaml:"date,omitempty" json:"date,omitempty"`
	Day   string `yaml:"day,omitempty" json:"day,omitempty"`
}

// StudyPlanConfig maps a course/deadline title to per-weekday study hours.
type StudyPlanConfig struct {
	Title string             `yaml:"title" json:"title"`
	Hours map[string]float64 `yaml:"hours" json:"hours"`
}

// CourseConfig is raw course metadata for the urgency-ranked planning mode.
type CourseConfig struct {
	Title         string   `yaml:"title" json:"title"`
	DaysUntilExam int      `yaml:"days_until_exam" json:"days_until_exam"`
	WeeklyHours   float64  `yaml:"weekly_hours" json:"weekly_hours"`
	MeetingDays   []string `yaml:"meeting_days,omitempty" json:"meeting_days,omitempty"`
}

// PreferencesConfig holds the soft scheduling preferences.
type PreferencesConfig struct {
	Wake               string  `yaml:"wake" json:"wake"`
	Sleep              string  `yaml:"sleep" json:"sleep"`
	MaxDailyStudyHours float64 `yaml:"max_daily_study_hours" json:"max_daily_study_hours"`
	Chronotype         string  `yaml:"chronotype,omitempty" json:"chronotype,omitempty"`
	FreeDay            string  `yaml:"free_day,omitempty" json:"free_day,omitempty"`
}

// ICSConfig describes a single ICS subscription source to import commitments
// from.
type ICSConfig struct {
	URL  string `yaml:"url" json:"url"`
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level daemon configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used when anchoring the abstract week to
	// concrete dates (ICS import/export).
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron schedules periodic ICS refresh, cron syntax.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir is where fetched ICS bodies and their HTTP cache metadata live.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Preferences PreferencesConfig `yaml:"preferences" json:"preferences"`

	Routine   []ItemConfig      `yaml:"routine,omitempty" json:"routine,omitempty"`
	LockIns   []ItemConfig      `yaml:"lock_ins,omitempty" json:"lock_ins,omitempty"`
	Events    []ItemConfig      `yaml:"events,omitempty" json:"events,omitempty"`
	Deadlines []DeadlineConfig  `yaml:"deadlines,omitempty" json:"deadlines,omitempty"`
	StudyPlan []StudyPlanConfig `yaml:"study_plan,omitempty" json:"study_plan,omitempty"`
	Courses   []CourseConfig    `yaml:"courses,omitempty" json:"courses,omitempty"`

	// ICS is the list of subscribed calendar feeds imported as fixed
	// commitments.
	ICS []ICSConfig `yaml:"ics,omitempty" json:"ics,omitempty"`

	// BasicAuth, if non-nil, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "UTC",
		WeekStart:   "monday",
		RefreshCron: "*/30 * * * *",
		CacheDir:    "./cache/ics-cache",
		Preferences: PreferencesConfig{
			Wake:               "07:00",
			Sleep:              "23:00",
			MaxDailyStudyHours: 4,
		},
	}
}

// Normalize fills missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./cache/ics-cache"
	}
	if c.Preferences.Wake == "" {
		c.Preferences.Wake = "07:00"
	}
	if c.Preferences.Sleep == "" {
		c.Preferences.Sleep = "23:00"
	}
	if c.Preferences.MaxDailyStudyHours <= 0 {
		c.Preferences.MaxDailyStudyHours = 4
	}
}

// ModelPreferences converts the config preferences into engine preferences.
func (c *Config) ModelPreferences() model.Preferences {
	free, _ := model.ParseWeekday(c.Preferences.FreeDay)
	return model.Preferences{
		WakeMinutes:        clock.ToMinutes(c.Preferences.Wake),
		SleepMinutes:       clock.ToMinutes(c.Preferences.Sleep),
		MaxDailyStudyHours: c.Preferences.MaxDailyStudyHours,
		Chronotype:         model.Chronotype(c.Preferences.Chronotype),
		FreeDay:            free,
	}
}

// Directives assembles the planner input from the configured items. Imported
// ICS commitments are appended by the caller; they are not part of the config.
func (c *Config) Directives() plan.Directives {
	d := plan.Directives{}

	for _, it := range c.Routine {
		d.Routine = append(d.Routine, it.Event(model.Medium))
	}
	for _, it := range c.LockIns {
		d.LockIns = append(d.LockIns, it.Event(model.Strong))
	}
	for _, it := range c.Events {
		d.Events = append(d.Events, it.Event(model.Medium))
	}
	for _, dl := range c.Deadlines {
		day, _ := model.ParseWeekday(dl.Day)
		d.Deadlines = append(d.Deadlines, model.Deadline{Title: dl.Title, Date: dl.Date, Day: day})
	}
	for _, sp := range c.StudyPlan {
		hours := make(map[model.Weekday]float64, len(sp.Hours))
		for name, h := range sp.Hours {
			if day, ok := model.ParseWeekday(name); ok {
				hours[day] = h
			}
		}
		d.StudyPlan = append(d.StudyPlan, model.StudyPlanItem{Title: sp.Title, Hours: hours})
	}
	for _, cc := range c.Courses {
		course := model.Course{
			Title:         cc.Title,
			DaysUntilExam: cc.DaysUntilExam,
			WeeklyHours:   cc.WeeklyHours,
		}
		for _, name := range cc.MeetingDays {
			if day, ok := model.ParseWeekday(name); ok {
				course.MeetingDays = append(course.MeetingDays, day)
			}
		}
		d.Courses = append(d.Courses, course)
	}
	return d
}

// Load loads configuration from the given YAML path. If the file does not
// exist, a default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory as needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save, which is convenient for callers
// that mutate a loaded config.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

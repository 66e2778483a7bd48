package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/techtech0521/schedule-timeline/internal/model"
)

const (
	DefaultListen      = "127.0.0.1:8080"
	DefaultTimezone    = "Asia/Tokyo"
	DefaultRefreshCron = "*/15 * * * *"
	DefaultFooterText  = "End of Schedule"
	DefaultFooterIcon  = "📅"
	DefaultOutputDir   = "/var/lib/schedtl"

	DefaultCaptureWidth   = 984
	DefaultCaptureHeight  = 1304
	DefaultCaptureTimeout = 30
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for event IDs and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// SourceID returns the identifier used for this source, falling back to
// Name and then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return c.URL
	}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CaptureConfig controls the headless screenshot of the timeline page.
type CaptureConfig struct {
	Width          int `yaml:"width" json:"width"`
	Height         int `yaml:"height" json:"height"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the timeline page and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used to pick "today" and to convert feed
	// events into wall-clock time slots.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a 5-field cron spec for the capture pipeline.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Header / footer of the rendered timeline. The header is hidden when
	// Title is empty.
	Title      string `yaml:"title" json:"title"`
	Subtitle   string `yaml:"subtitle" json:"subtitle"`
	ShowFooter bool   `yaml:"show_footer" json:"show_footer"`
	FooterText string `yaml:"footer_text" json:"footer_text"`
	FooterIcon string `yaml:"footer_icon" json:"footer_icon"`

	// ShowBattery adds the battery level to the footer.
	ShowBattery bool `yaml:"show_battery" json:"show_battery"`

	// Events are static entries shown every day, in the given order,
	// ahead of feed events.
	Events []model.ScheduleEvent `yaml:"events" json:"events"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// CategoryKeywords tags feed events whose summary contains one of the
	// keywords (case-insensitive) and that carry no CATEGORIES of their own.
	CategoryKeywords map[model.Category][]string `yaml:"category_keywords" json:"category_keywords"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// OutputDir receives preview.png and the packed panel planes.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{
		Title:      "Daily Schedule",
		Subtitle:   "Your planned activities for today",
		ShowFooter: true,
		FooterText: DefaultFooterText,
		FooterIcon: DefaultFooterIcon,
		Events: []model.ScheduleEvent{
			{ID: "1", Time: "09:00-10:00", Title: "Start Work", Description: "Begin daily tasks", Category: model.CategoryWork},
			{ID: "2", Time: "12:00-13:00", Title: "Lunch", Category: model.CategoryBreak},
			{ID: "3", Time: "17:00-18:00", Title: "End Work", Description: "Wrap up and go home", Category: model.CategoryWork},
		},
	}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Events == nil {
		c.Events = []model.ScheduleEvent{}
	}
	for i := range c.Events {
		c.Events[i].Category = model.ParseCategory(string(c.Events[i].Category))
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.CategoryKeywords == nil {
		c.CategoryKeywords = map[model.Category][]string{
			model.CategoryMeeting:  {"meeting", "standup", "sync", "call"},
			model.CategoryExercise: {"run", "gym", "workout"},
			model.CategoryBreak:    {"lunch", "break"},
		}
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = DefaultCaptureWidth
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = DefaultCaptureHeight
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = DefaultCaptureTimeout
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.BasicAuth != nil {
		c.BasicAuth.Username = strings.TrimSpace(c.BasicAuth.Username)
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (parent directory created as needed) and returned.
//   - Otherwise the YAML is read, unmarshalled and normalized. Footer keys
//     absent from the file keep their defaults; an explicit empty
//     footer_text or footer_icon hides that part.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether a read-only location is fatal.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Config{
		ShowFooter: true,
		FooterText: DefaultFooterText,
		FooterIcon: DefaultFooterIcon,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory with 0700 if needed.
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

	tmp, err := os.CreateTemp(dir, ".schedtl-config-*.tmp")
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

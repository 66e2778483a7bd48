package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/techtech0521/schedule-timeline/internal/model"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Listen != DefaultListen || cfg.FooterText != DefaultFooterText {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Events) != 3 {
		t.Errorf("default events = %d, want 3", len(cfg.Events))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	// Second load reads the file back.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Title != cfg.Title || len(again.Events) != len(cfg.Events) || again.Events[1].Category != model.CategoryBreak {
		t.Errorf("reloaded config differs: %+v", again)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
title: Team Day
events:
  - id: a
    time: "08:00-09:00"
    title: Morning Exercise
    category: Exercise
  - time: "bogus"
    title: Mystery
    category: holiday
ics:
  - url: https://example.com/cal.ics
    name: team
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.RefreshCron != DefaultRefreshCron || cfg.Timezone != DefaultTimezone {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Events[0].Category != model.CategoryExercise {
		t.Errorf("category = %q", cfg.Events[0].Category)
	}
	if cfg.Events[1].Category != model.CategoryOther {
		t.Errorf("unknown category = %q, want other", cfg.Events[1].Category)
	}
	if cfg.Events[1].Time != "bogus" {
		t.Errorf("malformed slot rewritten: %q", cfg.Events[1].Time)
	}
	if got := cfg.ICS[0].SourceID(); got != "team" {
		t.Errorf("SourceID = %q", got)
	}
	if cfg.Capture.Width != DefaultCaptureWidth || cfg.Capture.TimeoutSeconds != DefaultCaptureTimeout {
		t.Errorf("capture defaults not applied: %+v", cfg.Capture)
	}
}

func TestLoadFooterKeys(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantShow       bool
		wantText, icon string
	}{
		{"absent keys keep defaults", "title: x\n", true, DefaultFooterText, DefaultFooterIcon},
		{"empty icon hides it", "footer_icon: \"\"\n", true, DefaultFooterText, ""},
		{"empty text hides it", "footer_text: \"\"\nfooter_icon: \"*\"\n", true, "", "*"},
		{"footer off", "show_footer: false\n", false, DefaultFooterText, DefaultFooterIcon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() = %v", err)
			}
			if cfg.ShowFooter != tt.wantShow || cfg.FooterText != tt.wantText || cfg.FooterIcon != tt.icon {
				t.Errorf("footer = %v %q %q", cfg.ShowFooter, cfg.FooterText, cfg.FooterIcon)
			}
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("events: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveValidatesArgs(t *testing.T) {
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("empty path accepted")
	}
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := Load(""); err == nil {
		t.Error("Load(\"\") accepted")
	}
}

func TestSourceIDFallbacks(t *testing.T) {
	if got := (ICSConfig{ID: "x", Name: "n", URL: "u"}).SourceID(); got != "x" {
		t.Errorf("got %q", got)
	}
	if got := (ICSConfig{URL: "u"}).SourceID(); got != "u" {
		t.Errorf("got %q", got)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return NewManager(path)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json", `{"telegram": {"token": "t"}, "chanels": []}`)
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json", `{"telegram": {"token": "t"}} {"extra": true}`)
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json", `{"telegram": {"token": "t"}}`)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Fatalf("Timezone = %q, want default", cfg.Timezone)
	}
	if cfg.Poll.MinSubscribers != 500 {
		t.Fatalf("MinSubscribers = %d, want 500", cfg.Poll.MinSubscribers)
	}
	if len(cfg.DailyMessages) != 7 {
		t.Fatalf("expected default pool of 7 messages, got %d", len(cfg.DailyMessages))
	}
	if len(cfg.Poll.Options) < 2 {
		t.Fatalf("expected default poll options, got %v", cfg.Poll.Options)
	}
}

func TestParseKeepsMidnightTrigger(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.json",
		`{"daily_message": {"enabled": true, "hour": 0, "minute": 0}, "poll": {"enabled": true, "hour": 0, "minute": 0}}`)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DailyMessage.Hour != 0 || cfg.DailyMessage.Minute != 0 {
		t.Fatalf("explicit midnight trigger was moved to %d:%d",
			cfg.DailyMessage.Hour, cfg.DailyMessage.Minute)
	}
	if cfg.Poll.Hour != 0 || cfg.Poll.Minute != 0 {
		t.Fatalf("explicit midnight poll trigger was moved to %d:%d",
			cfg.Poll.Hour, cfg.Poll.Minute)
	}
}

func TestDefaultTriggerTimes(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if cfg.DailyMessage.Hour != 9 || cfg.Poll.Hour != 10 {
		t.Fatalf("unexpected generated trigger times: %d:%d / %d:%d",
			cfg.DailyMessage.Hour, cfg.DailyMessage.Minute, cfg.Poll.Hour, cfg.Poll.Minute)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated defaults must validate: %v", err)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "config.yaml", `
telegram:
  token: "t"
timezone: "UTC"
channels:
  - id: "c1"
    name: "Main"
    active: true
`)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("Timezone = %q", cfg.Timezone)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].ID != "c1" || !cfg.Channels[0].Active {
		t.Fatalf("unexpected channels: %+v", cfg.Channels)
	}
}

func TestParseValidates(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
	}{
		{"bad hour", `{"daily_message": {"enabled": true, "hour": 25}}`},
		{"bad timezone", `{"timezone": "Mars/Olympus"}`},
		{"duplicate channel", `{"channels": [{"id": "a", "active": true}, {"id": "a", "active": false}]}`},
		{"empty channel id", `{"channels": [{"id": "", "active": true}]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := writeConfig(t, "config.json", tc.body)
			if _, err := m.Parse(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManager(path)

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected defaults to be persisted: %v", err)
	}
	if m.Get() == nil {
		t.Fatal("expected committed config")
	}

	// A second manager reads the file we just wrote.
	m2 := NewManager(path)
	if _, err := m2.Load(); err != nil {
		t.Fatalf("reload of written defaults: %v", err)
	}
}

func TestActiveChannelsKeepsFileOrder(t *testing.T) {
	t.Parallel()
	cfg := &Config{Channels: []Channel{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
		{ID: "c", Active: true},
	}}
	got := cfg.ActiveChannels()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected active channels: %+v", got)
	}
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	if d := cfg.SweepIntervalDuration(time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %s", d)
	}
	cfg.Dispatch.SweepInterval = "30s"
	if d := cfg.SweepIntervalDuration(time.Minute); d != 30*time.Second {
		t.Fatalf("expected 30s, got %s", d)
	}
	cfg.Telegram.PollTimeout = "bogus"
	if d := cfg.PollTimeoutDuration(10 * time.Second); d != 10*time.Second {
		t.Fatalf("expected fallback on parse error, got %s", d)
	}
}

func TestValidatePollOptionsBounds(t *testing.T) {
	t.Parallel()
	if err := ValidatePollOptions([]string{"only one"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for 1 option, got %v", err)
	}
	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "o"
	}
	if err := ValidatePollOptions(eleven); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for 11 options, got %v", err)
	}
	if err := ValidatePollOptions([]string{"a", "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank option, got %v", err)
	}
	if err := ValidatePollOptions([]string{"a", "b"}); err != nil {
		t.Fatalf("two options should be valid: %v", err)
	}
}

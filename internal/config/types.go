package config

import "time"

// Config is the whole configuration surface consumed by the bot.
//
// One file, JSON or YAML. Unknown keys are rejected so typos are caught at
// load time rather than silently ignored.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`

	// Timezone is the IANA zone for cron triggers, e.g. "Europe/Paris".
	Timezone string `json:"timezone,omitempty"`

	DailyMessage DailyMessageConfig `json:"daily_message"`
	Poll         PollConfig         `json:"poll"`
	Dispatch     DispatchConfig     `json:"dispatch,omitempty"`

	Channels []Channel `json:"channels"`

	// DailyMessages is the rotating pool for the daily broadcast. The message
	// for a given day is picked by day-of-year, so every channel sees the same
	// body on the same calendar day.
	DailyMessages []string `json:"daily_messages"`

	// WelcomeMessage supports a {username} placeholder.
	WelcomeMessage string `json:"welcome_message,omitempty"`

	Storage StorageConfig `json:"storage,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type DailyMessageConfig struct {
	Enabled bool `json:"enabled"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

type PollConfig struct {
	Enabled  bool     `json:"enabled"`
	Hour     int      `json:"hour"`
	Minute   int      `json:"minute"`
	Question string   `json:"question"`
	// MinSubscribers gates poll delivery: channels below this member count are
	// skipped for the day.
	MinSubscribers int      `json:"min_subscribers"`
	Options        []string `json:"options"`
}

// DispatchConfig controls fan-out pacing and the scheduled-message sweep.
type DispatchConfig struct {
	// RatePerSec paces sends across channels to respect platform limits.
	RatePerSec int `json:"rate_per_sec,omitempty"`
	// SweepInterval is a Go duration string for the due-message sweep.
	SweepInterval string `json:"sweep_interval,omitempty"`
}

// StorageConfig points at the document files backing content and analytics.
type StorageConfig struct {
	ContentFile   string `json:"content_file,omitempty"`
	AnalyticsFile string `json:"analytics_file,omitempty"`
}

// Channel is a broadcast destination. The core only reads ID and Active;
// Name and Metadata exist for operators.
type Channel struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Active   bool              `json:"active"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SweepIntervalDuration parses Dispatch.SweepInterval, falling back to def.
func (c *Config) SweepIntervalDuration(def time.Duration) time.Duration {
	d, err := time.ParseDuration(c.Dispatch.SweepInterval)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// PollTimeoutDuration parses Telegram.PollTimeout, falling back to def.
func (c *Config) PollTimeoutDuration(def time.Duration) time.Duration {
	d, err := time.ParseDuration(c.Telegram.PollTimeout)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ActiveChannels returns the channels with Active set, in file order.
// The stable order matters: fan-out jobs process destinations in this order.
func (c *Config) ActiveChannels() []Channel {
	out := make([]Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.Active {
			out = append(out, ch)
		}
	}
	return out
}

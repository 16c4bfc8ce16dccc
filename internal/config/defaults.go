package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks malformed input to a mutating operation. Callers can
// errors.Is against it; the wrapped message carries the specifics.
var ErrValidation = errors.New("invalid configuration")

const (
	minPollOptions = 2
	maxPollOptions = 10

	defaultMinSubscribers = 500
)

// Default is the config persisted when no file exists yet. Trigger times are
// set here rather than in ApplyDefaults: 00:00 in an operator's file is a
// real midnight trigger, not an unset value.
func Default() *Config {
	cfg := &Config{
		DailyMessage: DailyMessageConfig{Hour: 9},
		Poll:         PollConfig{Hour: 10},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values in-place. Called after every successful
// decode so the rest of the code never deals with missing fields.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = "Europe/Paris"
	}
	if strings.TrimSpace(c.Telegram.PollTimeout) == "" {
		c.Telegram.PollTimeout = "10s"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Poll.Question) == "" {
		c.Poll.Question = "Comment vous sentez-vous aujourd'hui ?"
	}
	if c.Poll.MinSubscribers <= 0 {
		c.Poll.MinSubscribers = defaultMinSubscribers
	}
	if len(c.Poll.Options) == 0 {
		c.Poll.Options = []string{"Motivé 💪", "Fatigué 😴", "Neutre 😐"}
	}
	if c.Dispatch.RatePerSec <= 0 {
		c.Dispatch.RatePerSec = 1
	}
	if strings.TrimSpace(c.Dispatch.SweepInterval) == "" {
		c.Dispatch.SweepInterval = "1m"
	}
	if strings.TrimSpace(c.Storage.ContentFile) == "" {
		c.Storage.ContentFile = "./data/content.json"
	}
	if strings.TrimSpace(c.Storage.AnalyticsFile) == "" {
		c.Storage.AnalyticsFile = "./data/analytics.json"
	}
	if strings.TrimSpace(c.WelcomeMessage) == "" {
		c.WelcomeMessage = "Bienvenue, {username} ! Merci de nous avoir rejoints 🎉"
	}
	if len(c.DailyMessages) == 0 {
		c.DailyMessages = []string{
			"Nouveau jour, nouvelle énergie ! 🔥 Passez une excellente journée !",
			"Bonjour ! 🌅 Que cette journée vous apporte de belles surprises !",
			"Bonne journée à tous ! 💪 Restons motivés ensemble !",
			"Salut la communauté ! ☀️ Une nouvelle journée pleine de possibilités !",
			"Hello ! 🚀 Prêts à conquérir cette journée ?",
			"Bonjour ! 🌟 Ensemble, nous sommes plus forts !",
			"Bonne journée ! 🎯 Fixons-nous de beaux objectifs aujourd'hui !",
		}
	}
}

// Validate rejects configs the runtime cannot act on. It does not mutate.
func (c *Config) Validate() error {
	if err := validateClock(c.DailyMessage.Hour, c.DailyMessage.Minute); err != nil {
		return fmt.Errorf("daily_message: %w", err)
	}
	if err := validateClock(c.Poll.Hour, c.Poll.Minute); err != nil {
		return fmt.Errorf("poll: %w", err)
	}
	if err := ValidatePollOptions(c.Poll.Options); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, c.Timezone)
	}
	seen := map[string]bool{}
	for _, ch := range c.Channels {
		id := strings.TrimSpace(ch.ID)
		if id == "" {
			return fmt.Errorf("%w: channel with empty id", ErrValidation)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate channel id %q", ErrValidation, id)
		}
		seen[id] = true
	}
	return nil
}

// ValidatePollOptions enforces the platform's poll bounds before any state
// mutation happens.
func ValidatePollOptions(options []string) error {
	if len(options) < minPollOptions || len(options) > maxPollOptions {
		return fmt.Errorf("%w: poll needs %d to %d options, got %d",
			ErrValidation, minPollOptions, maxPollOptions, len(options))
	}
	for i, o := range options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("%w: poll option %d is empty", ErrValidation, i+1)
		}
	}
	return nil
}

func validateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrValidation, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrValidation, minute)
	}
	return nil
}

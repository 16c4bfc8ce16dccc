package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mutating operations used by external admin glue. Each one works on a copy,
// validates before touching anything, persists, and only then commits and
// publishes. A failed save leaves the committed config untouched.

func (m *Manager) AddChannel(ch Channel) error {
	ch.ID = strings.TrimSpace(ch.ID)
	if ch.ID == "" {
		return fmt.Errorf("%w: channel id required", ErrValidation)
	}
	return m.mutate(func(cfg *Config) error {
		for _, existing := range cfg.Channels {
			if existing.ID == ch.ID {
				return fmt.Errorf("%w: channel %q already exists", ErrValidation, ch.ID)
			}
		}
		cfg.Channels = append(cfg.Channels, ch)
		return nil
	})
}

func (m *Manager) RemoveChannel(id string) error {
	id = strings.TrimSpace(id)
	return m.mutate(func(cfg *Config) error {
		n := 0
		found := false
		for _, ch := range cfg.Channels {
			if ch.ID == id {
				found = true
				continue
			}
			cfg.Channels[n] = ch
			n++
		}
		if !found {
			return fmt.Errorf("%w: unknown channel %q", ErrValidation, id)
		}
		cfg.Channels = cfg.Channels[:n]
		return nil
	})
}

func (m *Manager) SetChannelActive(id string, active bool) error {
	id = strings.TrimSpace(id)
	return m.mutate(func(cfg *Config) error {
		for i := range cfg.Channels {
			if cfg.Channels[i].ID == id {
				cfg.Channels[i].Active = active
				return nil
			}
		}
		return fmt.Errorf("%w: unknown channel %q", ErrValidation, id)
	})
}

func (m *Manager) UpdatePollOptions(options []string) error {
	if err := ValidatePollOptions(options); err != nil {
		return err
	}
	return m.mutate(func(cfg *Config) error {
		cfg.Poll.Options = append([]string(nil), options...)
		return nil
	})
}

// SetJobTime updates the trigger time for "daily_message" or "poll".
func (m *Manager) SetJobTime(job string, hour, minute int) error {
	if err := validateClock(hour, minute); err != nil {
		return err
	}
	return m.mutate(func(cfg *Config) error {
		switch job {
		case "daily_message":
			cfg.DailyMessage.Hour, cfg.DailyMessage.Minute = hour, minute
		case "poll":
			cfg.Poll.Hour, cfg.Poll.Minute = hour, minute
		default:
			return fmt.Errorf("%w: unknown job %q", ErrValidation, job)
		}
		return nil
	})
}

func (m *Manager) mutate(fn func(cfg *Config) error) error {
	m.mu.Lock()
	cur := m.cfg
	m.mu.Unlock()
	if cur == nil {
		return fmt.Errorf("config not loaded")
	}

	next, err := cloneConfig(cur)
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := m.save(next); err != nil {
		return err
	}
	m.Commit(next)
	m.publish(next)
	return nil
}

func cloneConfig(cfg *Config) (*Config, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var cp Config
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

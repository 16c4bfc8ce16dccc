package content

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a template, message, or candidate set is absent.
// No state is mutated when it is returned.
var ErrNotFound = errors.New("not found")

// ErrTerminal is returned when a scheduled message is already sent or
// cancelled. Terminal states are immutable.
var ErrTerminal = errors.New("message already in terminal state")

// Categories maps category keys to their display labels.
var Categories = map[string]string{
	"motivation":    "💪 Motivation",
	"news":          "📰 Actualités",
	"tips":          "💡 Conseils",
	"entertainment": "🎮 Divertissement",
	"community":     "👥 Communauté",
	"announcement":  "📢 Annonces",
}

// Template is a reusable piece of content. Body may contain {name}-style
// placeholders listed in Variables. UsageCount feeds the rotation weights.
type Template struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Body       string   `json:"body"`
	Variables  []string `json:"variables,omitempty"`
	UsageCount int      `json:"usage_count"`
}

type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusSent      MessageStatus = "sent"
	StatusCancelled MessageStatus = "cancelled"
)

// ScheduledMessage is a one-off delivery. Status moves pending→sent or
// pending→cancelled and never back.
type ScheduledMessage struct {
	ID        string        `json:"id"`
	ChannelID string        `json:"channel_id"`
	Body      string        `json:"body"`
	DueAt     time.Time     `json:"due_at"`
	Category  string        `json:"category"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Scope is the unit of rotation tracking: one state per channel and category.
type Scope struct {
	ChannelID string
	Category  string
}

func (s Scope) key() string { return fmt.Sprintf("%s:%s", s.ChannelID, s.Category) }

// rotationState tracks which templates have been used in the current epoch.
// It resets exactly when every candidate has been used once.
type rotationState struct {
	UsedIDs        []string  `json:"used_ids"`
	EpochStartedAt time.Time `json:"epoch_started_at"`
}

func (r *rotationState) used(id string) bool {
	for _, u := range r.UsedIDs {
		if u == id {
			return true
		}
	}
	return false
}

// Preferences describe how a channel likes its content. Purely advisory;
// used by the calendar helper.
type Preferences struct {
	PreferredCategories []string `json:"preferred_categories"`
	PostFrequency       string   `json:"post_frequency"`
	BestTimes           []string `json:"best_times"`
	Language            string   `json:"language"`
	Tone                string   `json:"tone"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		PreferredCategories: []string{"motivation", "community"},
		PostFrequency:       "daily",
		BestTimes:           []string{"09:00", "18:00"},
		Language:            "fr",
		Tone:                "friendly",
	}
}

// document is the persisted layout of the content store.
type document struct {
	Templates   []Template                `json:"templates"`
	Scheduled   []ScheduledMessage        `json:"scheduled_messages"`
	Rotation    map[string]*rotationState `json:"content_rotation"`
	Preferences map[string]Preferences    `json:"channel_preferences"`
	LastUpdated time.Time                 `json:"last_updated"`
}

func (d *document) SetLastUpdated(t time.Time) { d.LastUpdated = t }

func emptyDocument() document {
	return document{
		Rotation:    map[string]*rotationState{},
		Preferences: map[string]Preferences{},
	}
}

package analytics

import "time"

type EventKind string

const (
	KindSubscriberSnapshot EventKind = "subscriber_snapshot"
	KindMessageOutcome     EventKind = "message_outcome"
)

// StatEvent is one append-only record. Events are never mutated or deleted;
// the log is the sole source of truth for every query below.
type StatEvent struct {
	ChannelID string    `json:"channel_id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`

	// subscriber_snapshot payload
	Subscribers int `json:"subscribers,omitempty"`

	// message_outcome payload
	MessageKind string `json:"message_kind,omitempty"`
	Views       int    `json:"views,omitempty"`
	Reactions   int    `json:"reactions,omitempty"`
}

// Snapshot is one subscriber-count reading, as returned by Growth.
type Snapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	Subscribers int       `json:"subscribers"`
}

// Engagement summarizes message performance over a window.
type Engagement struct {
	TotalMessages  int     `json:"total_messages"`
	AvgViews       float64 `json:"avg_views"`
	AvgReactions   float64 `json:"avg_reactions"`
	EngagementRate float64 `json:"engagement_rate"`
	PeriodDays     int     `json:"period_days"`
}

// Dashboard is the at-a-glance view for one channel.
type Dashboard struct {
	CurrentSubscribers int     `json:"current_subscribers"`
	Growth7d           int     `json:"growth_7d"`
	EngagementRate     float64 `json:"engagement_rate"`
	TotalMessages      int     `json:"total_messages"`
	AvgViews           float64 `json:"avg_views"`
}

type document struct {
	Events      []StatEvent `json:"events"`
	LastUpdated time.Time   `json:"last_updated"`
}

func (d *document) SetLastUpdated(t time.Time) { d.LastUpdated = t }

func emptyDocument() document { return document{} }

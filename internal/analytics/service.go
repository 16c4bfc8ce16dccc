package analytics

import (
	"time"

	"herald/internal/store"
	"herald/pkg/logx"
)

// Service maintains the append-only stat log and answers windowed queries.
type Service struct {
	store *store.Store[document]
	log   logx.Logger
	now   func() time.Time
}

func New(path string, log logx.Logger) (*Service, error) {
	st, err := store.Open(path, log.With(logx.String("doc", "analytics")), emptyDocument)
	if err != nil {
		return nil, err
	}
	return &Service{store: st, log: log, now: time.Now}, nil
}

// RecordSnapshot appends a subscriber-count reading for the channel.
func (s *Service) RecordSnapshot(channelID string, subscribers int) error {
	ev := StatEvent{
		ChannelID:   channelID,
		Timestamp:   s.now(),
		Kind:        KindSubscriberSnapshot,
		Subscribers: subscribers,
	}
	err := s.store.Update(func(doc *document) error {
		doc.Events = append(doc.Events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("snapshot recorded",
		logx.String("channel", channelID), logx.Int("subscribers", subscribers))
	return nil
}

// RecordOutcome appends a message-performance reading for the channel.
func (s *Service) RecordOutcome(channelID, messageKind string, views, reactions int) error {
	ev := StatEvent{
		ChannelID:   channelID,
		Timestamp:   s.now(),
		Kind:        KindMessageOutcome,
		MessageKind: messageKind,
		Views:       views,
		Reactions:   reactions,
	}
	err := s.store.Update(func(doc *document) error {
		doc.Events = append(doc.Events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("outcome recorded",
		logx.String("channel", channelID), logx.String("kind", messageKind))
	return nil
}

// Growth returns all subscriber snapshots for the channel in the trailing
// window, ordered by timestamp ascending.
func (s *Service) Growth(channelID string, windowDays int) []Snapshot {
	since := s.now().AddDate(0, 0, -windowDays)
	return s.growthBetween(channelID, since, s.now())
}

func (s *Service) growthBetween(channelID string, from, to time.Time) []Snapshot {
	var out []Snapshot
	s.store.View(func(doc *document) {
		for _, ev := range doc.Events {
			if ev.Kind != KindSubscriberSnapshot || ev.ChannelID != channelID {
				continue
			}
			if ev.Timestamp.Before(from) || ev.Timestamp.After(to) {
				continue
			}
			out = append(out, Snapshot{Timestamp: ev.Timestamp, Subscribers: ev.Subscribers})
		}
	})
	// The log is appended in timestamp order in normal operation, but sort
	// anyway so backfilled events don't break callers.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Timestamp.Before(out[j-1].Timestamp); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Engagement filters message outcomes in the trailing window. With no events
// it returns the all-zero result rather than dividing by zero.
func (s *Service) Engagement(channelID string, windowDays int) Engagement {
	since := s.now().AddDate(0, 0, -windowDays)

	total, views, reactions := 0, 0, 0
	s.store.View(func(doc *document) {
		for _, ev := range doc.Events {
			if ev.Kind != KindMessageOutcome || ev.ChannelID != channelID {
				continue
			}
			if ev.Timestamp.Before(since) {
				continue
			}
			total++
			views += ev.Views
			reactions += ev.Reactions
		}
	})

	out := Engagement{TotalMessages: total, PeriodDays: windowDays}
	if total == 0 {
		return out
	}
	out.AvgViews = float64(views) / float64(total)
	out.AvgReactions = float64(reactions) / float64(total)
	if views > 0 {
		out.EngagementRate = float64(reactions) / float64(views) * 100
	}
	return out
}

// Dashboard composes the 7-day view used by admin surfaces.
func (s *Service) Dashboard(channelID string) Dashboard {
	growth := s.Growth(channelID, 7)
	eng := s.Engagement(channelID, 7)

	d := Dashboard{
		EngagementRate: eng.EngagementRate,
		TotalMessages:  eng.TotalMessages,
		AvgViews:       eng.AvgViews,
	}
	if len(growth) > 0 {
		d.CurrentSubscribers = growth[len(growth)-1].Subscribers
	}
	if len(growth) >= 2 {
		d.Growth7d = growth[len(growth)-1].Subscribers - growth[0].Subscribers
	}
	return d
}

package content

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"herald/internal/store"
	"herald/pkg/logx"
)

// Service owns the content catalog, the per-scope rotation state, and the
// one-off scheduled messages. All state lives in a single document store so
// mutations are serialized.
type Service struct {
	store *store.Store[document]
	log   logx.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	now func() time.Time
}

func New(path string, log logx.Logger) (*Service, error) {
	st, err := store.Open(path, log.With(logx.String("doc", "content")), emptyDocument)
	if err != nil {
		return nil, err
	}
	return &Service{
		store: st,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}, nil
}

// ---- catalog ----

func (s *Service) CreateTemplate(name, category, body string, variables []string) (Template, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" || strings.TrimSpace(body) == "" {
		return Template{}, fmt.Errorf("template name, category and body are required")
	}
	tpl := Template{
		ID:        "tpl_" + uuid.NewString(),
		Name:      name,
		Category:  category,
		Body:      body,
		Variables: append([]string(nil), variables...),
	}
	err := s.store.Update(func(doc *document) error {
		doc.Templates = append(doc.Templates, tpl)
		return nil
	})
	if err != nil {
		return Template{}, err
	}
	s.log.Info("template created", logx.String("id", tpl.ID), logx.String("category", category))
	return tpl, nil
}

// UpdateTemplate replaces the body (and variables) of an existing template.
func (s *Service) UpdateTemplate(id, body string, variables []string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("template body is required")
	}
	return s.store.Update(func(doc *document) error {
		for i := range doc.Templates {
			if doc.Templates[i].ID == id {
				doc.Templates[i].Body = body
				doc.Templates[i].Variables = append([]string(nil), variables...)
				return nil
			}
		}
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	})
}

// TemplateByID looks up a single template.
func (s *Service) TemplateByID(id string) (Template, error) {
	var out Template
	found := false
	s.store.View(func(doc *document) {
		for _, t := range doc.Templates {
			if t.ID == id {
				out = t
				found = true
				return
			}
		}
	})
	if !found {
		return Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// Templates returns the catalog, filtered by category when non-empty.
func (s *Service) Templates(category string) []Template {
	var out []Template
	s.store.View(func(doc *document) {
		for _, t := range doc.Templates {
			if category == "" || t.Category == category {
				out = append(out, t)
			}
		}
	})
	return out
}

// Render substitutes {var} placeholders and counts the usage.
func (s *Service) Render(id string, vars map[string]string) (string, error) {
	var body string
	err := s.store.Update(func(doc *document) error {
		for i := range doc.Templates {
			if doc.Templates[i].ID == id {
				body = doc.Templates[i].Body
				for k, v := range vars {
					body = strings.ReplaceAll(body, "{"+k+"}", v)
				}
				doc.Templates[i].UsageCount++
				return nil
			}
		}
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

// ---- scheduled messages ----

func (s *Service) Schedule(channelID, body string, dueAt time.Time, category string) (ScheduledMessage, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" || strings.TrimSpace(body) == "" {
		return ScheduledMessage{}, fmt.Errorf("channel id and body are required")
	}
	if dueAt.IsZero() {
		return ScheduledMessage{}, fmt.Errorf("due time is required")
	}
	if category == "" {
		category = "general"
	}
	msg := ScheduledMessage{
		ID:        "msg_" + uuid.NewString(),
		ChannelID: channelID,
		Body:      body,
		DueAt:     dueAt,
		Category:  category,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	err := s.store.Update(func(doc *document) error {
		doc.Scheduled = append(doc.Scheduled, msg)
		return nil
	})
	if err != nil {
		return ScheduledMessage{}, err
	}
	s.log.Info("message scheduled",
		logx.String("id", msg.ID), logx.String("channel", channelID), logx.Time("due_at", dueAt))
	return msg, nil
}

// PendingDue returns pending messages with DueAt <= now, ascending by DueAt.
func (s *Service) PendingDue(now time.Time) []ScheduledMessage {
	var out []ScheduledMessage
	s.store.View(func(doc *document) {
		for _, m := range doc.Scheduled {
			if m.Status == StatusPending && !m.DueAt.After(now) {
				out = append(out, m)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

func (s *Service) MarkSent(id string) error {
	return s.transition(id, StatusSent)
}

func (s *Service) Cancel(id string) error {
	return s.transition(id, StatusCancelled)
}

func (s *Service) transition(id string, to MessageStatus) error {
	return s.store.Update(func(doc *document) error {
		for i := range doc.Scheduled {
			if doc.Scheduled[i].ID != id {
				continue
			}
			if doc.Scheduled[i].Status != StatusPending {
				return fmt.Errorf("message %s is %s: %w", id, doc.Scheduled[i].Status, ErrTerminal)
			}
			doc.Scheduled[i].Status = to
			return nil
		}
		return fmt.Errorf("message %s: %w", id, ErrNotFound)
	})
}

// ---- preferences ----

func (s *Service) SetPreferences(channelID string, p Preferences) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return fmt.Errorf("channel id is required")
	}
	p.UpdatedAt = s.now()
	return s.store.Update(func(doc *document) error {
		if doc.Preferences == nil {
			doc.Preferences = map[string]Preferences{}
		}
		doc.Preferences[channelID] = p
		return nil
	})
}

func (s *Service) Preferences(channelID string) Preferences {
	var p Preferences
	ok := false
	s.store.View(func(doc *document) {
		p, ok = doc.Preferences[channelID]
	})
	if !ok {
		return DefaultPreferences()
	}
	return p
}

package content

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"herald/pkg/logx"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "content.json"), logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.rng = rand.New(rand.NewSource(1))
	return s
}

func TestCreateTemplateValidation(t *testing.T) {
	t.Parallel()
	s := newTestService(t)

	if _, err := s.CreateTemplate("", "motivation", "body", nil); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := s.CreateTemplate("n", "motivation", "   ", nil); err == nil {
		t.Fatal("expected error for blank body")
	}

	tpl, err := s.CreateTemplate("morning", "motivation", "Bonjour {name} !", []string{"name"})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if tpl.ID == "" {
		t.Fatal("expected generated id")
	}
	if got := s.Templates("motivation"); len(got) != 1 {
		t.Fatalf("expected 1 template in category, got %d", len(got))
	}
	if got := s.Templates("news"); len(got) != 0 {
		t.Fatalf("expected no templates in other category, got %d", len(got))
	}

	byID, err := s.TemplateByID(tpl.ID)
	if err != nil {
		t.Fatalf("TemplateByID: %v", err)
	}
	if byID.Name != "morning" {
		t.Fatalf("unexpected template: %+v", byID)
	}
	if _, err := s.TemplateByID("tpl_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenderSubstitutesAndCounts(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	tpl, err := s.CreateTemplate("greet", "community", "Salut {name}, bienvenue sur {channel} !", []string{"name", "channel"})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	out, err := s.Render(tpl.ID, map[string]string{"name": "Léa", "channel": "Tech"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Salut Léa, bienvenue sur Tech !" {
		t.Fatalf("unexpected render: %q", out)
	}

	got := s.Templates("community")
	if len(got) != 1 || got[0].UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %+v", got)
	}

	if _, err := s.Render("tpl_missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduledMessageLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	late, err := s.Schedule("c1", "later", base.Add(2*time.Hour), "general")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	early, err := s.Schedule("c1", "sooner", base.Add(time.Hour), "general")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if due := s.PendingDue(base); len(due) != 0 {
		t.Fatalf("nothing should be due yet, got %d", len(due))
	}

	due := s.PendingDue(base.Add(3 * time.Hour))
	if len(due) != 2 {
		t.Fatalf("expected 2 due messages, got %d", len(due))
	}
	if due[0].ID != early.ID || due[1].ID != late.ID {
		t.Fatalf("expected ascending due order, got %s then %s", due[0].ID, due[1].ID)
	}

	if err := s.MarkSent(early.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if err := s.MarkSent(early.ID); !errors.Is(err, ErrTerminal) {
		t.Fatalf("second MarkSent should be terminal, got %v", err)
	}
	if err := s.Cancel(early.ID); !errors.Is(err, ErrTerminal) {
		t.Fatalf("Cancel after sent should be terminal, got %v", err)
	}

	if err := s.Cancel(late.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if due := s.PendingDue(base.Add(3 * time.Hour)); len(due) != 0 {
		t.Fatalf("terminal messages must not be due, got %d", len(due))
	}

	if err := s.MarkSent("msg_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleValidation(t *testing.T) {
	t.Parallel()
	s := newTestService(t)

	if _, err := s.Schedule("", "body", time.Now(), ""); err == nil {
		t.Fatal("expected error for empty channel")
	}
	if _, err := s.Schedule("c1", "body", time.Time{}, ""); err == nil {
		t.Fatal("expected error for zero due time")
	}
	msg, err := s.Schedule("c1", "body", time.Now().Add(time.Hour), "")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if msg.Category != "general" {
		t.Fatalf("expected default category, got %q", msg.Category)
	}
	if msg.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", msg.Status)
	}
}

func TestHandEditedDocumentMissingMaps(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "content.json")
	body := `{"templates": [{"id": "tpl_1", "name": "n", "category": "motivation", "body": "b"}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := New(path, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.rng = rand.New(rand.NewSource(1))

	tpl, err := s.SelectNext(Scope{ChannelID: "c1", Category: "motivation"})
	if err != nil {
		t.Fatalf("SelectNext on document without rotation map: %v", err)
	}
	if tpl.ID != "tpl_1" {
		t.Fatalf("unexpected template: %+v", tpl)
	}
	if err := s.SetPreferences("c1", DefaultPreferences()); err != nil {
		t.Fatalf("SetPreferences on document without preferences map: %v", err)
	}
}

func TestPreferencesDefaultAndRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestService(t)

	p := s.Preferences("c1")
	if len(p.PreferredCategories) == 0 || p.Language != "fr" {
		t.Fatalf("expected defaults, got %+v", p)
	}

	custom := Preferences{
		PreferredCategories: []string{"news"},
		PostFrequency:       "weekly",
		BestTimes:           []string{"20:00"},
		Language:            "fr",
		Tone:                "formal",
	}
	if err := s.SetPreferences("c1", custom); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	got := s.Preferences("c1")
	if got.PostFrequency != "weekly" || len(got.PreferredCategories) != 1 {
		t.Fatalf("unexpected preferences: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be stamped")
	}
}

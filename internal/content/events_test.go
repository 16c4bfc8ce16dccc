package content

import (
	"testing"
	"time"
)

func TestEventContentDates(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"new year", time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), true},
		{"christmas", time.Date(2025, 12, 25, 9, 0, 0, 0, time.UTC), true},
		{"bastille day", time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC), true},
		{"monday", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), true},
		{"friday", time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC), true},
		{"plain wednesday", time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			text, ok := EventContent(tc.date)
			if ok != tc.want {
				t.Fatalf("EventContent(%s) ok = %v, want %v", tc.date.Format("2006-01-02"), ok, tc.want)
			}
			if ok && text == "" {
				t.Fatal("event content must not be empty when ok")
			}
		})
	}
}

func TestSpecialDateBeatsWeekday(t *testing.T) {
	t.Parallel()
	// 2024-01-01 is a Monday; the new-year message must win.
	text, ok := EventContent(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected event content")
	}
	if text != specialDates["01-01"] {
		t.Fatalf("expected new-year message, got %q", text)
	}
}

func TestCalendarCyclesCategories(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) // a Monday
	s.now = func() time.Time { return start }

	seedTemplates(t, s, "news", "n1", "n2")
	if err := s.SetPreferences("c1", Preferences{
		PreferredCategories: []string{"news", "tips"},
		BestTimes:           []string{"09:00"},
	}); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}

	entries := s.Calendar("c1", 4)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	wantCats := []string{"news", "tips", "news", "tips"}
	for i, e := range entries {
		if e.Category != wantCats[i] {
			t.Fatalf("entry %d category = %q, want %q", i, e.Category, wantCats[i])
		}
		if e.Date != start.AddDate(0, 0, i).Format("2006-01-02") {
			t.Fatalf("entry %d date = %q", i, e.Date)
		}
	}
	if entries[0].EventContent == "" {
		t.Fatal("Monday entry should carry event content")
	}
	if entries[0].TemplatesAvailable != 2 {
		t.Fatalf("expected 2 news templates available, got %d", entries[0].TemplatesAvailable)
	}
	if entries[1].TemplatesAvailable != 0 {
		t.Fatalf("expected no tips templates, got %d", entries[1].TemplatesAvailable)
	}
}

func TestCalendarDefaults(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	entries := s.Calendar("unknown", 0)
	if len(entries) != 7 {
		t.Fatalf("expected default 7 days, got %d", len(entries))
	}
	defaults := DefaultPreferences().PreferredCategories
	if entries[0].Category != defaults[0] {
		t.Fatalf("expected default category %q, got %q", defaults[0], entries[0].Category)
	}
}

package content

import (
	"time"
)

// specialDates keys are MM-DD.
var specialDates = map[string]string{
	"01-01": "🎉 Bonne année ! Que cette nouvelle année soit remplie de succès !",
	"12-25": "🎄 Joyeux Noël ! Passez de merveilleuses fêtes !",
	"07-14": "🇫🇷 Bonne fête nationale française !",
	"05-01": "🌸 Bonne fête du travail !",
	"02-14": "💝 Joyeuse Saint-Valentin !",
}

// EventContent returns date-driven content: special dates first, then
// weekday patterns. ok is false when the date has nothing special.
func EventContent(t time.Time) (text string, ok bool) {
	if msg, found := specialDates[t.Format("01-02")]; found {
		return msg, true
	}
	switch t.Weekday() {
	case time.Monday:
		return "💪 Nouvelle semaine, nouveaux défis ! Bonne semaine à tous !", true
	case time.Friday:
		return "🎉 Bon weekend à tous ! Profitez bien de vos moments de repos !", true
	}
	return "", false
}

// CalendarEntry is one planned day in a channel's content calendar.
type CalendarEntry struct {
	Date               string   `json:"date"`
	DayName            string   `json:"day_name"`
	Category           string   `json:"category"`
	SuggestedTimes     []string `json:"suggested_times"`
	EventContent       string   `json:"event_content,omitempty"`
	TemplatesAvailable int      `json:"templates_available"`
}

// Calendar plans the next days for a channel by cycling through its preferred
// categories and flagging event content.
func (s *Service) Calendar(channelID string, days int) []CalendarEntry {
	if days <= 0 {
		days = 7
	}
	prefs := s.Preferences(channelID)
	categories := prefs.PreferredCategories
	if len(categories) == 0 {
		categories = DefaultPreferences().PreferredCategories
	}

	start := s.now()
	entries := make([]CalendarEntry, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		category := categories[i%len(categories)]
		entry := CalendarEntry{
			Date:               date.Format("2006-01-02"),
			DayName:            date.Weekday().String(),
			Category:           category,
			SuggestedTimes:     prefs.BestTimes,
			TemplatesAvailable: len(s.Templates(category)),
		}
		if msg, ok := EventContent(date); ok {
			entry.EventContent = msg
		}
		entries = append(entries, entry)
	}
	return entries
}

package analytics

import (
	"fmt"
	"strings"
)

// WeeklyReport renders the 7-day summary for a channel. When no snapshots
// exist in the window it states so instead of producing empty figures.
func (s *Service) WeeklyReport(channelID string) string {
	return s.periodReport(channelID, 7, "Rapport Hebdomadaire")
}

func (s *Service) periodReport(channelID string, days int, title string) string {
	growth := s.Growth(channelID, days)
	eng := s.Engagement(channelID, days)

	if len(growth) == 0 {
		return fmt.Sprintf("📊 **%s - Canal %s**\n\nAucune donnée disponible pour cette période.",
			title, channelID)
	}

	startSubs := growth[0].Subscribers
	endSubs := growth[len(growth)-1].Subscribers
	delta := endSubs - startSubs
	pct := 0.0
	if startSubs > 0 {
		pct = float64(delta) / float64(startSubs) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **%s**\n\n", title)
	b.WriteString("**Croissance des Abonnés:**\n")
	fmt.Fprintf(&b, "• Début: %d abonnés\n", startSubs)
	fmt.Fprintf(&b, "• Fin: %d abonnés\n", endSubs)
	fmt.Fprintf(&b, "• Croissance: %+d (%+.1f%%)\n\n", delta, pct)
	b.WriteString("**Engagement:**\n")
	fmt.Fprintf(&b, "• Messages envoyés: %d\n", eng.TotalMessages)
	fmt.Fprintf(&b, "• Vues moyennes: %.0f\n", eng.AvgViews)
	fmt.Fprintf(&b, "• Réactions moyennes: %.0f\n", eng.AvgReactions)
	fmt.Fprintf(&b, "• Taux d'engagement: %.1f%%\n\n", eng.EngagementRate)
	fmt.Fprintf(&b, "**Période:** %d derniers jours\n", days)
	fmt.Fprintf(&b, "**Généré le:** %s", s.now().Format("02/01/2006 à 15:04"))
	return b.String()
}

// MonthlyReport renders the 30-day summary with a per-week breakdown. Each of
// the four buckets covers its own 7-day slice of the month.
func (s *Service) MonthlyReport(channelID string) string {
	const days = 30
	growth := s.Growth(channelID, days)
	eng := s.Engagement(channelID, days)

	if len(growth) == 0 {
		return fmt.Sprintf("📊 **Rapport Mensuel - Canal %s**\n\nAucune donnée disponible pour cette période.",
			channelID)
	}

	startSubs := growth[0].Subscribers
	endSubs := growth[len(growth)-1].Subscribers
	delta := endSubs - startSubs
	pct := 0.0
	if startSubs > 0 {
		pct = float64(delta) / float64(startSubs) * 100
	}

	var b strings.Builder
	b.WriteString("📊 **Rapport Mensuel Détaillé**\n\n")
	b.WriteString("**Croissance des Abonnés (30 jours):**\n")
	fmt.Fprintf(&b, "• Début: %d abonnés\n", startSubs)
	fmt.Fprintf(&b, "• Fin: %d abonnés\n", endSubs)
	fmt.Fprintf(&b, "• Croissance totale: %+d (%+.1f%%)\n", delta, pct)
	fmt.Fprintf(&b, "• Croissance moyenne/jour: %.1f\n\n", float64(delta)/float64(days))

	b.WriteString("**Détail par semaine:**\n")
	now := s.now()
	for week := 0; week < 4; week++ {
		from := now.AddDate(0, 0, -days+week*7)
		to := from.AddDate(0, 0, 7)
		b.WriteString("• " + weekLine(week+1, s.growthBetween(channelID, from, to)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("**Engagement (30 jours):**\n")
	fmt.Fprintf(&b, "• Messages envoyés: %d\n", eng.TotalMessages)
	fmt.Fprintf(&b, "• Vues moyennes: %.0f\n", eng.AvgViews)
	fmt.Fprintf(&b, "• Réactions moyennes: %.0f\n", eng.AvgReactions)
	fmt.Fprintf(&b, "• Taux d'engagement: %.1f%%\n\n", eng.EngagementRate)
	fmt.Fprintf(&b, "**Période:** %d derniers jours\n", days)
	fmt.Fprintf(&b, "**Généré le:** %s", now.Format("02/01/2006 à 15:04"))
	return b.String()
}

func weekLine(n int, snaps []Snapshot) string {
	if len(snaps) == 0 {
		return fmt.Sprintf("Semaine %d: aucune donnée", n)
	}
	delta := snaps[len(snaps)-1].Subscribers - snaps[0].Subscribers
	return fmt.Sprintf("Semaine %d: %+d abonnés (%d relevés)", n, delta, len(snaps))
}

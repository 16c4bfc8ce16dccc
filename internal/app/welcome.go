package app

import (
	"context"
	"strings"

	"herald/internal/transport"
	"herald/pkg/logx"
)

// handleJoin greets new members and refreshes the channel's subscriber
// snapshot. Both halves are best-effort: a failure is logged, never propagated
// back into the adapter's update loop.
func (a *App) handleJoin(ctx context.Context, ev transport.JoinEvent) {
	cfg := a.cfgm.Get()
	if cfg == nil {
		return
	}

	text := FormatWelcome(cfg.WelcomeMessage, ev.Username)
	if err := a.adapter.SendMessage(ctx, ev.DestID, text); err != nil {
		a.log.Warn("welcome send failed", logx.String("channel", ev.DestID), logx.Err(err))
	}

	count, err := a.adapter.MemberCount(ctx, ev.DestID)
	if err != nil {
		a.log.Warn("member count fetch failed", logx.String("channel", ev.DestID), logx.Err(err))
		return
	}
	if err := a.analytics.RecordSnapshot(ev.DestID, count); err != nil {
		a.log.Warn("snapshot record failed", logx.String("channel", ev.DestID), logx.Err(err))
	}
}

// FormatWelcome fills the {username} placeholder. Usernames get an @ prefix;
// an empty username falls back to a generic greeting.
func FormatWelcome(template, username string) string {
	switch {
	case username == "":
		username = "Nouvel abonné"
	case !strings.HasPrefix(username, "@"):
		username = "@" + username
	}
	return strings.ReplaceAll(template, "{username}", username)
}

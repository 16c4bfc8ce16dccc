package dispatch

import (
	"context"

	"herald/internal/gate"
	"herald/pkg/logx"
)

// RunDailyBroadcast sends the message of the day to every active channel.
//
// The message index is dayOfYear mod len(pool): a pure function of the date,
// so every channel reached by the same cycle sees the same body regardless of
// enumeration order, and the pool is fully covered over a year of cycles.
func (d *Dispatcher) RunDailyBroadcast(ctx context.Context) error {
	cfg := d.cfgMgr.Get()
	if cfg == nil {
		return nil
	}
	pool := cfg.DailyMessages
	if len(pool) == 0 {
		d.log.Warn("no daily messages configured")
		return nil
	}

	message := pool[d.now().YearDay()%len(pool)]
	channels := cfg.ActiveChannels()
	d.log.Info("sending daily message", logx.Int("channels", len(channels)))

	sent, failed := 0, 0
	for _, ch := range channels {
		if err := d.pace(ctx); err != nil {
			return err
		}
		if err := d.tp.SendMessage(ctx, ch.ID, message); err != nil {
			d.log.Error("daily message send failed",
				logx.String("channel", ch.ID), logx.Err(err))
			failed++
			continue
		}
		sent++
		if err := d.analytics.RecordOutcome(ch.ID, "daily", 0, 0); err != nil {
			d.log.Warn("outcome record failed", logx.String("channel", ch.ID), logx.Err(err))
		}
	}

	d.log.Info("daily message done", logx.Int("sent", sent), logx.Int("failed", failed))
	return nil
}

// RunDailyPoll sends the configured poll to every active channel that passes
// the eligibility gate. Ineligible channels and metric-fetch failures are
// logged and skipped; they never abort the batch.
func (d *Dispatcher) RunDailyPoll(ctx context.Context) error {
	cfg := d.cfgMgr.Get()
	if cfg == nil {
		return nil
	}
	if len(cfg.Poll.Options) == 0 {
		d.log.Warn("no poll options configured")
		return nil
	}

	channels := cfg.ActiveChannels()
	d.log.Info("sending daily poll", logx.Int("channels", len(channels)))

	sent, skipped, failed := 0, 0, 0
	for _, ch := range channels {
		if err := d.pace(ctx); err != nil {
			return err
		}

		eligible, subscribers, err := d.gate.Eligible(ctx, ch.ID, gate.CategoryPoll)
		if err != nil {
			d.log.Warn("subscriber count fetch failed; skipping channel",
				logx.String("channel", ch.ID), logx.Err(err))
			skipped++
			continue
		}
		if !eligible {
			d.log.Info("channel below poll threshold; skipping",
				logx.String("channel", ch.ID),
				logx.Int("subscribers", subscribers), logx.Int("threshold", d.gate.Threshold()))
			skipped++
			continue
		}

		if err := d.tp.SendPoll(ctx, ch.ID, cfg.Poll.Question, cfg.Poll.Options); err != nil {
			d.log.Error("poll send failed", logx.String("channel", ch.ID), logx.Err(err))
			failed++
			continue
		}
		sent++
		if err := d.analytics.RecordSnapshot(ch.ID, subscribers); err != nil {
			d.log.Warn("snapshot record failed", logx.String("channel", ch.ID), logx.Err(err))
		}
		if err := d.analytics.RecordOutcome(ch.ID, "poll", 0, 0); err != nil {
			d.log.Warn("outcome record failed", logx.String("channel", ch.ID), logx.Err(err))
		}
	}

	d.log.Info("daily poll done",
		logx.Int("sent", sent), logx.Int("skipped", skipped), logx.Int("failed", failed))
	return nil
}

// SweepScheduled delivers one-off messages whose due time has passed, in
// ascending due order. A failed send leaves the message pending so the next
// sweep retries it.
func (d *Dispatcher) SweepScheduled(ctx context.Context) error {
	due := d.content.PendingDue(d.now())
	if len(due) == 0 {
		return nil
	}
	d.log.Info("delivering scheduled messages", logx.Int("due", len(due)))

	for _, msg := range due {
		if err := d.pace(ctx); err != nil {
			return err
		}
		if err := d.tp.SendMessage(ctx, msg.ChannelID, msg.Body); err != nil {
			d.log.Warn("scheduled send failed; will retry next sweep",
				logx.String("id", msg.ID), logx.String("channel", msg.ChannelID), logx.Err(err))
			continue
		}
		if err := d.content.MarkSent(msg.ID); err != nil {
			d.log.Error("mark sent failed", logx.String("id", msg.ID), logx.Err(err))
			continue
		}
		if err := d.analytics.RecordOutcome(msg.ChannelID, "scheduled", 0, 0); err != nil {
			d.log.Warn("outcome record failed", logx.String("channel", msg.ChannelID), logx.Err(err))
		}
	}
	return nil
}

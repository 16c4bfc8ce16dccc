// Package dispatch owns the time-triggered delivery jobs: the daily broadcast,
// the daily poll, and the due-time sweep for one-off scheduled messages.
//
// Every fan-out applies the same two rules: a failure for one channel is
// logged and the batch moves on to the next channel, and sends are paced by a
// shared rate limiter to respect platform limits.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"herald/internal/analytics"
	"herald/internal/config"
	"herald/internal/content"
	"herald/internal/gate"
	"herald/internal/scheduler"
	"herald/internal/transport"
	"herald/pkg/logx"
)

// Job names. One live cron entry exists per name.
const (
	JobDailyBroadcast = "dailyBroadcast"
	JobDailyPoll      = "dailyPoll"
	JobScheduledSweep = "scheduledSweep"
)

// jobTimeout bounds one firing. Generous: a firing is a whole fan-out across
// the fleet, paced at roughly one send per second.
const jobTimeout = 15 * time.Minute

type Dispatcher struct {
	log       logx.Logger
	cfgMgr    *config.Manager
	tp        transport.Transport
	gate      *gate.Gate
	content   *content.Service
	analytics *analytics.Service
	sched     *scheduler.Service

	limMu   sync.Mutex
	limiter *rate.Limiter

	now func() time.Time
}

func New(cfgMgr *config.Manager, tp transport.Transport, g *gate.Gate,
	cs *content.Service, as *analytics.Service, sched *scheduler.Service, log logx.Logger) *Dispatcher {

	rps := 1
	if cfg := cfgMgr.Get(); cfg != nil && cfg.Dispatch.RatePerSec > 0 {
		rps = cfg.Dispatch.RatePerSec
	}
	return &Dispatcher{
		log:       log,
		cfgMgr:    cfgMgr,
		tp:        tp,
		gate:      g,
		content:   cs,
		analytics: as,
		sched:     sched,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		now:       time.Now,
	}
}

// Start registers the jobs with the scheduler. Registration failures are
// fatal to startup and propagate.
func (d *Dispatcher) Start() error {
	cfg := d.cfgMgr.Get()
	if cfg == nil {
		return fmt.Errorf("dispatch: config not loaded")
	}

	if cfg.DailyMessage.Enabled {
		if err := d.sched.AddDaily(JobDailyBroadcast, cfg.DailyMessage.Hour, cfg.DailyMessage.Minute, jobTimeout, d.RunDailyBroadcast); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		d.log.Info("daily broadcast scheduled",
			logx.String("at", fmt.Sprintf("%02d:%02d", cfg.DailyMessage.Hour, cfg.DailyMessage.Minute)))
	}
	if cfg.Poll.Enabled {
		if err := d.sched.AddDaily(JobDailyPoll, cfg.Poll.Hour, cfg.Poll.Minute, jobTimeout, d.RunDailyPoll); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		d.log.Info("daily poll scheduled",
			logx.String("at", fmt.Sprintf("%02d:%02d", cfg.Poll.Hour, cfg.Poll.Minute)))
	}
	if err := d.sched.AddInterval(JobScheduledSweep, cfg.SweepIntervalDuration(time.Minute), jobTimeout, d.SweepScheduled); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// Apply reconciles the registered jobs with a reloaded config: trigger times
// are upserted, disabled jobs are removed, pacing and the poll threshold are
// refreshed.
func (d *Dispatcher) Apply(cfg *config.Config) {
	if cfg == nil {
		return
	}
	d.gate.Apply(cfg.Poll.MinSubscribers)

	d.limMu.Lock()
	d.limiter.SetLimit(rate.Limit(cfg.Dispatch.RatePerSec))
	d.limMu.Unlock()

	if cfg.DailyMessage.Enabled {
		if err := d.sched.AddDaily(JobDailyBroadcast, cfg.DailyMessage.Hour, cfg.DailyMessage.Minute, jobTimeout, d.RunDailyBroadcast); err != nil {
			d.log.Error("daily broadcast reschedule failed", logx.Err(err))
		}
	} else {
		d.sched.Remove(JobDailyBroadcast)
	}
	if cfg.Poll.Enabled {
		if err := d.sched.AddDaily(JobDailyPoll, cfg.Poll.Hour, cfg.Poll.Minute, jobTimeout, d.RunDailyPoll); err != nil {
			d.log.Error("daily poll reschedule failed", logx.Err(err))
		}
	} else {
		d.sched.Remove(JobDailyPoll)
	}
	if err := d.sched.AddInterval(JobScheduledSweep, cfg.SweepIntervalDuration(time.Minute), jobTimeout, d.SweepScheduled); err != nil {
		d.log.Error("sweep reschedule failed", logx.Err(err))
	}
}

// Reschedule moves a named job to a new daily trigger time.
func (d *Dispatcher) Reschedule(jobName string, hour, minute int) error {
	return d.sched.Reschedule(jobName, hour, minute)
}

// pace blocks until the limiter grants a send slot.
func (d *Dispatcher) pace(ctx context.Context) error {
	d.limMu.Lock()
	lim := d.limiter
	d.limMu.Unlock()
	return lim.Wait(ctx)
}

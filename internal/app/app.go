// Package app wires the services together and owns their lifecycle.
package app

import (
	"context"
	"os"
	"strings"
	"sync"

	"herald/internal/analytics"
	"herald/internal/config"
	"herald/internal/content"
	"herald/internal/dispatch"
	"herald/internal/gate"
	"herald/internal/scheduler"
	"herald/internal/transport/telegram"
	"herald/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	log  logx.Logger

	closeLog func() error

	adapter   *telegram.Adapter
	contentS  *content.Service
	analytics *analytics.Service
	gate      *gate.Gate
	sched     *scheduler.Service
	disp      *dispatch.Dispatcher

	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if err != nil {
		return nil, err
	}
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	// BOT_TOKEN from the environment wins over the config file, matching how
	// the bot is deployed (token in env, everything else in the file).
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		token = cfg.Telegram.Token
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       token,
		PollTimeout: cfg.PollTimeoutDuration(0),
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	contentS, err := content.New(cfg.Storage.ContentFile, log.With(logx.String("comp", "content")))
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	analyticsS, err := analytics.New(cfg.Storage.AnalyticsFile, log.With(logx.String("comp", "analytics")))
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	g := gate.New(adapter.MemberCount, cfg.Poll.MinSubscribers)

	sched := scheduler.New(scheduler.Config{
		Enabled:  true,
		Timezone: cfg.Timezone,
	}, log.With(logx.String("comp", "scheduler")))

	disp := dispatch.New(cfgm, adapter, g, contentS, analyticsS, sched,
		log.With(logx.String("comp", "dispatch")))

	a := &App{
		cfgPath:   cfgPath,
		cfgm:      cfgm,
		log:       log.With(logx.String("comp", "app")),
		closeLog:  closeLog,
		adapter:   adapter,
		contentS:  contentS,
		analytics: analyticsS,
		gate:      g,
		sched:     sched,
		disp:      disp,
	}
	adapter.OnJoin(a.handleJoin)
	return a, nil
}

// Start brings everything up. A job-registration failure is fatal and
// propagates; everything started before it is torn down by Stop.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.adapter.Start(runCtx)
	a.sched.Start(runCtx)
	if err := a.disp.Start(); err != nil {
		return err
	}

	// Config hot reload: watch the file and apply each committed config.
	sub := a.cfgm.Subscribe(1)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(runCtx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-runCtx.Done():
				return
			case cfg, ok := <-sub:
				if !ok {
					return
				}
				a.sched.Apply(scheduler.Config{Enabled: true, Timezone: cfg.Timezone})
				a.disp.Apply(cfg)
				a.log.Info("config applied")
			}
		}
	}()

	a.log.Info("herald started", logx.String("config", a.cfgPath))
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		a.sched.Stop(ctx)
		a.adapter.Stop(ctx)
		a.wg.Wait()
		a.log.Info("herald stopped")
		if a.closeLog != nil {
			_ = a.closeLog()
		}
	})
	return nil
}

// Dispatcher exposes the delivery jobs to external admin glue (rescheduling).
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.disp }

// Config exposes the config manager to external admin glue.
func (a *App) Config() *config.Manager { return a.cfgm }

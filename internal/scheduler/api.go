package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"herald/pkg/logx"
)

// ErrUnknownJob is returned by Reschedule for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// AddCron registers (or replaces) a named job. Upsert is atomic with respect
// to the timer: the previous entry for the name is removed under the same lock
// before the new one is installed, so no window exists in which both triggers
// are live, and no firing slot is double-executed.
//
// Registering while stopped stores the definition; it is applied on Start.
// A registration error while running propagates to the caller.
func (s *Service) AddCron(name, spec string, timeout time.Duration, job func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		return errors.New("job name required")
	}
	s.removeJobLocked(name)
	d := &jobDef{
		name:    name,
		spec:    spec,
		timeout: s.resolveTimeout(timeout),
		run:     job,
		state:   &runState{},
	}
	s.defs = append(s.defs, d)
	if s.c == nil {
		return nil
	}
	if err := s.addCronLocked(d); err != nil {
		// Roll the bad definition back out so a later Start doesn't retry it.
		s.removeJobLocked(name)
		return fmt.Errorf("register job %q (%s): %w", name, spec, err)
	}
	s.log.Debug("job registered", logx.String("job", name), logx.String("spec", spec))
	return nil
}

// AddDaily registers a job firing every day at hour:minute in the scheduler's
// timezone.
func (s *Service) AddDaily(name string, hour, minute int, timeout time.Duration, job func(ctx context.Context) error) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	return s.AddCron(name, spec, timeout, job)
}

// AddInterval registers a job firing every `every`.
func (s *Service) AddInterval(name string, every time.Duration, timeout time.Duration, job func(ctx context.Context) error) error {
	if every <= 0 {
		return fmt.Errorf("invalid interval %s", every)
	}
	spec := fmt.Sprintf("@every %s", every.String())
	return s.AddCron(name, spec, timeout, job)
}

// Reschedule moves an existing job to a new daily hour:minute, keeping its
// callback. Idempotent: repeated calls leave exactly one live entry with the
// final trigger time.
func (s *Service) Reschedule(name string, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}

	s.mu.Lock()
	var run func(ctx context.Context) error
	var timeout time.Duration
	for _, d := range s.defs {
		if d.name == name {
			run = d.run
			timeout = d.timeout
			break
		}
	}
	s.mu.Unlock()
	if run == nil {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	if err := s.AddDaily(name, hour, minute, timeout, run); err != nil {
		return err
	}
	s.log.Info("job rescheduled",
		logx.String("job", name), logx.String("at", fmt.Sprintf("%02d:%02d", hour, minute)))
	return nil
}

// Remove unregisters the named job. Returns true if something was removed.
func (s *Service) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeJobLocked(name)
}

// Jobs returns a snapshot of all registered jobs.
func (s *Service) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.defs))
	for _, d := range s.defs {
		info := JobInfo{Name: d.name, Spec: d.spec}
		if s.c != nil && d.entryID != 0 {
			e := s.c.Entry(d.entryID)
			info.Next = e.Next
			info.Prev = e.Prev
		}
		out = append(out, info)
	}
	return out
}

// removeJobLocked removes all defs matching name and unregisters them from the
// cron if running. Call with s.mu held.
func (s *Service) removeJobLocked(name string) bool {
	removed := false
	n := 0
	for _, d := range s.defs {
		if d.name == name {
			removed = true
			if s.c != nil && d.entryID != 0 {
				s.c.Remove(d.entryID)
			}
			d.entryID = 0
			continue
		}
		s.defs[n] = d
		n++
	}
	for i := n; i < len(s.defs); i++ {
		s.defs[i] = nil
	}
	s.defs = s.defs[:n]
	return removed
}

// addCronLocked installs the def into the running cron. If a previous firing
// of the same job is still executing, the new firing is skipped instead of
// queued behind it. Call with s.mu held.
func (s *Service) addCronLocked(d *jobDef) error {
	eid, err := s.c.AddFunc(d.spec, func() {
		d.state.mu.Lock()
		running := d.state.running
		d.state.mu.Unlock()
		if running {
			s.log.Debug("job skipped (previous run still running)", logx.String("job", d.name))
			return
		}
		s.enqueue(task{name: d.name, timeout: d.timeout, run: d.run, state: d.state})
	})
	if err == nil {
		d.entryID = eid
	}
	return err
}

func (s *Service) enqueue(t task) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("scheduler not running; dropping task", logx.String("job", t.name))
		return
	}
	select {
	case q <- t:
	default:
		s.log.Warn("scheduler queue full; dropping task",
			logx.String("job", t.name), logx.Int("queue_len", len(q)), logx.Int("queue_cap", cap(q)))
	}
}

func (s *Service) restartLocked() {
	if s.c != nil {
		<-s.c.Stop().Done()
	}
	loc := s.loadLocationLocked()
	s.loc = loc
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))
	for _, d := range s.defs {
		_ = s.addCronLocked(d)
	}
	s.c.Start()
	s.log.Info("scheduler restarted", logx.String("tz", loc.String()), logx.Int("jobs", len(s.defs)))
}

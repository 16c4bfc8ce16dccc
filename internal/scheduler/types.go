package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"herald/pkg/logx"
)

// Config controls the scheduler service.
type Config struct {
	Enabled        bool
	Timezone       string // IANA TZ, e.g. "Europe/Paris"
	DefaultTimeout time.Duration
}

type runState struct {
	mu      sync.Mutex
	running bool
}

type task struct {
	name    string
	timeout time.Duration
	run     func(ctx context.Context) error
	state   *runState
}

// jobDef is a persisted job definition. Exactly one live def exists per name;
// re-registering a name replaces the previous definition atomically.
type jobDef struct {
	name    string
	spec    string // cron spec or @every
	timeout time.Duration
	run     func(ctx context.Context) error
	entryID cron.EntryID
	state   *runState
}

// JobInfo is a read-only snapshot of one registered job.
type JobInfo struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location

	parser cron.Parser
	c      *cron.Cron

	// defs holds pointers, never values: the cron closure installed by
	// addCronLocked captures its *jobDef, so a def must keep its identity
	// across upserts and removals of sibling jobs.
	defs []*jobDef

	queue    chan task
	stopCh   chan struct{}
	workerWG sync.WaitGroup
}

// Package scheduler provides the in-process job scheduler that drives herald's
// time-triggered fan-outs.
//
// Jobs are registered under a logical name (e.g. "dailyBroadcast"). Names are
// stable and human readable so that jobs can be replaced (upserted) and
// removed deterministically: re-registering a name atomically swaps the old
// trigger for the new one, which is what makes runtime rescheduling safe.
//
// Callbacks run on a single worker goroutine, so no two job callbacks ever
// execute concurrently within one process. The cron itself keeps firing on
// schedule while a callback blocks on network I/O; an overlapping firing of
// the same job is skipped rather than queued.
package scheduler

// Package gate decides whether a channel may receive poll-type content this
// cycle. The decision is fail-closed: when the live metric cannot be fetched,
// the channel is skipped rather than risking a send to an undersized audience.
package gate

import (
	"context"
	"sync"
)

// CategoryPoll is the only category subject to the subscriber threshold.
const CategoryPoll = "poll"

// MetricFunc fetches the live subscriber count for a destination. Supplied by
// the transport layer.
type MetricFunc func(ctx context.Context, destID string) (int, error)

type Gate struct {
	metric MetricFunc

	mu        sync.RWMutex
	threshold int
}

func New(metric MetricFunc, threshold int) *Gate {
	if threshold <= 0 {
		threshold = 500
	}
	return &Gate{metric: metric, threshold: threshold}
}

// Apply updates the subscriber threshold (config hot reload).
func (g *Gate) Apply(threshold int) {
	if threshold <= 0 {
		return
	}
	g.mu.Lock()
	g.threshold = threshold
	g.mu.Unlock()
}

func (g *Gate) Threshold() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.threshold
}

// Eligible reports whether destID may receive content of the given category.
// Non-poll categories are always eligible. For polls, the live member count
// must meet the threshold; a metric fetch failure means not eligible, with the
// error returned so the caller can log it and move on to the next destination.
func (g *Gate) Eligible(ctx context.Context, destID, category string) (bool, int, error) {
	if category != CategoryPoll {
		return true, 0, nil
	}
	count, err := g.metric(ctx, destID)
	if err != nil {
		return false, 0, err
	}
	return count >= g.Threshold(), count, nil
}

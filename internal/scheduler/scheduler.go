package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Job is one reconciliation pass run on a timer.
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler owns the three ingestion timers. Jobs run to completion inside a
// single loop, so two passes never touch the store at the same time; a slow
// pass simply delays the next one.
type Scheduler struct {
	discovery Job
	details   Job
	claps     Job

	discoveryInt time.Duration
	detailsInt   time.Duration
	clapsInt     time.Duration
}

// New creates a scheduler. Zero intervals select the defaults
// (1h discovery, 24h details, 15m claps).
func New(discovery, details, claps Job, discoveryInt, detailsInt, clapsInt time.Duration) *Scheduler {
	if discoveryInt == 0 {
		discoveryInt = time.Hour
	}
	if detailsInt == 0 {
		detailsInt = 24 * time.Hour
	}
	if clapsInt == 0 {
		clapsInt = 15 * time.Minute
	}
	return &Scheduler{
		discovery:    discovery,
		details:      details,
		claps:        claps,
		discoveryInt: discoveryInt,
		detailsInt:   detailsInt,
		clapsInt:     clapsInt,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled. Job errors
// are logged and swallowed; a failed pass waits for its next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	discoveryTicker := time.NewTicker(s.discoveryInt)
	detailsTicker := time.NewTicker(s.detailsInt)
	clapsTicker := time.NewTicker(s.clapsInt)
	defer discoveryTicker.Stop()
	defer detailsTicker.Stop()
	defer clapsTicker.Stop()

	// Run everything once on start.
	s.runJob(ctx, "discovery", s.discovery)
	s.runJob(ctx, "details", s.details)
	s.runJob(ctx, "claps", s.claps)

	fmt.Fprintf(os.Stderr, "scheduler: running (discovery every %s, details every %s, claps every %s)\n",
		s.discoveryInt, s.detailsInt, s.clapsInt)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-discoveryTicker.C:
			s.runJob(ctx, "discovery", s.discovery)
		case <-detailsTicker.C:
			s.runJob(ctx, "details", s.details)
		case <-clapsTicker.C:
			s.runJob(ctx, "claps", s.claps)
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, name string, job Job) {
	if ctx.Err() != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "scheduler: %s...\n", name)
	if err := job.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  %s error: %v\n", name, err)
	}
}

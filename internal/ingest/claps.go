package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/simonjung1603/medium-leaderboard/internal/store"
)

// DefaultMinGap is how much wall-clock time must have passed since the last
// successful clap check before another pass hits the API. It sits just under
// the timer period so a ticker firing slightly early does not skip a cycle.
const DefaultMinGap = 14 * time.Minute

// ClapRefresher re-fetches the clap count for every known submission,
// recording a history row whenever a count changed.
type ClapRefresher struct {
	claps  ClapsFetcher
	store  store.Store
	minGap time.Duration
	now    func() time.Time
}

// NewClapRefresher creates a ClapRefresher. A zero minGap selects DefaultMinGap.
func NewClapRefresher(claps ClapsFetcher, st store.Store, minGap time.Duration) *ClapRefresher {
	if minGap == 0 {
		minGap = DefaultMinGap
	}
	return &ClapRefresher{claps: claps, store: st, minGap: minGap, now: time.Now}
}

// Run performs one refresh pass. Counts are fetched one post at a time to
// keep the request rate against Medium low; the submission count is small
// enough that throughput does not matter. Unlike discovery, a single failed
// fetch aborts the whole pass: a batch with holes in the middle is not worth
// trusting, and the next tick retries from scratch.
func (r *ClapRefresher) Run(ctx context.Context) error {
	last, ok, err := r.store.LatestClapCheckTime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  last clap check time: %v\n", err)
	} else if ok && r.now().Sub(last) < r.minGap {
		fmt.Fprintf(os.Stderr, "  claps checked %s ago, skipping\n", r.now().Sub(last).Round(time.Second))
		return nil
	}

	subs, err := r.store.ListByClaps(ctx)
	if err != nil {
		return fmt.Errorf("clap refresh: %w", err)
	}

	for _, sub := range subs {
		count, err := r.claps.ClapCount(ctx, sub.GUID)
		if err != nil {
			return fmt.Errorf("clap refresh %s: %w", sub.GUID, err)
		}

		now := r.now()
		if count != sub.ClapCount {
			fmt.Fprintf(os.Stderr, "  %s: %d -> %d claps\n", sub.GUID, sub.ClapCount, count)
			if err := r.store.RecordClapChange(ctx, sub.GUID, count, now); err != nil {
				return fmt.Errorf("clap refresh %s: %w", sub.GUID, err)
			}
			continue
		}

		// Count unchanged, still stamp the freshness time.
		if err := r.store.UpdateClapCount(ctx, sub.GUID, count, now); err != nil {
			return fmt.Errorf("clap refresh %s: %w", sub.GUID, err)
		}
	}

	return nil
}

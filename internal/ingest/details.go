package ingest

import "context"

// DetailsRefresher will re-fetch metadata for submissions whose details have
// gone stale (edited titles, new published versions). What exactly should be
// refreshed is not pinned down yet, so each run succeeds without doing
// anything; the job exists so the scheduler wiring is uniform across all
// three timers.
type DetailsRefresher struct{}

// NewDetailsRefresher creates a DetailsRefresher.
func NewDetailsRefresher() *DetailsRefresher {
	return &DetailsRefresher{}
}

// Run performs one (currently empty) refresh pass.
func (d *DetailsRefresher) Run(ctx context.Context) error {
	return nil
}

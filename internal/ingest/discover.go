package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/simonjung1603/medium-leaderboard/internal/store"
	"github.com/simonjung1603/medium-leaderboard/pkg/medium"
	"github.com/simonjung1603/medium-leaderboard/pkg/notify"
)

// FeedFetcher lists the submissions currently published upstream.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]medium.FeedEntry, error)
}

// DetailsFetcher loads the full metadata for one post.
type DetailsFetcher interface {
	StoryDetails(ctx context.Context, postID string) (*medium.StoryDetails, error)
}

// ClapsFetcher loads the current clap count for one post.
type ClapsFetcher interface {
	ClapCount(ctx context.Context, postID string) (int, error)
}

// Discoverer reconciles the contest feed against the store, inserting
// submissions that exist upstream but are unknown locally. Re-running it
// against an unchanged feed inserts nothing.
type Discoverer struct {
	feed     FeedFetcher
	details  DetailsFetcher
	store    store.Store
	notifier *notify.Manager
}

// NewDiscoverer creates a Discoverer. notifier may be nil.
func NewDiscoverer(feed FeedFetcher, details DetailsFetcher, st store.Store, notifier *notify.Manager) *Discoverer {
	return &Discoverer{feed: feed, details: details, store: st, notifier: notifier}
}

// Run performs one discovery pass. A feed fetch failure aborts the pass;
// any failure handling a single item is logged and does not stop the rest
// of the batch.
func (d *Discoverer) Run(ctx context.Context) error {
	entries, err := d.feed.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	for _, entry := range entries {
		postID, ok := medium.PostID(entry.GUID)
		if !ok {
			fmt.Fprintf(os.Stderr, "  no post id in feed guid %q, skipping\n", entry.GUID)
			continue
		}

		_, err := d.store.Find(ctx, postID)
		if err == nil {
			continue // already known
		}
		if !errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "  lookup %s: %v\n", postID, err)
			continue
		}

		details, err := d.details.StoryDetails(ctx, postID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  details %s: %v\n", postID, err)
			continue
		}

		err = d.store.Insert(ctx, store.NewSubmission{
			GUID:             details.ID,
			AuthorName:       details.AuthorName,
			AuthorUsername:   details.AuthorUsername,
			PublishedVersion: details.PublishedVersion,
			PublishedAt:      details.PublishedAt,
			ClapCount:        details.ClapCount,
			Title:            details.Title,
			PreviewImageID:   details.PreviewImageID,
			WordCount:        details.WordCount,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "  insert %s: %v\n", postID, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  discovered %s: %q by %s\n", postID, details.Title, details.AuthorName)

		if d.notifier.HasNotifiers() {
			announcement := &notify.Announcement{
				GUID:       details.ID,
				Title:      details.Title,
				AuthorName: details.AuthorName,
				URL:        "https://medium.com/p/" + details.ID,
			}
			if err := d.notifier.Broadcast(ctx, announcement); err != nil {
				fmt.Fprintf(os.Stderr, "  notify %s: %v\n", postID, err)
			}
		}
	}

	return nil
}

package reconciler

import (
	"context"
	"fmt"
	"log"
	"time"

	"giscus-autogen/models"
)

// LookbackWindow is how far back an existing discussion counts as a duplicate.
// An entry created exactly LookbackWindow ago is still inside it.
const LookbackWindow = 7 * 24 * time.Hour

// DiscussionLister lists a repository's newest discussions, newest first.
type DiscussionLister interface {
	RecentDiscussions(ctx context.Context, owner, name string) ([]models.DiscussionRecord, error)
}

// Finder looks for a discussion that already covers a post.
type Finder struct {
	Lister  DiscussionLister
	MatchOn models.MatchKey
}

// FindExisting returns the URL of the newest discussion whose title matches the
// post, or false when none was created inside the lookback window. Listing
// failures are returned as errors, never as "not found".
func (f *Finder) FindExisting(ctx context.Context, repo models.Repo, post models.Post, now time.Time) (string, bool, error) {
	records, err := f.Lister.RecentDiscussions(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", false, fmt.Errorf("check for existing discussion: %w", err)
	}

	url, found := matchExisting(records, post.Key(f.MatchOn), now)
	if found {
		log.Printf("Existing discussion for %s found at %s", post.URL, url)
	}
	return url, found, nil
}

// matchExisting walks records in the order given. The listing is newest first,
// so the first stale entry ends the scan.
func matchExisting(records []models.DiscussionRecord, key string, now time.Time) (string, bool) {
	for _, r := range records {
		if now.Sub(r.CreatedAt) > LookbackWindow {
			return "", false
		}
		if r.Title == key {
			return r.URL, true
		}
	}
	return "", false
}

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"giscus-autogen/models"
	"giscus-autogen/utils"
)

// ErrSyncInProgress is returned when Sync is called while another sync in
// this process has not finished.
var ErrSyncInProgress = errors.New("a discussion sync is already running")

// FeedSource returns the newest entry of the site's feed.
type FeedSource interface {
	Latest(ctx context.Context) (models.FeedEntry, error)
}

// PageScraper turns a post URL into a Post.
type PageScraper interface {
	Extract(ctx context.Context, pageURL *url.URL) (models.Post, error)
}

// SyncOptions selects how a sync behaves.
type SyncOptions struct {
	// DryRun resolves everything but creates nothing.
	DryRun bool
	// Scheduled marks an unattended run. The existence check only sees
	// discussions inside LookbackWindow, so a scheduled run skips a post
	// published before the window and a post this Service already handled.
	Scheduled bool
}

// Outcome describes a finished sync.
type Outcome struct {
	Post       models.Post
	DryRun     bool
	Request    models.CreationRequest    // set for dry runs only
	Discussion *models.CreatedDiscussion // nil for dry runs and skips

	// SkipReason is set when a scheduled sync left the post alone.
	SkipReason string
}

// Skipped reports whether the sync left the post alone without checking it.
func (o *Outcome) Skipped() bool {
	return o.SkipReason != ""
}

// Service runs the whole pipeline: newest feed entry, page scrape, reconcile.
type Service struct {
	Feed         FeedSource
	Scraper      PageScraper
	Orchestrator *Orchestrator

	running sync.Mutex
	// handled is the post whose discussion was created or found last;
	// guarded by running.
	handled string
}

// Sync processes the newest post.
func (s *Service) Sync(ctx context.Context, opts SyncOptions) (*Outcome, error) {
	if !s.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.running.Unlock()

	entry, err := s.Feed.Latest(ctx)
	if err != nil {
		utils.Error("reconciler", "feed", err.Error())
		return nil, fmt.Errorf("find latest post: %w", err)
	}

	if opts.Scheduled {
		if reason := s.skipReason(entry, s.Orchestrator.now()); reason != "" {
			log.Printf("Skipping %s: %s", entry.URL, reason)
			return &Outcome{Post: models.Post{URL: entry.URL}, SkipReason: reason}, nil
		}
	}

	post, err := s.Scraper.Extract(ctx, entry.URL)
	if err != nil {
		utils.Error("reconciler", "scrape", err.Error())
		return nil, fmt.Errorf("scrape %s: %w", entry.URL, err)
	}

	dryRun := opts.DryRun
	out := &Outcome{Post: post, DryRun: dryRun}
	if dryRun {
		req, err := s.Orchestrator.Plan(ctx, post)
		if err != nil {
			s.report(post, err)
			return nil, err
		}
		out.Request = req
		utils.Info("reconciler", "dry run", fmt.Sprintf("Would create discussion %q in the configured category for %s", req.Title, post.URL))
		return out, nil
	}

	created, err := s.Orchestrator.Run(ctx, post)
	if err != nil {
		var dup *DuplicateDiscussionError
		if errors.As(err, &dup) {
			s.handled = entry.URL.String()
		}
		s.report(post, err)
		return nil, err
	}
	s.handled = entry.URL.String()
	out.Discussion = created
	utils.Info("reconciler", "create", fmt.Sprintf("Successfully created new discussion at %s (%s)", created.URL, created.Title))
	utils.AnnounceDiscussion(created)
	return out, nil
}

// skipReason explains why a scheduled sync must not touch entry, or returns "".
func (s *Service) skipReason(entry models.FeedEntry, now time.Time) string {
	if entry.URL.String() == s.handled {
		return "its discussion was already created or found by this process"
	}
	if !entry.Published.IsZero() && now.Sub(entry.Published) > LookbackWindow {
		return fmt.Sprintf("published %s, before the %s lookback window", entry.Published.Format(time.RFC3339), LookbackWindow)
	}
	return ""
}

func (s *Service) report(post models.Post, err error) {
	var dup *DuplicateDiscussionError
	if errors.As(err, &dup) {
		utils.Warn("reconciler", "duplicate", err.Error())
		return
	}
	utils.Error("reconciler", "reconcile", fmt.Sprintf("%s: %v", post.URL, err))
}

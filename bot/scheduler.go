package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"giscus-autogen/reconciler"
	"giscus-autogen/utils"

	"github.com/robfig/cron/v3"
)

// Syncer runs one feed-to-discussion pass.
type Syncer interface {
	Sync(ctx context.Context, opts reconciler.SyncOptions) (*reconciler.Outcome, error)
}

// Scheduler runs a Syncer on a cron schedule. Every tick is an independent
// run; a failed tick is logged and the schedule continues.
type Scheduler struct {
	cron   *cron.Cron
	syncer Syncer
	spec   string

	ctx    context.Context
	cancel context.CancelFunc
	extra  sync.WaitGroup
}

// NewScheduler validates spec and prepares a scheduler for syncer.
func NewScheduler(spec string, syncer Syncer) (*Scheduler, error) {
	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	s := &Scheduler{cron: c, syncer: syncer, spec: spec}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := c.AddFunc(spec, func() { s.Tick(s.ctx) }); err != nil {
		s.cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running ticks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("Sync scheduled with %q.", s.spec)
}

// RunNow runs one tick in the background, outside the schedule. Stop cancels
// and waits for it like a scheduled tick.
func (s *Scheduler) RunNow() {
	s.extra.Add(1)
	go func() {
		defer s.extra.Done()
		s.Tick(s.ctx)
	}()
}

// Stop cancels the running ticks, if any, and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.extra.Wait()
	log.Println("Scheduler stopped.")
}

// Tick runs a single unattended sync. It returns the sync error for callers
// that want it; scheduled ticks discard it after logging.
func (s *Scheduler) Tick(ctx context.Context) error {
	out, err := s.syncer.Sync(ctx, reconciler.SyncOptions{Scheduled: true})
	switch {
	case errors.Is(err, reconciler.ErrSyncInProgress):
		utils.Info("scheduler", "tick", "Previous sync still running, skipping this tick.")
		return err
	case err != nil:
		log.Printf("Scheduled sync failed: %v", err)
		return err
	}
	if out.Skipped() {
		log.Printf("Scheduled sync skipped %s: %s", out.Post.URL, out.SkipReason)
		return nil
	}
	log.Printf("Scheduled sync finished for %s", out.Post.URL)
	return nil
}

package reconciler

import (
	"context"
	"fmt"
	"time"

	"giscus-autogen/models"

	"golang.org/x/sync/errgroup"
)

// State is the position of one reconciliation run.
type State int

const (
	StateChecking State = iota
	StateCreating
	StateAborted
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateCreating:
		return "creating"
	case StateAborted:
		return "aborted"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DuplicateDiscussionError stops a run whose post already has a discussion
// inside the lookback window.
type DuplicateDiscussionError struct {
	PostURL     string
	ExistingURL string
}

func (e *DuplicateDiscussionError) Error() string {
	return fmt.Sprintf("discussion was not created for %s - an existing discussion was found at %s",
		e.PostURL, e.ExistingURL)
}

// Orchestrator decides whether a post gets a new discussion and creates it.
// A run submits at most one creation request, and only when no existing
// discussion was found.
type Orchestrator struct {
	Finder  *Finder
	Creator *Creator
	Repo    models.Repo

	// Now defaults to time.Now.
	Now func() time.Time
	// OnTransition, when set, observes every state change of a run.
	OnTransition func(post models.Post, from, to State)
}

type runState struct {
	o     *Orchestrator
	post  models.Post
	state State
}

func (r *runState) to(next State) {
	if r.o.OnTransition != nil {
		r.o.OnTransition(r.post, r.state, next)
	}
	r.state = next
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Run checks for an existing discussion and, if there is none, creates one.
func (o *Orchestrator) Run(ctx context.Context, post models.Post) (*models.CreatedDiscussion, error) {
	run := &runState{o: o, post: post, state: StateChecking}

	req, err := o.check(ctx, run)
	if err != nil {
		return nil, err
	}

	run.to(StateCreating)
	created, err := o.Creator.Submit(ctx, req)
	if err != nil {
		run.to(StateFailed)
		return nil, err
	}
	run.to(StateDone)
	return created, nil
}

// Plan performs the same checks as Run and returns the request Run would
// submit, without submitting it.
func (o *Orchestrator) Plan(ctx context.Context, post models.Post) (models.CreationRequest, error) {
	run := &runState{o: o, post: post, state: StateChecking}

	req, err := o.check(ctx, run)
	if err != nil {
		return models.CreationRequest{}, err
	}
	run.to(StateDone)
	return req, nil
}

// check runs the existing-discussion scan and request preparation side by
// side. Both only read, so the prepared request is simply dropped when a
// duplicate turns up.
func (o *Orchestrator) check(ctx context.Context, run *runState) (models.CreationRequest, error) {
	var (
		existingURL string
		found       bool
		findErr     error
		req         models.CreationRequest
		prepareErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		existingURL, found, findErr = o.Finder.FindExisting(ctx, o.Repo, run.post, o.now())
		return findErr
	})
	g.Go(func() error {
		req, prepareErr = o.Creator.Prepare(ctx, o.Repo, run.post)
		return prepareErr
	})
	// Both results are inspected below; the scan outcome takes precedence.
	_ = g.Wait()

	switch {
	case findErr != nil:
		run.to(StateFailed)
		return models.CreationRequest{}, findErr
	case found:
		run.to(StateAborted)
		return models.CreationRequest{}, &DuplicateDiscussionError{
			PostURL:     run.post.URL.String(),
			ExistingURL: existingURL,
		}
	case prepareErr != nil:
		run.to(StateFailed)
		return models.CreationRequest{}, prepareErr
	}
	return req, nil
}

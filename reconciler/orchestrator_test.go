package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"giscus-autogen/github"
	"giscus-autogen/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transitions struct {
	mu   sync.Mutex
	seen []State
}

func (tr *transitions) hook(_ models.Post, from, to State) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.seen) == 0 {
		tr.seen = append(tr.seen, from)
	}
	tr.seen = append(tr.seen, to)
}

func newOrchestrator(lister DiscussionLister, dir *fakeDirectory, poster *fakePoster, tr *transitions) *Orchestrator {
	return &Orchestrator{
		Finder:       &Finder{Lister: lister, MatchOn: models.MatchByPath},
		Creator:      &Creator{Repositories: dir, Categories: dir, Poster: poster, Category: "Blogs"},
		Repo:         testRepo,
		Now:          func() time.Time { return testNow },
		OnTransition: tr.hook,
	}
}

func okDirectory() *fakeDirectory {
	return &fakeDirectory{repoID: "R_1", categories: map[string]string{"Blogs": "DIC_blogs"}}
}

func TestRunCreatesDiscussion(t *testing.T) {
	poster := &fakePoster{}
	tr := &transitions{}
	o := newOrchestrator(&fakeLister{}, okDirectory(), poster, tr)

	created, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "X", "Hello world"))
	require.NoError(t, err)
	assert.Equal(t, "/posts/x", created.Title)
	assert.EqualValues(t, 1, poster.calls.Load())
	assert.Equal(t, models.CreationRequest{
		RepositoryID: "R_1",
		CategoryID:   "DIC_blogs",
		Title:        "/posts/x",
		Body:         "Hello world\n\nhttps://example.com/posts/x",
	}, poster.last)
	assert.Equal(t, []State{StateChecking, StateCreating, StateDone}, tr.seen)
}

func TestRunAbortsOnDuplicate(t *testing.T) {
	lister := &fakeLister{records: []models.DiscussionRecord{
		{Title: "/posts/x", CreatedAt: testNow.Add(-48 * time.Hour), URL: "https://github.com/octo/blog/discussions/7"},
	}}
	poster := &fakePoster{}
	tr := &transitions{}
	o := newOrchestrator(lister, okDirectory(), poster, tr)

	created, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", "Hello world"))
	assert.Nil(t, created)
	var dup *DuplicateDiscussionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "https://github.com/octo/blog/discussions/7", dup.ExistingURL)
	assert.Equal(t, "https://example.com/posts/x", dup.PostURL)
	assert.Zero(t, poster.calls.Load(), "creation must never be attempted for a duplicate")
	assert.Equal(t, []State{StateChecking, StateAborted}, tr.seen)
}

func TestRunCreatesWhenMatchIsOutsideWindow(t *testing.T) {
	lister := &fakeLister{records: []models.DiscussionRecord{
		{Title: "/posts/x", CreatedAt: testNow.Add(-LookbackWindow - time.Second), URL: "https://d/old"},
	}}
	poster := &fakePoster{}
	o := newOrchestrator(lister, okDirectory(), poster, &transitions{})

	_, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", ""))
	require.NoError(t, err)
	assert.EqualValues(t, 1, poster.calls.Load())
}

func TestRunPropagatesScanFailure(t *testing.T) {
	scanErr := &github.TransportError{Op: "list recent discussions", Err: errors.New("i/o timeout")}
	poster := &fakePoster{}
	tr := &transitions{}
	o := newOrchestrator(&fakeLister{err: scanErr}, okDirectory(), poster, tr)

	_, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", ""))
	var terr *github.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, poster.calls.Load())
	assert.Equal(t, []State{StateChecking, StateFailed}, tr.seen)
}

func TestRunScanFailureTakesPrecedence(t *testing.T) {
	scanErr := &github.QueryError{Op: "list recent discussions"}
	dir := &fakeDirectory{repoErr: errors.New("repo lookup failed")}
	o := newOrchestrator(&fakeLister{err: scanErr}, dir, &fakePoster{}, &transitions{})

	_, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", ""))
	var qerr *github.QueryError
	assert.ErrorAs(t, err, &qerr)
}

func TestRunDuplicateTakesPrecedenceOverPrepareFailure(t *testing.T) {
	lister := &fakeLister{records: []models.DiscussionRecord{
		{Title: "/posts/x", CreatedAt: testNow, URL: "https://d/1"},
	}}
	dir := &fakeDirectory{repoID: "R_1", catErr: &github.CategoryNotFoundError{Category: "Blogs"}}
	o := newOrchestrator(lister, dir, &fakePoster{}, &transitions{})

	_, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", ""))
	var dup *DuplicateDiscussionError
	assert.ErrorAs(t, err, &dup)
}

func TestRunPrepareFailure(t *testing.T) {
	dir := &fakeDirectory{repoID: "R_1", catErr: &github.CategoryNotFoundError{Category: "Blogs"}}
	poster := &fakePoster{}
	tr := &transitions{}
	o := newOrchestrator(&fakeLister{}, dir, poster, tr)

	_, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", ""))
	var nf *github.CategoryNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Zero(t, poster.calls.Load())
	assert.Equal(t, []State{StateChecking, StateFailed}, tr.seen)
}

func TestRunSubmitFailure(t *testing.T) {
	poster := &fakePoster{err: &github.CreationError{Errors: []github.GraphQLError{{Message: "nope"}}}}
	tr := &transitions{}
	o := newOrchestrator(&fakeLister{}, okDirectory(), poster, tr)

	_, err := o.Run(context.Background(), mustPost(t, "https://example.com/posts/x", "", ""))
	var cerr *github.CreationError
	require.ErrorAs(t, err, &cerr)
	assert.EqualValues(t, 1, poster.calls.Load())
	assert.Equal(t, []State{StateChecking, StateCreating, StateFailed}, tr.seen)
}

func TestPlanNeverSubmits(t *testing.T) {
	poster := &fakePoster{}
	tr := &transitions{}
	o := newOrchestrator(&fakeLister{}, okDirectory(), poster, tr)

	req, err := o.Plan(context.Background(), mustPost(t, "https://example.com/posts/x", "", "Hello world"))
	require.NoError(t, err)
	assert.Equal(t, "/posts/x", req.Title)
	assert.Zero(t, poster.calls.Load())
	assert.Equal(t, []State{StateChecking, StateDone}, tr.seen)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "checking", StateChecking.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "state(42)", State(42).String())
}

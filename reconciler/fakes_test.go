package reconciler

import (
	"context"
	"sync"
	"sync/atomic"

	"giscus-autogen/models"
)

type fakeLister struct {
	records []models.DiscussionRecord
	err     error
}

func (f *fakeLister) RecentDiscussions(ctx context.Context, owner, name string) ([]models.DiscussionRecord, error) {
	return f.records, f.err
}

type fakeDirectory struct {
	repoID     string
	repoErr    error
	categories map[string]string
	catErr     error

	mu       sync.Mutex
	lookedUp []string
}

func (f *fakeDirectory) ResolveRepositoryID(ctx context.Context, owner, name string) (string, error) {
	f.record("repo:" + owner + "/" + name)
	return f.repoID, f.repoErr
}

func (f *fakeDirectory) ResolveCategoryID(ctx context.Context, owner, name, category string) (string, error) {
	f.record("category:" + category)
	if f.catErr != nil {
		return "", f.catErr
	}
	return f.categories[category], nil
}

func (f *fakeDirectory) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookedUp = append(f.lookedUp, s)
}

type fakePoster struct {
	calls    atomic.Int32
	last     models.CreationRequest
	response *models.CreatedDiscussion
	err      error
}

func (f *fakePoster) CreateDiscussion(ctx context.Context, req models.CreationRequest) (*models.CreatedDiscussion, error) {
	f.calls.Add(1)
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &models.CreatedDiscussion{
		ID:    "D_new",
		Title: req.Title,
		URL:   "https://github.com/octo/blog/discussions/100",
	}, nil
}

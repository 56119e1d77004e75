package reconciler

import (
	"context"
	"fmt"
	"log"

	"giscus-autogen/github"
	"giscus-autogen/models"

	"golang.org/x/sync/errgroup"
)

// RepositoryDirectory resolves a repository's opaque id.
type RepositoryDirectory interface {
	ResolveRepositoryID(ctx context.Context, owner, name string) (string, error)
}

// CategoryDirectory resolves a discussion category's opaque id by name.
type CategoryDirectory interface {
	ResolveCategoryID(ctx context.Context, owner, name, category string) (string, error)
}

// DiscussionPoster sends the creation mutation.
type DiscussionPoster interface {
	CreateDiscussion(ctx context.Context, req models.CreationRequest) (*models.CreatedDiscussion, error)
}

// Creator builds and submits discussion creation requests.
type Creator struct {
	Repositories RepositoryDirectory
	Categories   CategoryDirectory
	Poster       DiscussionPoster
	Category     string
}

// Prepare resolves the repository and category ids concurrently and composes
// the request for post. It performs reads only.
func (c *Creator) Prepare(ctx context.Context, repo models.Repo, post models.Post) (models.CreationRequest, error) {
	var repoID, categoryID string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := c.Repositories.ResolveRepositoryID(gctx, repo.Owner, repo.Name)
		if err != nil {
			return err
		}
		repoID = id
		return nil
	})
	g.Go(func() error {
		id, err := c.Categories.ResolveCategoryID(gctx, repo.Owner, repo.Name, c.Category)
		if err != nil {
			return err
		}
		categoryID = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.CreationRequest{}, fmt.Errorf("prepare discussion for %s: %w", post.URL, err)
	}

	return BuildRequest(repoID, categoryID, post), nil
}

// BuildRequest composes a creation request: the title is the post's URL path,
// the body its description and URL.
func BuildRequest(repoID, categoryID string, post models.Post) models.CreationRequest {
	return models.CreationRequest{
		RepositoryID: repoID,
		CategoryID:   categoryID,
		Title:        post.Path(),
		Body:         post.Body(),
	}
}

// Submit sends req exactly once and checks that the API echoed the title back.
func (c *Creator) Submit(ctx context.Context, req models.CreationRequest) (*models.CreatedDiscussion, error) {
	created, err := c.Poster.CreateDiscussion(ctx, req)
	if err != nil {
		return nil, err
	}
	if created.Title != req.Title {
		return nil, fmt.Errorf("discussion created at %s with title %q, expected %q: %w",
			created.URL, created.Title, req.Title, github.ErrMalformedResponse)
	}

	log.Printf("Successfully created new discussion at %s (%s)", created.URL, created.Title)
	return created, nil
}

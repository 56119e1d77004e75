package reconciler

import (
	"context"
	"testing"

	"giscus-autogen/github"
	"giscus-autogen/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRepo = models.Repo{Owner: "octo", Name: "blog"}

func TestBuildRequest(t *testing.T) {
	post := mustPost(t, "https://example.com/posts/x", "", "Hello world")

	req := BuildRequest("R_1", "DIC_1", post)
	assert.Equal(t, "Hello world\n\nhttps://example.com/posts/x", req.Body)
	assert.Equal(t, "/posts/x", req.Title)
	assert.Equal(t, "R_1", req.RepositoryID)
	assert.Equal(t, "DIC_1", req.CategoryID)
}

func TestBuildRequestWithoutDescription(t *testing.T) {
	post := mustPost(t, "https://example.com/posts/x", "", "")

	req := BuildRequest("R_1", "DIC_1", post)
	assert.Equal(t, "https://example.com/posts/x", req.Body)
}

func TestPrepareResolvesBothIDs(t *testing.T) {
	dir := &fakeDirectory{repoID: "R_1", categories: map[string]string{"Blogs": "DIC_blogs"}}
	c := &Creator{Repositories: dir, Categories: dir, Poster: &fakePoster{}, Category: "Blogs"}

	req, err := c.Prepare(context.Background(), testRepo, mustPost(t, "https://example.com/posts/x", "", "Hello world"))
	require.NoError(t, err)
	assert.Equal(t, "R_1", req.RepositoryID)
	assert.Equal(t, "DIC_blogs", req.CategoryID)
	assert.ElementsMatch(t, []string{"repo:octo/blog", "category:Blogs"}, dir.lookedUp)
}

func TestPrepareCategoryNotFound(t *testing.T) {
	notFound := &github.CategoryNotFoundError{Category: "Blogs", Owner: "octo", Name: "blog", PageSize: 20}
	dir := &fakeDirectory{repoID: "R_1", catErr: notFound}
	c := &Creator{Repositories: dir, Categories: dir, Poster: &fakePoster{}, Category: "Blogs"}

	_, err := c.Prepare(context.Background(), testRepo, mustPost(t, "https://example.com/posts/x", "", ""))
	var nf *github.CategoryNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSubmitTitleMismatch(t *testing.T) {
	poster := &fakePoster{response: &models.CreatedDiscussion{ID: "D_1", Title: "something else", URL: "https://d/1"}}
	c := &Creator{Poster: poster}

	_, err := c.Submit(context.Background(), models.CreationRequest{Title: "/posts/x"})
	assert.ErrorIs(t, err, github.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "https://d/1")
	assert.EqualValues(t, 1, poster.calls.Load())
}

package github

import (
	"context"
	"fmt"
)

// CategoryPageSize is how many discussion categories are fetched. Only this
// first page is searched; a repository with more categories may report
// CategoryNotFoundError for a category that exists further down.
const CategoryPageSize = 20

const categoriesQuery = `query($owner: String!, $name: String!, $first: Int!) {
  repository(owner: $owner, name: $name) {
    discussionCategories(first: $first) {
      nodes {
        id
        name
      }
    }
  }
}`

type categoriesData struct {
	Repository *struct {
		DiscussionCategories struct {
			Nodes []*struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"discussionCategories"`
	} `json:"repository"`
}

// ResolveCategoryID returns the id of the first category on the first page
// whose name equals category exactly (case-sensitive).
func (c *Client) ResolveCategoryID(ctx context.Context, owner, name, category string) (string, error) {
	op := fmt.Sprintf("resolve discussion category %q of %s/%s", category, owner, name)

	resp, err := c.graphQL(ctx, op, categoriesQuery, map[string]any{
		"owner": owner,
		"name":  name,
		"first": CategoryPageSize,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Errors) > 0 || !resp.hasData() {
		return "", &QueryError{Op: op, Errors: resp.Errors}
	}

	var data categoriesData
	if err := resp.decodeData(op, &data); err != nil {
		return "", err
	}
	if data.Repository == nil {
		return "", fmt.Errorf("%s: %w: \"repository\" is null", op, ErrMalformedResponse)
	}

	for _, node := range data.Repository.DiscussionCategories.Nodes {
		if node == nil || node.Name != category {
			continue
		}
		if node.ID == "" {
			return "", fmt.Errorf("%s: %w: category has no id", op, ErrMalformedResponse)
		}
		return node.ID, nil
	}

	return "", &CategoryNotFoundError{
		Category: category,
		Owner:    owner,
		Name:     name,
		PageSize: CategoryPageSize,
	}
}

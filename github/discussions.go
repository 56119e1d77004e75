package github

import (
	"context"
	"fmt"
	"time"

	"giscus-autogen/models"
)

// DiscussionPageSize is how many of the newest discussions are listed.
const DiscussionPageSize = 50

const recentDiscussionsQuery = `query($owner: String!, $name: String!, $first: Int!) {
  repository(owner: $owner, name: $name) {
    discussions(first: $first, orderBy: {field: CREATED_AT, direction: DESC}) {
      nodes {
        id
        title
        createdAt
        url
      }
    }
  }
}`

const createDiscussionMutation = `mutation($input: CreateDiscussionInput!) {
  createDiscussion(input: $input) {
    discussion {
      id
      title
      createdAt
      url
    }
  }
}`

type discussionNode struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	URL       string `json:"url"`
}

type recentDiscussionsData struct {
	Repository *struct {
		Discussions struct {
			Nodes []*discussionNode `json:"nodes"`
		} `json:"discussions"`
	} `json:"repository"`
}

type createDiscussionData struct {
	CreateDiscussion *struct {
		Discussion *discussionNode `json:"discussion"`
	} `json:"createDiscussion"`
}

// RecentDiscussions lists up to DiscussionPageSize discussions of owner/name,
// newest first, in the order the API returned them.
func (c *Client) RecentDiscussions(ctx context.Context, owner, name string) ([]models.DiscussionRecord, error) {
	op := fmt.Sprintf("list recent discussions of %s/%s", owner, name)

	resp, err := c.graphQL(ctx, op, recentDiscussionsQuery, map[string]any{
		"owner": owner,
		"name":  name,
		"first": DiscussionPageSize,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 || !resp.hasData() {
		return nil, &QueryError{Op: op, Errors: resp.Errors}
	}

	var data recentDiscussionsData
	if err := resp.decodeData(op, &data); err != nil {
		return nil, err
	}
	if data.Repository == nil {
		return nil, &QueryError{Op: op}
	}

	records := make([]models.DiscussionRecord, 0, len(data.Repository.Discussions.Nodes))
	for _, node := range data.Repository.Discussions.Nodes {
		if node == nil {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, node.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: createdAt %q of %s: %v", op, ErrMalformedResponse, node.CreatedAt, node.ID, err)
		}
		records = append(records, models.DiscussionRecord{
			ID:        node.ID,
			Title:     node.Title,
			CreatedAt: createdAt,
			URL:       node.URL,
		})
	}
	return records, nil
}

// CreateDiscussion sends the createDiscussion mutation once.
func (c *Client) CreateDiscussion(ctx context.Context, req models.CreationRequest) (*models.CreatedDiscussion, error) {
	op := fmt.Sprintf("create discussion %q", req.Title)

	resp, err := c.graphQL(ctx, op, createDiscussionMutation, map[string]any{
		"input": map[string]any{
			"repositoryId": req.RepositoryID,
			"categoryId":   req.CategoryID,
			"title":        req.Title,
			"body":         req.Body,
		},
	})
	if err != nil {
		return nil, err
	}
	if !resp.hasData() {
		return nil, &CreationError{Errors: resp.Errors}
	}

	var data createDiscussionData
	if err := resp.decodeData(op, &data); err != nil {
		return nil, err
	}
	if data.CreateDiscussion == nil || data.CreateDiscussion.Discussion == nil {
		return nil, &CreationError{Errors: resp.Errors}
	}

	node := data.CreateDiscussion.Discussion
	created := &models.CreatedDiscussion{
		ID:    node.ID,
		Title: node.Title,
		URL:   node.URL,
	}
	// An unreadable createdAt leaves CreatedAt zero.
	if t, err := time.Parse(time.RFC3339, node.CreatedAt); err == nil {
		created.CreatedAt = t
	}
	return created, nil
}

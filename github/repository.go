package github

import (
	"context"
	"fmt"
)

// ResolveRepositoryID looks up owner/name over REST and returns its GraphQL
// node id. One request, no retries.
func (c *Client) ResolveRepositoryID(ctx context.Context, owner, name string) (string, error) {
	op := fmt.Sprintf("resolve repository id of %s/%s", owner, name)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &TransportError{Op: op, Err: err}
	}

	repo, resp, err := c.rest.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", restError(op, resp, err)
	}

	id := repo.GetNodeID()
	if id == "" {
		return "", fmt.Errorf("%s: %w: \"node_id\" is missing", op, ErrMalformedResponse)
	}
	return id, nil
}

package models

import "time"

// Repo names a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// DiscussionRecord is one entry of the recent-discussions listing.
type DiscussionRecord struct {
	ID        string
	Title     string
	CreatedAt time.Time
	URL       string
}

// CreationRequest is everything the createDiscussion mutation needs.
// Repository and category ids are opaque values from the API.
type CreationRequest struct {
	RepositoryID string
	CategoryID   string
	Title        string
	Body         string
}

// CreatedDiscussion is the payload returned by a successful creation.
type CreatedDiscussion struct {
	ID        string
	Title     string
	URL       string
	CreatedAt time.Time
}

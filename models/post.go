package models

import (
	"fmt"
	"net/url"
	"time"
)

// FeedEntry is the newest item of the site feed.
type FeedEntry struct {
	URL       *url.URL
	Published time.Time // zero when the feed item carries no date
}

// Post is a published blog post as seen by the feed and the page scraper.
// It is built once per run and never mutated.
type Post struct {
	URL         *url.URL
	Title       string // page <title>, empty when the page has none
	Description string // meta description, empty when absent
}

// NewPost validates that rawURL is absolute before building the Post.
func NewPost(rawURL, title, description string) (Post, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Post{}, fmt.Errorf("parse post url %q: %w", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return Post{}, fmt.Errorf("post url %q is not absolute", rawURL)
	}
	return Post{URL: u, Title: title, Description: description}, nil
}

// Path is the URL path used as the discussion title. The root of a site is "/".
func (p Post) Path() string {
	if p.URL == nil {
		return ""
	}
	path := p.URL.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// Body is the discussion body: the description, a blank line, then the URL.
// Without a description the body is just the URL.
func (p Post) Body() string {
	if p.Description == "" {
		return p.URL.String()
	}
	return p.Description + "\n\n" + p.URL.String()
}

// MatchKey selects which post field is compared against existing discussion titles.
type MatchKey string

const (
	MatchByPath  MatchKey = "path"
	MatchByTitle MatchKey = "title"
)

// ParseMatchKey accepts "path" or "title"; empty defaults to path.
func ParseMatchKey(s string) (MatchKey, error) {
	switch MatchKey(s) {
	case "", MatchByPath:
		return MatchByPath, nil
	case MatchByTitle:
		return MatchByTitle, nil
	default:
		return "", fmt.Errorf("unknown match key %q (want %q or %q)", s, MatchByPath, MatchByTitle)
	}
}

// Key returns the string compared against discussion titles. Title matching
// falls back to the path when the page had no title.
func (p Post) Key(k MatchKey) string {
	if k == MatchByTitle && p.Title != "" {
		return p.Title
	}
	return p.Path()
}

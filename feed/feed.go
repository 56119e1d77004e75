package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"giscus-autogen/models"
	"giscus-autogen/utils"

	"github.com/mmcdole/gofeed"
)

var (
	ErrEmptyFeed = errors.New("no posts found in feed")
	ErrNoLink    = errors.New("no link provided with first post")
)

// Source reads the site's syndication feed (RSS, Atom or JSON Feed).
type Source struct {
	client    *http.Client
	feedURL   string
	userAgent string
}

// NewSource creates a Source for feedURL using client for the HTTP fetch.
func NewSource(client *http.Client, feedURL, userAgent string) *Source {
	return &Source{
		client:    client,
		feedURL:   feedURL,
		userAgent: userAgent,
	}
}

// Latest returns the absolute link and publication time of the first entry
// in the feed.
func (s *Source) Latest(ctx context.Context) (models.FeedEntry, error) {
	body, err := utils.Fetch(ctx, s.client, s.feedURL, s.userAgent)
	if err != nil {
		return models.FeedEntry{}, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return models.FeedEntry{}, fmt.Errorf("unable to parse feed %s: %w", s.feedURL, err)
	}
	if len(parsed.Items) == 0 || parsed.Items[0] == nil {
		return models.FeedEntry{}, fmt.Errorf("%s: %w", s.feedURL, ErrEmptyFeed)
	}

	item := parsed.Items[0]
	link := entryLink(item)
	if link == "" {
		return models.FeedEntry{}, fmt.Errorf("%s: %w", s.feedURL, ErrNoLink)
	}

	u, err := url.Parse(link)
	if err != nil {
		return models.FeedEntry{}, fmt.Errorf("invalid post link %q: %w", link, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return models.FeedEntry{}, fmt.Errorf("post link %q is not an absolute URL", link)
	}
	return models.FeedEntry{URL: u, Published: entryTime(item)}, nil
}

// entryTime prefers the published date and falls back to the updated date.
func entryTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

func entryLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, l := range item.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

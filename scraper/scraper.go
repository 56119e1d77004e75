package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"giscus-autogen/models"
	"giscus-autogen/utils"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoDescription is returned when a page has no description meta tag and no
// fallback was allowed or possible.
var ErrNoDescription = errors.New("could not find 'meta' element with name 'description'")

// Scraper extracts the title and description of a post page.
type Scraper struct {
	client          *http.Client
	userAgent       string
	excerptFallback bool
}

// NewScraper creates a Scraper. With excerptFallback set, pages without a
// description meta tag are described by their readability excerpt instead.
func NewScraper(client *http.Client, userAgent string, excerptFallback bool) *Scraper {
	return &Scraper{
		client:          client,
		userAgent:       userAgent,
		excerptFallback: excerptFallback,
	}
}

// Extract fetches pageURL and builds the Post for it.
func (s *Scraper) Extract(ctx context.Context, pageURL *url.URL) (models.Post, error) {
	body, err := utils.Fetch(ctx, s.client, pageURL.String(), s.userAgent)
	if err != nil {
		return models.Post{}, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return models.Post{}, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	title, description, hasDescription := pageMeta(doc)
	if !hasDescription {
		if !s.excerptFallback {
			return models.Post{}, fmt.Errorf("%s: %w", pageURL, ErrNoDescription)
		}
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil || strings.TrimSpace(article.Excerpt) == "" {
			return models.Post{}, fmt.Errorf("%s: %w", pageURL, ErrNoDescription)
		}
		description = strings.TrimSpace(article.Excerpt)
	}

	return models.Post{
		URL:         pageURL,
		Title:       title,
		Description: description,
	}, nil
}

// pageMeta returns the text of the first <title> and the content of the first
// <meta name="description">.
func pageMeta(doc *html.Node) (title, description string, hasDescription bool) {
	var titleFound bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if !titleFound {
					titleFound = true
					title = strings.TrimSpace(textContent(n))
				}
			case atom.Meta:
				if !hasDescription && attr(n, "name") == "description" {
					description, hasDescription = attrOK(n, "content")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, description, hasDescription
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		} else {
			sb.WriteString(textContent(c))
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

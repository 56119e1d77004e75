package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"

	"giscus-autogen/models"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/time/rate"
)

const (
	DefaultRESTURL    = "https://api.github.com"
	DefaultGraphQLURL = "https://api.github.com/graphql"

	maxResponseBytes = 4 << 20
	maxErrorSnippet  = 512
)

// Client talks to the GitHub REST and GraphQL APIs. Every call is a single
// attempt bounded by the timeout of the underlying http.Client.
type Client struct {
	httpClient *http.Client
	rest       *gogithub.Client
	restURL    string
	graphqlURL string
	token      string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient builds a client from the GitHub section of the config. httpClient
// carries the request timeout; nil uses http.DefaultClient.
func NewClient(cfg models.GitHubConfig, httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	restURL := cfg.RESTURL
	if restURL == "" {
		restURL = DefaultRESTURL
	}
	graphqlURL := cfg.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = DefaultGraphQLURL
	}
	restURL = strings.TrimRight(restURL, "/")

	rest := gogithub.NewClient(httpClient)
	if cfg.Token != "" {
		rest = rest.WithAuthToken(cfg.Token)
	}
	if userAgent != "" {
		rest.UserAgent = userAgent
	}
	if base, err := url.Parse(restURL + "/"); err == nil {
		rest.BaseURL = base
	} else {
		log.Printf("Invalid GitHub REST URL %q, using %s: %v", restURL, DefaultRESTURL, err)
	}

	return &Client{
		httpClient: httpClient,
		rest:       rest,
		restURL:    restURL,
		graphqlURL: graphqlURL,
		token:      cfg.Token,
		userAgent:  userAgent,
		limiter:    newLimiter(cfg.RequestsPerSecond),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps)))
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", snippet(body))}
	}
	return body, nil
}

// restError classifies an error returned by the REST client. A 2xx response
// that could not be decoded is malformed; anything else is a transport failure.
func restError(op string, resp *gogithub.Response, err error) error {
	if resp == nil || resp.Response == nil {
		log.Printf("GitHub REST %s failed: %v", op, err)
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	log.Printf("GitHub REST %s failed: HTTP %d", op, resp.StatusCode)
	return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

func (r *graphQLResponse) hasData() bool {
	return len(r.Data) > 0 && !bytes.Equal(bytes.TrimSpace(r.Data), []byte("null"))
}

// decodeData unmarshals the data member into out.
func (r *graphQLResponse) decodeData(op string, out any) error {
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}

// graphQL posts a query or mutation. Query-level errors are left in the
// response for the caller to interpret.
func (c *Client) graphQL(ctx context.Context, op, query string, vars map[string]any) (*graphQLResponse, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	log.Printf("GitHub GraphQL %s: POST %s", op, c.graphqlURL)
	body, err := c.do(op, req)
	if err != nil {
		log.Printf("GitHub GraphQL %s failed: %v", op, err)
		return nil, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	if len(resp.Errors) > 0 {
		log.Printf("GitHub GraphQL %s returned %d error(s): %s", op, len(resp.Errors), joinErrors(resp.Errors))
	}
	return &resp, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	if s == "" {
		s = "empty response body"
	}
	return s
}

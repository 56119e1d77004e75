package github

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is wrapped when a successful response lacks an expected
// field or has it in the wrong shape.
var ErrMalformedResponse = errors.New("malformed response")

// TransportError is a network, timeout or HTTP-level failure of one call.
type TransportError struct {
	Op         string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message   string            `json:"message"`
	Type      string            `json:"type,omitempty"`
	Path      []any             `json:"path,omitempty"`
	Locations []GraphQLLocation `json:"locations,omitempty"`
}

type GraphQLLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (e GraphQLError) String() string {
	if e.Type != "" {
		return e.Type + ": " + e.Message
	}
	return e.Message
}

func joinErrors(errs []GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; ")
}

// QueryError means the API answered but reported errors instead of data, or
// returned no data at all.
type QueryError struct {
	Op     string
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s: query returned no data", e.Op)
	}
	return fmt.Sprintf("%s: query failed: %s", e.Op, joinErrors(e.Errors))
}

// CategoryNotFoundError is returned when the category is absent from the first
// page of discussion categories. Later pages are never requested.
type CategoryNotFoundError struct {
	Category string
	Owner    string
	Name     string
	PageSize int
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %q was not present in the first %d discussion categories of %s/%s",
		e.Category, e.PageSize, e.Owner, e.Name)
}

// CreationError means the createDiscussion mutation returned no discussion.
type CreationError struct {
	Errors []GraphQLError
}

func (e *CreationError) Error() string {
	if len(e.Errors) == 0 {
		return "discussion could not be created: no discussion in response"
	}
	return "discussion could not be created: " + joinErrors(e.Errors)
}

package backend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
)

// StatusError is returned when the back-end answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether the status is transient.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Unwrap maps the status to an application error so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return apperrors.ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidRequest
	case e.StatusCode >= 500:
		return apperrors.ErrBackendUnavailable
	default:
		return apperrors.ErrBackendQuery
	}
}

// GraphQLErrorEntry is one entry of a GraphQL "errors" array.
type GraphQLErrorEntry struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLError is returned when a query response carries errors.
type GraphQLError struct {
	Errors []GraphQLErrorEntry
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		msgs = append(msgs, entry.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// IsRetryable is always false: the query itself was rejected.
func (e *GraphQLError) IsRetryable() bool {
	return false
}

func (e *GraphQLError) Unwrap() error {
	return apperrors.ErrBackendQuery
}

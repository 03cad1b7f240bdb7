package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// APIError is an HTTP error returned by GitHub. It carries the status code so
// callers can choose the response they show to users.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
	err        error
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("github: %s (HTTP %d): %s", e.Message, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("github: %s (HTTP %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a GitHub 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func wrapError(op string, resp *github.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	msg := op
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		if ghErr.Message != "" {
			msg = op + ": " + ghErr.Message
		}
	}

	if status == 0 {
		return fmt.Errorf("github: %s: %w", op, err)
	}
	return &APIError{StatusCode: status, Message: msg, Body: err.Error(), err: err}
}

func retryable(err error) bool {
	status := StatusCode(err)
	if status == 0 {
		return true
	}
	return status >= http.StatusInternalServerError
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/github"
)

// Error is an outward-facing failure.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"detail"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func internalError() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "An error occurred internally on the server"}
}

// githubError maps a context assembly failure to a response. Upstream
// statuses at or above 500 are reported as 500.
func githubError(repo ai.RepoInfo, err error) *Error {
	name := repo.FullName()
	status := github.StatusCode(err)

	switch status {
	case 0:
		return &Error{Status: http.StatusInternalServerError, Message: "Failed to fetch repository context"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Status: http.StatusForbidden, Message: fmt.Sprintf("Repository '%s' is private or access is forbidden.", name)}
	case http.StatusNotFound:
		return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("Repository '%s' not found. Please check the owner and repository name.", name)}
	case http.StatusTooManyRequests:
		return &Error{Status: http.StatusTooManyRequests, Message: "Too many requests to GitHub. Please try again later."}
	}

	if status > http.StatusInternalServerError {
		status = http.StatusInternalServerError
	}
	return &Error{Status: status, Message: fmt.Sprintf("Error accessing repository '%s' (HTTP %d)", name, github.StatusCode(err))}
}

// userFacingError rewrites known model failures into short messages and
// passes anything else through.
func userFacingError(msg string) string {
	if msg == "" {
		return "Something went wrong. Please try again."
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "prompt is too long"),
		strings.Contains(lower, "too long") && strings.Contains(lower, "token"):
		return "This repository has too much content to analyze (over the model's limit). Try a smaller repo or a specific branch."
	case strings.Contains(lower, "connection") && strings.Contains(lower, "failed"):
		return "Could not reach the AI service. Check your connection or try again in a moment."
	case strings.Contains(lower, "rate limit"), strings.Contains(msg, "429"):
		return "Rate limit exceeded. Please try again later."
	}
	return msg
}

func writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *Error) {
	writeJSON(w, err, err.Status)
}

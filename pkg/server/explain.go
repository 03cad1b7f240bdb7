package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/cache"
	"github.com/saint0x/repoexplain/pkg/repocontext"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)

// Response is the body of a successful explanation.
type Response struct {
	Explanation string `json:"explanation"`
	Repo        string `json:"repo"`
	Timestamp   string `json:"timestamp"`
	Cache       bool   `json:"cache"`
}

type explainRequest struct {
	repo         ai.RepoInfo
	ref          string
	token        string
	instructions string
	status       func(stage string) error
}

func (s *Server) parseRequest(r *http.Request) (*explainRequest, *Error) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	if !namePattern.MatchString(owner) || !namePattern.MatchString(repo) {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Invalid repository owner or name."}
	}

	token := r.Header.Get("X-GitHub-Token")
	if token == "" {
		token = s.token
	}

	return &explainRequest{
		repo:         ai.RepoInfo{Owner: owner, Name: repo},
		ref:          r.URL.Query().Get("ref"),
		token:        token,
		instructions: r.URL.Query().Get("instructions"),
	}, nil
}

// cacheable reports whether req may be answered from or stored in the
// cache. Entries are keyed by owner/repo only, so pinned refs and custom
// instructions always go to the model.
func (s *Server) cacheable(req *explainRequest) bool {
	return s.cache != nil && req.ref == "" && req.instructions == ""
}

// explain runs the whole pipeline for one request.
func (s *Server) explain(ctx context.Context, req *explainRequest) (*Response, *Error) {
	name := req.repo.FullName()

	source, err := s.sources(req.token)
	if err != nil {
		s.logger.Error("Failed to create GitHub client: %v", err)
		return nil, internalError()
	}

	assembler := repocontext.New(source, s.explainer, s.limits, s.logger)
	result, err := assembler.Assemble(ctx, req.repo.Owner, req.repo.Name, repocontext.Options{
		Ref:    req.ref,
		Status: req.status,
	})
	if err != nil {
		s.logger.Error("Failed to assemble context for %s: %v", name, err)
		return nil, githubError(req.repo, err)
	}

	fingerprint := result.Fingerprint()
	if s.cacheable(req) {
		entry, err := s.cache.Get(ctx, req.repo.Owner, req.repo.Name, s.now())
		switch {
		case err == nil && entry.DirectoryHash == fingerprint:
			s.logger.Success("Serving cached explanation for %s", name)
			return s.response(req.repo, entry.Explanation, true), nil
		case err == nil:
			s.logger.Info("Cached explanation for %s is stale", name)
		case !errors.Is(err, cache.ErrNotFound):
			s.logger.Warning("Cache lookup failed for %s: %v", name, err)
		}
	}

	text, err := s.explainer.Explain(ctx, req.repo, result.Document, req.instructions, func(stage string) {
		if req.status == nil {
			return
		}
		if err := req.status(stage); err != nil {
			s.logger.Warning("Status update failed at %s: %v", stage, err)
		}
	})
	if err != nil {
		s.logger.Error("Failed to explain %s: %v", name, err)
		return nil, &Error{Status: http.StatusInternalServerError, Message: userFacingError(err.Error())}
	}

	if s.cacheable(req) {
		if err := s.cache.Put(ctx, req.repo.Owner, req.repo.Name, text, fingerprint, s.now()); err != nil {
			s.logger.Warning("Failed to cache explanation for %s: %v", name, err)
		}
	}

	return s.response(req.repo, text, false), nil
}

func (s *Server) response(repo ai.RepoInfo, text string, cached bool) *Response {
	return &Response{
		Explanation: text,
		Repo:        repo.FullName(),
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Cache:       cached,
	}
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	req, apiErr := s.parseRequest(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	s.logger.Step("Explaining %s", req.repo.FullName())
	resp, apiErr := s.explain(r.Context(), req)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

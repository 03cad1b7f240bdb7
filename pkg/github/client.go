package github

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/tree"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 20 * time.Second
	defaultBackoff = 250 * time.Millisecond
	rawMediaType   = "application/vnd.github.raw"
)

// Options configures a Client. Token is optional; without it GitHub applies
// the unauthenticated rate limit.
type Options struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client handles read-only GitHub operations
type Client struct {
	client  *github.Client
	logger  *log.Logger
	timeout time.Duration
	retries int
	backoff time.Duration
}

// Tree is the recursive listing of a repository at one ref.
type Tree struct {
	Entries   []tree.Entry
	Truncated bool
	// Empty is set when GitHub answers 409 Conflict, which it does for
	// repositories without commits.
	Empty bool
}

// New creates a new GitHub client
func New(logger *log.Logger, opts Options) (*Client, error) {
	var httpClient *http.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		gh.BaseURL = u
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		client:  gh,
		logger:  logger,
		timeout: timeout,
		retries: retries,
		backoff: defaultBackoff,
	}, nil
}

// DefaultBranch gets the default branch for a repository
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var repository *github.Repository
	err := c.call(ctx, "get repository", func(ctx context.Context) (*github.Response, error) {
		r, resp, err := c.client.Repositories.Get(ctx, owner, repo)
		repository = r
		return resp, err
	})
	if err != nil {
		return "", err
	}

	branch := repository.GetDefaultBranch()
	if branch == "" {
		return "", &APIError{StatusCode: http.StatusNotFound, Message: "repository has no default branch"}
	}
	return branch, nil
}

// Tree fetches the recursive tree listing for ref.
func (c *Client) Tree(ctx context.Context, owner, repo, ref string) (*Tree, error) {
	var t *github.Tree
	err := c.call(ctx, "get tree", func(ctx context.Context) (*github.Response, error) {
		res, resp, err := c.client.Git.GetTree(ctx, owner, repo, ref, true)
		t = res
		return resp, err
	})
	if StatusCode(err) == http.StatusConflict {
		return &Tree{Empty: true}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &Tree{Truncated: t.GetTruncated()}
	for _, e := range t.Entries {
		kind := tree.File
		if e.GetType() == "tree" {
			kind = tree.Directory
		}
		out.Entries = append(out.Entries, tree.Entry{Path: e.GetPath(), Kind: kind})
	}
	return out, nil
}

// RootFiles lists the names of files at the repository root. A missing or
// empty listing is an error.
func (c *Client) RootFiles(ctx context.Context, owner, repo, ref string) ([]string, error) {
	var listing []*github.RepositoryContent
	err := c.call(ctx, "list root", func(ctx context.Context) (*github.Response, error) {
		_, dir, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, "", &github.RepositoryContentGetOptions{Ref: ref})
		listing = dir
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if len(listing) == 0 {
		return nil, fmt.Errorf("no root listing for %s/%s", owner, repo)
	}

	var names []string
	for _, item := range listing {
		if item.GetType() == "file" {
			names = append(names, item.GetName())
		}
	}
	return names, nil
}

// FileContent fetches the raw body of a single file.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	escaped := (&url.URL{Path: strings.TrimPrefix(path, "/")}).String()
	u := fmt.Sprintf("repos/%v/%v/contents/%v", owner, repo, escaped)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	var buf bytes.Buffer
	err := c.call(ctx, "get "+path, func(ctx context.Context) (*github.Response, error) {
		buf.Reset()
		req, err := c.client.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", rawMediaType)
		return c.client.Do(ctx, req, &buf)
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// call runs fn under the per-call deadline and retries network errors and
// 5xx responses.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) (*github.Response, error)) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying %s (attempt %d): %v", op, attempt+1, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, callErr := fn(callCtx)
		cancel()
		if callErr == nil {
			return nil
		}

		err = wrapError(op, resp, callErr)
		if ctx.Err() != nil || !retryable(err) {
			return err
		}
	}
	return err
}

// ParseRepoURL parses a GitHub URL or "owner/repo" into owner and repo
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	// Handle different URL formats
	repoURL = strings.TrimSuffix(strings.TrimSpace(repoURL), ".git")

	// Handle SSH URLs (git@github.com:owner/repo)
	if strings.HasPrefix(repoURL, "git@github.com:") {
		parts := strings.Split(strings.TrimPrefix(repoURL, "git@github.com:"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid SSH repository URL format")
		}
		return parts[0], parts[1], nil
	}

	// Handle HTTPS URLs
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository URL format")
	}

	return parts[0], parts[1], nil
}

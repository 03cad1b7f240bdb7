package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/cache"
	"github.com/saint0x/repoexplain/pkg/config"
	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/repocontext"
)

// Explainer suggests files to read and writes the final explanation.
type Explainer interface {
	repocontext.FileSuggester
	Explain(ctx context.Context, repo ai.RepoInfo, repoContext, instructions string, status func(stage string)) (string, error)
}

// SourceFactory returns a repository source authenticated with token. An
// empty token means unauthenticated access.
type SourceFactory func(token string) (repocontext.Source, error)

// Cache stores finished explanations keyed by owner/repo.
type Cache interface {
	Get(ctx context.Context, owner, repo string, now time.Time) (*cache.Entry, error)
	Put(ctx context.Context, owner, repo, explanation, directoryHash string, now time.Time) error
}

// Server serves repository explanations over HTTP and WebSocket
type Server struct {
	logger    *log.Logger
	explainer Explainer
	sources   SourceFactory
	cache     Cache
	limits    repocontext.Limits
	token     string
	port      string
	origins   []string
	limiter   *ipLimiter
	now       func() time.Time

	srv *http.Server
	mu  sync.Mutex
}

// New creates a new server instance. store may be nil to disable caching.
func New(logger *log.Logger, cfg *config.Config, explainer Explainer, sources SourceFactory, store Cache) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if explainer == nil {
		return nil, fmt.Errorf("explainer is required")
	}
	if sources == nil {
		return nil, fmt.Errorf("source factory is required")
	}

	if logger.IsDebug() {
		logger.Info("Initializing server with components:")
		logger.Info("- Explainer: ✓")
		logger.Info("- GitHub source: ✓")
		if store != nil {
			logger.Info("- Cache: ✓")
		} else {
			logger.Info("- Cache: disabled")
		}
	}

	return &Server{
		logger:    logger,
		explainer: explainer,
		sources:   sources,
		cache:     store,
		limits:    repocontext.LimitsFromConfig(cfg.Context),
		token:     cfg.GitHub.Token,
		port:      cfg.Port,
		origins:   cfg.CORSOrigins,
		limiter:   newIPLimiter(cfg.RateLimitPerDay),
		now:       time.Now,
	}, nil
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	listener, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on port %s: %w", s.port, err)
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Success("Server is running on port %s", s.port)
	if s.logger.IsDebug() {
		s.logger.Info("Try: curl http://localhost:%s/octocat/Hello-World", s.port)
		s.logger.Info("Press Ctrl+C to stop")
	}

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		if err != nil {
			s.logger.Error("Server error: %v", err)
		}
		return err
	}
}

// Stop stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to stop server: %v", err)
			return fmt.Errorf("failed to stop server: %w", err)
		}
		s.srv = nil
		s.logger.Success("Server stopped")
	}

	return nil
}

// Handler returns the full middleware-wrapped route table.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = s.cors(h)
	h = recovery(s.logger)(h)
	h = logging(s.logger)(h)
	h = requestID(h)
	return h
}

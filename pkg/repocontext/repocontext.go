// Package repocontext assembles a bounded text snapshot of a repository: a
// shallow directory tree followed by the contents of a selected set of files.
package repocontext

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/saint0x/repoexplain/pkg/config"
	"github.com/saint0x/repoexplain/pkg/github"
	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/selection"
)

// Pipeline checkpoints reported through Options.Status.
const (
	StageTreeFetched = "tree_fetched"
	StageExploring   = "exploring_files"
	StageFetching    = "fetching_files"
)

// Source is the read-only repository surface the assembler needs.
// *github.Client satisfies it.
type Source interface {
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	Tree(ctx context.Context, owner, repo, ref string) (*github.Tree, error)
	RootFiles(ctx context.Context, owner, repo, ref string) ([]string, error)
	FileContent(ctx context.Context, owner, repo, path, ref string) (string, error)
}

// FileSuggester proposes extra files to read from a rendered tree.
type FileSuggester interface {
	SuggestFiles(ctx context.Context, tree, repoPrefix string) ([]string, error)
}

// Limits bounds the assembled document. All character counts are runes.
type Limits struct {
	TreeDepth        int
	MaxTreeChars     int
	MaxFiles         int
	MaxFileChars     int
	MaxTotalChars    int
	FetchConcurrency int
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		TreeDepth:        2,
		MaxTreeChars:     10000,
		MaxFiles:         selection.DefaultMaxFiles,
		MaxFileChars:     30000,
		MaxTotalChars:    100000,
		FetchConcurrency: 8,
	}
}

// LimitsFromConfig copies the configured context limits.
func LimitsFromConfig(c config.Context) Limits {
	return Limits{
		TreeDepth:        c.TreeDepth,
		MaxTreeChars:     c.MaxTreeChars,
		MaxFiles:         c.MaxFiles,
		MaxFileChars:     c.MaxFileChars,
		MaxTotalChars:    c.MaxTotalChars,
		FetchConcurrency: c.FetchConcurrency,
	}
}

// Options are per-request settings.
type Options struct {
	// Ref pins the snapshot; empty means the default branch.
	Ref string
	// Status, if set, is called at each pipeline checkpoint. Errors and
	// panics from it are logged and otherwise ignored.
	Status func(stage string) error
}

// FetchResult is the outcome of fetching one selected file. OK is false when
// the file was missing or the fetch failed; an empty Content with OK set is
// an empty file.
type FetchResult struct {
	Path    string
	Content string
	OK      bool
}

// Result is a successfully assembled context.
type Result struct {
	Document string
	// Tree is the rendered (and possibly truncated) directory tree.
	Tree string
	Ref  string
	// Selected is the merged fetch list in order.
	Selected []string
	Files    []FetchResult
	// Empty is set for repositories without commits.
	Empty bool
	// Truncated is set when files were left out to stay within the budget.
	Truncated bool
}

// Fingerprint is the hex sha256 of the rendered tree. It changes whenever
// the repository layout shown to the model changes.
func (r *Result) Fingerprint() string {
	return Fingerprint(r.Tree)
}

// Fingerprint hashes a rendered tree.
func Fingerprint(tree string) string {
	sum := sha256.Sum256([]byte(tree))
	return hex.EncodeToString(sum[:])
}

// Assembler runs the context pipeline against a Source.
type Assembler struct {
	source    Source
	suggester FileSuggester
	policy    selection.Policy
	limits    Limits
	logger    *log.Logger
}

// New creates an Assembler. suggester may be nil, in which case only the
// static priority list is used.
func New(source Source, suggester FileSuggester, limits Limits, logger *log.Logger) *Assembler {
	policy := selection.DefaultPolicy()
	policy.MaxFiles = limits.MaxFiles
	return &Assembler{
		source:    source,
		suggester: suggester,
		policy:    policy,
		limits:    limits,
		logger:    logger,
	}
}

func (a *Assembler) report(opts Options, stage string) {
	if opts.Status == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warning("Status callback panicked at %s: %v", stage, r)
		}
	}()
	if err := opts.Status(stage); err != nil {
		a.logger.Warning("Status callback failed at %s: %v", stage, err)
	}
}

func repoLabel(owner, repo string) string {
	return fmt.Sprintf("%s/%s", owner, repo)
}

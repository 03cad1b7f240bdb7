package repocontext

import (
	"context"
	"fmt"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/saint0x/repoexplain/pkg/github"
	"github.com/saint0x/repoexplain/pkg/tree"
	"golang.org/x/sync/errgroup"
)

// SkipPatterns hide build output, dependencies and editor state from the
// tree. They use gitignore syntax.
var SkipPatterns = []string{
	"__pycache__",
	"node_modules",
	".git",
	"dist",
	"build",
	".next",
	".venv",
	"venv",
	".idea",
	".vscode",
	"*.min.js",
	"*.min.css",
	".DS_Store",
}

var skipRules = ignore.CompileIgnoreLines(SkipPatterns...)

// Assemble builds the context document for owner/repo. Hard failures (ref
// resolution, tree fetch, root listing) are returned as errors carrying the
// upstream status where there is one. An empty repository, an empty fetch
// list and individual missing files are not errors.
func (a *Assembler) Assemble(ctx context.Context, owner, repo string, opts Options) (*Result, error) {
	label := repoLabel(owner, repo)

	ref := opts.Ref
	if ref == "" {
		branch, err := a.source.DefaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default branch: %w", err)
		}
		ref = branch
	}
	a.logger.Step("Fetching tree for %s@%s", label, ref)

	listing, err := a.source.Tree(ctx, owner, repo, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tree: %w", err)
	}
	if listing.Empty {
		a.logger.Warning("%s has no commits", label)
		rendered := tree.Format(nil, label, a.limits.TreeDepth)
		res := &Result{Tree: rendered, Ref: ref, Empty: true}
		res.Document = treeHeader + rendered + "\n\n" + emptyRepoNotice
		a.report(opts, StageTreeFetched)
		return res, nil
	}
	if listing.Truncated {
		a.logger.Warning("Tree listing for %s was truncated by GitHub; structure may be incomplete", label)
	}

	rendered := capTree(tree.Format(filterEntries(listing.Entries), label, a.limits.TreeDepth), a.treeBudget())
	res := &Result{Tree: rendered, Ref: ref}
	a.report(opts, StageTreeFetched)

	rootFiles, suggested, err := a.discover(ctx, owner, repo, ref, rendered, opts)
	if err != nil {
		return nil, err
	}

	res.Selected = a.policy.Select(rootFiles, suggested)
	if len(res.Selected) == 0 {
		a.logger.Info("No key files found in %s", label)
		res.Document = treeHeader + rendered + "\n\n" + noFilesNotice
		return res, nil
	}

	a.report(opts, StageFetching)
	res.Files = a.fetchAll(ctx, owner, repo, ref, res.Selected)

	res.Document, res.Truncated = a.render(rendered, res.Files)
	if res.Truncated {
		a.logger.Warning("Context for %s hit the %d character budget; remaining files skipped", label, a.limits.MaxTotalChars)
	}
	a.logger.Success("Assembled %d characters of context for %s", runeLen(res.Document), label)
	return res, nil
}

// discover lists the root files and asks for suggestions at the same time.
// Only the root listing can fail the request.
func (a *Assembler) discover(ctx context.Context, owner, repo, ref, rendered string, opts Options) ([]string, []string, error) {
	var rootFiles, suggested []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files, err := a.source.RootFiles(gctx, owner, repo, ref)
		if err != nil {
			return fmt.Errorf("failed to list root files: %w", err)
		}
		rootFiles = files
		return nil
	})
	if a.suggester != nil {
		a.report(opts, StageExploring)
		g.Go(func() error {
			files, err := a.suggester.SuggestFiles(gctx, rendered, repoLabel(owner, repo))
			if err != nil {
				a.logger.Warning("File suggestions unavailable, using static list only: %v", err)
				return nil
			}
			suggested = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rootFiles, suggested, nil
}

// fetchAll fetches every path with bounded parallelism. Results keep the
// order of paths. A failed fetch never cancels its siblings.
func (a *Assembler) fetchAll(ctx context.Context, owner, repo, ref string, paths []string) []FetchResult {
	results := make([]FetchResult, len(paths))

	var g errgroup.Group
	if a.limits.FetchConcurrency > 0 {
		g.SetLimit(a.limits.FetchConcurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			results[i].Path = path
			content, err := a.source.FileContent(ctx, owner, repo, path, ref)
			switch {
			case github.IsNotFound(err):
				a.logger.Debug("Skipping %s: not found", path)
			case err != nil:
				a.logger.Warning("Skipping %s: %v", path, err)
			default:
				results[i].Content = content
				results[i].OK = true
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func filterEntries(entries []tree.Entry) []tree.Entry {
	kept := make([]tree.Entry, 0, len(entries))
	for _, e := range entries {
		if skipRules.MatchesPath(e.Path) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

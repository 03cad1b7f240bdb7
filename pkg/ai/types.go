package ai

// RepoInfo identifies the repository being explained
type RepoInfo struct {
	Owner string `json:"owner"`
	Name  string `json:"repo_name"`
}

// FullName returns "owner/name"
func (r RepoInfo) FullName() string {
	return r.Owner + "/" + r.Name
}

// StageGenerating is reported right before the explanation request is sent.
const StageGenerating = "generating_explanation"

const (
	// DefaultExploreMaxTokens caps the file suggestion answer.
	DefaultExploreMaxTokens = 4096
	// DefaultExplainMaxTokens caps the explanation answer.
	DefaultExplainMaxTokens = 10000
)

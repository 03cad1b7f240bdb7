// Package prompts holds the texts sent to the language model.
package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	repoNameVar    = "{{repo_name}}"
	repoContextVar = "{{repo_context}}"
	treeVar        = "{{tree}}"
)

// Set is the full collection of prompts. Any field left empty in an
// override file keeps its default.
type Set struct {
	System        string `yaml:"system"`
	User          string `yaml:"user"`
	ExploreSystem string `yaml:"explore_system"`
	ExploreUser   string `yaml:"explore_user"`
}

// Default returns the built-in prompts.
func Default() Set {
	return Set{
		System:        systemPrompt,
		User:          userPromptTemplate,
		ExploreSystem: exploreSystemPrompt,
		ExploreUser:   exploreUserTemplate,
	}
}

// Load reads a YAML override file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return set, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	if override.System != "" {
		set.System = override.System
	}
	if override.User != "" {
		set.User = override.User
	}
	if override.ExploreSystem != "" {
		set.ExploreSystem = override.ExploreSystem
	}
	if override.ExploreUser != "" {
		set.ExploreUser = override.ExploreUser
	}
	return set, nil
}

// BuildUser fills the explanation template. Non-blank instructions are
// appended as a separate section.
func (s Set) BuildUser(repoName, repoContext, instructions string) string {
	prompt := strings.NewReplacer(
		repoNameVar, repoName,
		repoContextVar, repoContext,
	).Replace(s.User)

	if instructions = strings.TrimSpace(instructions); instructions != "" {
		prompt += "\n\nAdditional instructions from the user:\n" + instructions
	}
	return prompt
}

// BuildExploreUser fills the file-suggestion template with a rendered tree.
func (s Set) BuildExploreUser(tree string) string {
	return strings.ReplaceAll(s.ExploreUser, treeVar, tree)
}

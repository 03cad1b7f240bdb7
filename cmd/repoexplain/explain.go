package main

import (
	"fmt"

	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/github"
	"github.com/saint0x/repoexplain/pkg/repocontext"
	"github.com/spf13/cobra"
)

var (
	explainRef          string
	explainInstructions string
	explainContextOnly  bool
)

var explainCmd = &cobra.Command{
	Use:   "explain <owner/repo | url>",
	Short: "Explain a repository and print the result",
	Long: `Assemble the repository context and print the model's explanation.
With --context-only the assembled context is printed instead and no model is
called.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringVar(&explainRef, "ref", "", "Branch, tag or commit (default branch if empty)")
	explainCmd.Flags().StringVar(&explainInstructions, "instructions", "", "Extra instructions for the explanation")
	explainCmd.Flags().BoolVar(&explainContextOnly, "context-only", false, "Print the assembled context and stop")
}

func runExplain(cmd *cobra.Command, args []string) error {
	owner, repo, err := github.ParseRepoURL(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	assembler, err := a.assembler("")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := assembler.Assemble(ctx, owner, repo, repocontext.Options{
		Ref: explainRef,
		Status: func(stage string) error {
			a.logger.Debug("Stage: %s", stage)
			return nil
		},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if explainContextOnly {
		fmt.Fprintln(out, result.Document)
		return nil
	}

	text, err := a.generator.Explain(ctx, ai.RepoInfo{Owner: owner, Name: repo}, result.Document, explainInstructions, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}

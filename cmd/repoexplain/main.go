package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "repoexplain",
	Short: "Explain GitHub repositories with an LLM",
	Long: `repoexplain gathers a bounded snapshot of a GitHub repository (its
directory tree and a handful of key files) and asks a language model to
explain it. Run it as an HTTP service or one-shot from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./repoexplain.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

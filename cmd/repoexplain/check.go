package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [url]",
	Short: "Check whether a repoexplain server is healthy",
	Long:  "Probe /health on a running server. The URL defaults to http://localhost:$PORT.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	var base string
	if len(args) == 1 {
		base = args[0]
	} else {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Close()
		base = "http://localhost:" + cfg.Port
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(base, "/") + "/health")
	if err != nil {
		return fmt.Errorf("server is not running: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned non-OK status: %d", resp.StatusCode)
	}

	var health struct {
		Status string `json:"status"`
		Cache  bool   `json:"cache"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("unexpected health response: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server is running! (status: %s, cache: %v)\n", health.Status, health.Cache)
	return nil
}

package main

import (
	"fmt"

	"github.com/saint0x/repoexplain/pkg/cache"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired cached explanations",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.Cache.Path == "" {
		return fmt.Errorf("DATABASE_PATH is empty; nothing to sweep")
	}

	db, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := cache.NewSweeper(db, cfg.Cache.SweepInterval, logger).Sweep(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", n)
	return nil
}

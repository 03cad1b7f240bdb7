package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/saint0x/repoexplain/pkg/cache"
	"github.com/saint0x/repoexplain/pkg/server"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the repoexplain HTTP API. GET /{owner}/{repo} returns an
explanation as JSON; /ws/{owner}/{repo} streams progress over a WebSocket.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()
	logger := a.logger

	if servePort != "" {
		a.cfg.Port = servePort
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	shuttingDown := make(chan struct{}, 1)
	go func() {
		for sig := range sigCh {
			select {
			case <-shuttingDown:
				logger.Error("Force stopping...")
				os.Exit(1)
			default:
				logger.Info("Received signal: %v", sig)
				logger.Info("Press Ctrl+C again to force stop")
				shuttingDown <- struct{}{}
				cancel()
			}
		}
	}()

	var store server.Cache
	if a.cfg.Cache.Path != "" {
		db, err := cache.Open(a.cfg.Cache.Path, a.cfg.Cache.TTL, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
		go cache.NewSweeper(db, a.cfg.Cache.SweepInterval, logger).Run(ctx)
	} else {
		logger.Warning("DATABASE_PATH is empty; explanations will not be cached")
	}

	srv, err := server.New(logger, a.cfg, a.generator, a.source, store)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"cognimed-be/internal/bootstrap"
	"cognimed-be/internal/config"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/service"
	"cognimed-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "indexctl",
	Short:         "Operate the post embedding index",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func openIndex() (service.IIndexService, error) {
	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.ParseLogLevel(cfg.Database.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return bootstrap.NewIndexService(db, cfg, logger.NewIsolatedLogger("logs/indexctl.log")), nil
}

func main() {
	rootCmd.AddCommand(newRebuildCmd(), newStatsCmd(), newSearchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

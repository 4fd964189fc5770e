package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/app"
	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/logger"
)

const appName = "matchctl"

var (
	// Used for flags.
	cfgFile string
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "matchctl ingests resumes and ranks them against job descriptions",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (overrides MATCHER_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// buildDeps loads configuration and wires the services for one command run.
func buildDeps(ctx context.Context) (*app.Deps, *zap.Logger, error) {
	if cfgFile != "" {
		if err := os.Setenv("MATCHER_CONFIG", cfgFile); err != nil {
			return nil, nil, fmt.Errorf("setting config path: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	log, err := logger.New(jsonLog || cfg.Log.JSON, level)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return deps, log, nil
}

// Command yaowen crawls the configured news portals and publishes the
// daily headline digest. Without flags it performs exactly one
// crawl-and-publish cycle and exits; with --every it keeps running and
// repeats the cycle on the given interval.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/meiri-hq/meiri-yaowen/internal/app"
	"github.com/meiri-hq/meiri-yaowen/internal/archive"
	"github.com/meiri-hq/meiri-yaowen/internal/config"
	"github.com/meiri-hq/meiri-yaowen/internal/extractor"
	"github.com/meiri-hq/meiri-yaowen/internal/fetcher"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
	"github.com/meiri-hq/meiri-yaowen/internal/notify"
	"github.com/meiri-hq/meiri-yaowen/internal/publish"
	"github.com/meiri-hq/meiri-yaowen/pkg/httpclient"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		every      time.Duration
		csvExport  bool
		debugDump  bool
	)

	cmd := &cobra.Command{
		Use:           "yaowen",
		Short:         "Crawl news portals and publish a daily headline digest",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, every, csvExport, debugDump)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (defaults apply when omitted)")
	cmd.Flags().DurationVar(&every, "every", 0, "re-run the cycle on this interval instead of exiting (e.g. 24h)")
	cmd.Flags().BoolVar(&csvExport, "csv", false, "also write the CSV export")
	cmd.Flags().BoolVar(&debugDump, "debug", false, "dump each fetched page to the debug HTML file")

	return cmd
}

func run(ctx context.Context, configPath string, every time.Duration, csvExport, debugDump bool) error {
	// Ambient credentials (git, AWS, GCP) may come from a local .env.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if csvExport {
		cfg.Output.CSV = true
	}
	if debugDump {
		cfg.HTTP.DebugDump = true
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if every > 0 {
		app.RunEvery(ctx, every, log, pipeline.Run)
		return nil
	}
	return pipeline.Run(ctx)
}

func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Pipeline, func(), error) {
	client := httpclient.NewRestyClient(cfg.Timeout())
	f := fetcher.New(client, log, cfg.HTTP.DebugDump, cfg.HTTP.DebugDumpPath)

	reg := extractor.DefaultRegistry(cfg.Crawl.MinTitleRunes, cfg.Crawl.MaxTitleRunes)
	ext := extractor.New(reg, log)

	var committer app.Committer
	if cfg.Git.Enabled {
		committer = publish.NewCommitter(cfg.Git, log)
	}

	var sinks []notify.Sink
	if cfg.Sinks.File != "" {
		sinkFile, err := notify.LoadSinks(cfg.Sinks.File)
		if err != nil {
			return nil, nil, fmt.Errorf("load sinks: %w", err)
		}
		sinks, err = notify.BuildAll(ctx, notify.DefaultRegistry(), sinkFile.Enabled(), log)
		if err != nil {
			return nil, nil, fmt.Errorf("build sinks: %w", err)
		}
	}

	cleanup := func() {}
	var store *archive.Store
	if cfg.Archive.Path != "" {
		var err error
		store, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = store.Close() }
	}

	return app.NewPipeline(cfg, f, ext, committer, sinks, store, log), cleanup, nil
}

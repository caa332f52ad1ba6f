package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/config"
	"github.com/nao1215/contentscale/internal/schedule"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [url...]",
		Short: "Rescan pages on a cron schedule",
		Long: `Watch rescans a set of pages on a cron schedule until interrupted. Each
rescan is saved to the score database, so 'contentscale compare' and
'contentscale leaderboard' follow the pages over time.

URLs come from the arguments, from --list, or from watch.urls in the
configuration file. The schedule is a standard five-field cron expression
or a descriptor such as @daily or @every 30m. A rescan that is still running
when the next one is due causes that run to be skipped.

Examples:
  contentscale watch --schedule "0 6 * * *" https://example.com/guide
  contentscale watch --run-now --list urls.txt --metrics-file /var/lib/node_exporter/contentscale.prom`,
		Args: cobra.ArbitraryArgs,
		RunE: runWatchCmd,
	}
	addScanFlags(cmd)
	cmd.Flags().String("schedule", config.DefaultWatchSchedule,
		"Cron expression of the rescans")
	cmd.Flags().Bool("run-now", false,
		"Scan once immediately before waiting for the schedule")
	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Targets) == 0 && cfg.SiteConfigs != nil {
		cfg.Targets, err = collectTargets(cfg.SiteConfigs.Watch.URLs, "")
		if err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := schedule.ValidateSpec(cfg.WatchSchedule); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out, closeOut, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // Best effort close of the report file

	s, err := newScanner(ctx, cfg, scannerIO{report: out, status: cmd.ErrOrStderr()}, flagString(cmd, "trace-file"), logger)
	if err != nil {
		return err
	}
	defer s.close()

	sched := schedule.New(
		schedule.WithLogger(logger),
		schedule.WithRunOnStart(flagBool(cmd, "run-now")),
	)
	err = sched.Schedule(cfg.WatchSchedule, func(ctx context.Context) error {
		reports, err := s.run(ctx, cfg.Targets)
		if err != nil {
			return err
		}
		return scanError(reports)
	})
	if err != nil {
		return err
	}

	logger.Info("watching pages", "urls", len(cfg.Targets), "schedule", cfg.WatchSchedule)
	return sched.Run(ctx)
}

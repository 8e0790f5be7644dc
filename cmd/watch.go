package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/evt"
	"github.com/listharvest/listharvest/log"
	"github.com/listharvest/listharvest/util"
)

var watchLog = log.PrefixedLog("watch")

// watchCommand builds the `watch` subcommand: run the pipeline once
// immediately, then again every Config.RefreshPeriod, until the process
// receives SIGINT/SIGTERM.
func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Args:  cobra.NoArgs,
		Short: "re-run the pipeline every Config.RefreshPeriod until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			configureLogger(cfg.Log)

			evt.Bus().Publish(evt.ApplicationStarted, util.Version, util.BuildTime)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchLoop(ctx, cfg)
		},
	}
}

// watchLoop runs the pipeline immediately, then on every tick of
// Config.RefreshPeriod, reloading the config fresh each time (so edits to
// the config file between runs take effect, just as a cron-driven `run`
// would pick them up).
func watchLoop(ctx context.Context, cfg *config.Config) error {
	period := cfg.RefreshPeriod.ToDuration()
	if period <= 0 {
		period = time.Hour
	}

	watchLog.Infof("watching with refresh period %s", cfg.RefreshPeriod)

	for {
		if err := runPipelineOnce(ctx, cfg); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			watchLog.Info("watch stopped")

			return nil
		case <-time.After(period):
		}

		reloaded, err := loadConfig()
		if err != nil {
			watchLog.WithError(err).Warn("can't reload config, reusing previous configuration")

			continue
		}

		configureLogger(reloaded.Log)

		cfg = reloaded
	}
}

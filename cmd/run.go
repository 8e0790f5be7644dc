package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/evt"
	"github.com/listharvest/listharvest/log"
	"github.com/listharvest/listharvest/stage"
	"github.com/listharvest/listharvest/util"
)

var runLog = log.PrefixedLog("run")

// runPipelineCommand builds the `run` subcommand: load config, drive one
// Download→Extract→Categorize→Output pass to completion, persist the
// config as the new cached-config baseline, and exit.
func runPipelineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Args:  cobra.NoArgs,
		Short: "run one download/extract/categorize/output pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			configureLogger(cfg.Log)

			evt.Bus().Publish(evt.ApplicationStarted, util.Version, util.BuildTime)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runPipelineOnce(ctx, cfg)
		},
	}
}

// runPipelineOnce drives the four stages to completion: Download is
// initialized with (config, cancellation), awaited, and yields Extract,
// and so on. Each stage's Run both performs the work and returns the next
// stage's object, so the barrier between stages is encoded in the types.
func runPipelineOnce(ctx context.Context, cfg *config.Config) error {
	if err := runPipelineStages(ctx, cfg); err != nil {
		if isOnlyCancellation(err) {
			// Cooperative cancellation: clean termination, no error
			// reported, and no promotion of a partial run to the
			// cached-config baseline.
			runLog.Info("pipeline run cancelled")

			return nil
		}

		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("can't persist cached config: %w", err)
	}

	runLog.Info("pipeline run complete")

	return nil
}

func runPipelineStages(ctx context.Context, cfg *config.Config) error {
	extractStage, err := stage.NewDownload(cfg).Run(ctx)
	if err != nil {
		return fmt.Errorf("download stage failed: %w", err)
	}

	evt.Bus().Publish(evt.StageCompleted, "download")

	categorizeStage, err := extractStage.Run(ctx)
	if err != nil {
		return fmt.Errorf("extract stage failed: %w", err)
	}

	evt.Bus().Publish(evt.StageCompleted, "extract")

	outputStage, err := categorizeStage.Run(ctx)
	if err != nil {
		return fmt.Errorf("categorize stage failed: %w", err)
	}

	evt.Bus().Publish(evt.StageCompleted, "categorize")

	if err := outputStage.Run(ctx); err != nil {
		return fmt.Errorf("output stage failed: %w", err)
	}

	evt.Bus().Publish(evt.StageCompleted, "output")

	return nil
}

// isOnlyCancellation reports whether err is context.Canceled, or a
// go-multierror whose every wrapped error is context.Canceled (the shape
// engine.Run produces when every in-flight task observed cancellation).
func isOnlyCancellation(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return false
	}

	for _, sub := range merr.Errors {
		if !errors.Is(sub, context.Canceled) {
			return false
		}
	}

	return len(merr.Errors) > 0
}

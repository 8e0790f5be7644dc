// Package cmd wires the listharvest pipeline into a cobra CLI: a `run`
// subcommand for a single four-stage pass and a `watch` subcommand that
// re-runs the pipeline on Config.RefreshPeriod until cancelled.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/log"
	"github.com/listharvest/listharvest/util"
)

//nolint:gochecknoglobals
var (
	configPath string
	logLevel   string
	logFormat  string
)

// NewRootCommand builds the top-level listharvest command: persistent
// --config/--log-level/--log-format flags shared by every subcommand, and
// `run`/`watch`/`version` as children. Running the root command with no
// subcommand behaves like `run`.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "listharvest",
		Short: "listharvest downloads, extracts, and categorizes filter lists",
		Long: `listharvest ingests a configured set of remote filter lists, extracts
domains via per-list regular expressions, merges them into category
lists by tag, and emits the result in one of several output formats.

Complete documentation is available at https://github.com/listharvest/listharvest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipelineCommand().RunE(cmd, args)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.json", "path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override config log.level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "override config log.format (text, json)")

	root.AddCommand(runPipelineCommand(), watchCommand(), NewVersionCommand())

	return root
}

// loadConfig loads the config at configPath and applies any CLI/env
// overrides to its Log section before the caller configures the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("can't load config: %w", err)
	}

	applyLogOverrides(&cfg.Log)

	return cfg, nil
}

// applyLogOverrides layers the --log-level/--log-format flags, then the
// LISTHARVEST_LOG_LEVEL/LISTHARVEST_LOG_FORMAT environment variables, on
// top of whatever the config file set. Flags win over env vars, which win
// over the file.
func applyLogOverrides(lc *config.LogConfig) {
	if v := os.Getenv("LISTHARVEST_LOG_LEVEL"); v != "" {
		lc.Level = v
	}

	if v := os.Getenv("LISTHARVEST_LOG_FORMAT"); v != "" {
		lc.Format = v
	}

	if logLevel != "" {
		lc.Level = logLevel
	}

	if logFormat != "" {
		lc.Format = logFormat
	}
}

// configureLogger translates a config.LogConfig into the log package's own
// Config and applies it to the global logger.
func configureLogger(lc config.LogConfig) {
	var level log.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = log.LevelInfo
	}

	var format log.FormatType
	if err := format.UnmarshalText([]byte(lc.Format)); err != nil {
		format = log.FormatTypeText
	}

	log.ConfigureLogger(log.Config{
		Level:     level,
		Format:    format,
		Timestamp: true,
	})
}

// Execute runs the root command, logging any returned error and exiting
// with status 1.
func Execute() {
	util.FatalOnError("listharvest failed", NewRootCommand().Execute())
}

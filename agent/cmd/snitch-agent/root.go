package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snitch-monitoring/snitch/agent/internal/bootstrap"
	"github.com/snitch-monitoring/snitch/agent/internal/collect"
	"github.com/snitch-monitoring/snitch/agent/internal/config"
	"github.com/snitch-monitoring/snitch/agent/internal/version"
)

// Viper key and environment variable for the log level override.
const (
	keyLogLevel = "log_level"
	envLogLevel = "SNITCH_LOG_LEVEL"
)

type rootOptions struct {
	configPath  string
	debugConfig bool
	watchConfig bool
}

func newRootCmd(newCollector collect.Factory) *cobra.Command {
	v := viper.New()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "snitch-agent",
		Short: "Host monitoring agent that reports to a snitch aggregator",
		Long: `snitch-agent collects data about the host it runs on and forwards it to a
remote aggregator.

The configuration file is validated strictly before anything else starts:
unknown keys, missing required keys and out-of-range values stop the agent
with a non-zero exit status.

Log level precedence: --log-level when given, then $SNITCH_LOG_LEVEL, then
log.level in the configuration file, then info.`,
		Version:       version.Info(),
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return usageErrorf("required flag --config (-c) not set")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := levelOverride(v)
			if err != nil {
				return err
			}
			bo := bootstrap.Options{
				ConfigPath:    opts.configPath,
				LevelOverride: level,
				WatchConfig:   opts.watchConfig,
				NewCollector:  newCollector,
			}
			if opts.debugConfig {
				bo.Trace = cmd.ErrOrStderr()
			}
			return bootstrap.Run(cmd.Context(), bo)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the agent configuration file (required)")
	flags.StringP("log-level", "l", "info", "minimum log level: debug, info, warn or error (overrides log.level when given)")
	flags.BoolVar(&opts.debugConfig, "debug-config", false, "print the raw configuration file to stderr before parsing it")
	cmd.Flags().BoolVar(&opts.watchConfig, "watch-config", true, "warn when the configuration file changes while the agent runs")

	_ = v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = v.BindEnv(keyLogLevel, envLogLevel)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}

// levelOverride returns the level from the command line or environment, or
// nil when neither is set so the file's log.level applies.
func levelOverride(v *viper.Viper) (*config.Level, error) {
	if !v.IsSet(keyLogLevel) {
		return nil, nil
	}
	level, err := config.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("--log-level/%s: %w", envLogLevel, err)}
	}
	return &level, nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}

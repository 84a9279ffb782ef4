package main

import (
	"github.com/spf13/cobra"

	"github.com/snitch-monitoring/snitch/agent/internal/bootstrap"
	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file and print it with defaults applied",
		Long: `check loads the configuration exactly as the agent would and prints the
normalised result, with every default spelled out, to stdout. It starts no
logger, writes no pid file and contacts no aggregator.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var loadOpts []config.LoadOption
			if opts.debugConfig {
				loadOpts = append(loadOpts, config.WithTrace(cmd.ErrOrStderr()))
			}
			cfg, err := config.Load(opts.configPath, loadOpts...)
			if err != nil {
				return &bootstrap.StageError{Stage: bootstrap.StageConfig, Err: err}
			}

			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

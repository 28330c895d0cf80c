// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing
// and flag binding. Command execution is delegated to handler functions in
// the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropletd/cmd/dropletd/handlers"
)

// Root returns the root command for the dropletd CLI.
//
// The root command owns the persistent flags every subcommand shares:
// the configuration path and the logging level and format.
func Root() *cobra.Command {
	opts := &handlers.GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "dropletd",
		Short:         "Turn a streaming droplet on and off from chat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default ./dropletd.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "auto", "Log format: auto, console, json")

	cmd.AddCommand(Init(opts))
	cmd.AddCommand(Run(opts))
	cmd.AddCommand(Up(opts))
	cmd.AddCommand(Down(opts))
	cmd.AddCommand(Status(opts))

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

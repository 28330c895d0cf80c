package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropletd/cmd/dropletd/handlers"
)

var handleInit = handlers.Init

// Init returns the init command.
func Init(opts *handlers.GlobalOptions) *cobra.Command {
	var initOpts handlers.InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Create a configuration file interactively.

The file is written to --config (default ./dropletd.yaml). An existing
file is kept unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := *opts
			o.Out = cmd.OutOrStdout()
			return handleInit(cmd.Context(), o, initOpts)
		},
	}

	cmd.Flags().BoolVar(&initOpts.Advanced, "advanced", false, "Also ask for event publishing and metrics settings")
	cmd.Flags().BoolVarP(&initOpts.Force, "force", "f", false, "Overwrite an existing configuration file")

	return cmd
}

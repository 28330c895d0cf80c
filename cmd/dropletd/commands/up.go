package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropletd/cmd/dropletd/handlers"
)

var handleUp = handlers.Up

// Up returns the up command.
func Up(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create the droplet or show the existing one",
		Long: `Up creates the tagged droplet from the configured snapshot and waits
for it to boot. If a droplet with the tag already exists it is shown instead.

No inactivity monitor is started; turn the droplet off with dropletd down.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := *opts
			o.Out = cmd.OutOrStdout()
			return handleUp(cmd.Context(), o)
		},
	}
}

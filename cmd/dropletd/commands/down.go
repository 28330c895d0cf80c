package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropletd/cmd/dropletd/handlers"
)

var handleDown = handlers.Down

// Down returns the down command.
func Down(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Destroy every droplet carrying the tag",
		Long: `Down destroys every droplet carrying the configured tag.

WARNING: droplets are destroyed, not powered off. Anything not baked into
the snapshot is lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := *opts
			o.Out = cmd.OutOrStdout()
			return handleDown(cmd.Context(), o)
		},
	}
}

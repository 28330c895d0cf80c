package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropletd/cmd/dropletd/handlers"
)

// handleRun is the run handler, replaceable in tests.
var handleRun = handlers.Run

// Run returns the run command.
func Run(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the chat bot",
		Long: `Run connects to Discord and serves stream commands until interrupted.

Commands understood in chat (with the configured prefix, default "!"):
  turn on stream    Create the droplet from the snapshot, or reuse it
  turn off stream   Destroy every droplet carrying the tag
  stream status     Show the droplet, its stream URLs and action statuses
  stream help       List the commands

Droplets turned on from chat are watched for inactivity and turned off
once idle. The configuration file is reloaded when it changes.

Example:
  DISCORD_TOKEN=... DIGITALOCEAN_TOKEN=... dropletd run -c dropletd.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleRun(cmd.Context(), *opts)
		},
	}
}

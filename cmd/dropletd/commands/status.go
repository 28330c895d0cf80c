package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/dropletd/cmd/dropletd/handlers"
)

var (
	handleStatus = handlers.Status
	handleWatch  = handlers.Watch
)

// Status returns the status command.
func Status(opts *handlers.GlobalOptions) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the droplet and its stream URLs",
		Long: `Show the droplet and its stream URLs.

With --watch, an interactive dashboard refreshes the droplet and its
actions until you press q.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := *opts
			o.Out = cmd.OutOrStdout()
			if watch {
				return handleWatch(cmd.Context(), o, interval)
			}
			return handleStatus(cmd.Context(), o)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh continuously in an interactive dashboard")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Refresh interval for --watch")

	return cmd
}

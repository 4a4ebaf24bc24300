// Command userdata prints the bootstrap script the server instance runs on
// first boot, using the same environment settings as the Pulumi program.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCommand returns the userdata root command.
func NewCommand() *cobra.Command {
	var extended bool
	var encode bool
	var phase string

	cmd := &cobra.Command{
		Use:   "userdata",
		Short: "Render the Minecraft server bootstrap script",
		Long: `Render the user data script handed to the server instance.

Settings are read from the MINECRAFT_* environment variables. Examples:
  userdata                         # Basic variant
  userdata --extended              # Include the mc-op, mc-status, mc-restart and mc-logs commands
  userdata --phase systemd-unit    # Print a single phase
  userdata --base64                # Encoded for the EC2 API`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render(cmd, renderOpts{extended: extended, encode: encode, phase: phase})
		},
	}

	cmd.Flags().BoolVar(&extended, "extended", false, "Install the operator convenience commands")
	cmd.Flags().BoolVar(&encode, "base64", false, "Print the script base64 encoded")
	cmd.Flags().StringVar(&phase, "phase", "", "Print only the named phase")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/mpunie/govelbus/pkgs/app"
)

func NewClockCommand(velbus *app.VelbusApp) *cobra.Command {
	type Args struct {
		DSN string
	}

	cmdArgs := Args{}
	command := &cobra.Command{
		Use:   "clock",
		Short: "Broadcast the host's current time and date to every module",
		RunE: func(command *cobra.Command, args []string) error {
			if err := velbus.Initialize(); err != nil {
				return err
			}
			return velbus.SyncClockAction(cmdArgs.DSN)
		},
	}

	command.Flags().BoolVarP(&velbus.Debug, "debug", "v", false, "Increase verbosity to the debug level")
	command.Flags().StringVarP(&cmdArgs.DSN, "dsn", "d", "", "Connect string, overriding the configured server address")

	return command
}

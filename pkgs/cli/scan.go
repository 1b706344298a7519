package cli

import (
	"github.com/spf13/cobra"

	"github.com/mpunie/govelbus/pkgs/app"
)

func NewScanCommand(velbus *app.VelbusApp) *cobra.Command {
	type Args struct {
		DSN   string
		Force bool
	}

	cmdArgs := Args{}
	command := &cobra.Command{
		Use:   "scan",
		Short: "Discover every module on the bus and cache their channel names",
		RunE: func(command *cobra.Command, args []string) error {
			if err := velbus.Initialize(); err != nil {
				return err
			}
			return velbus.ScanAction(cmdArgs.DSN, cmdArgs.Force)
		},
	}

	command.Flags().BoolVarP(&velbus.Debug, "debug", "v", false, "Increase verbosity to the debug level")
	command.Flags().StringVarP(&cmdArgs.DSN, "dsn", "d", "", "Connect string, overriding the configured server address")
	command.Flags().BoolVarP(&cmdArgs.Force, "force", "f", false, "Bypass the cache and re-probe every address")

	return command
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpunie/govelbus/pkgs/app"
)

func NewStatusCommand(velbus *app.VelbusApp) *cobra.Command {
	type Args struct {
		DSN     string
		Address string
	}

	cmdArgs := Args{}
	command := &cobra.Command{
		Use:   "status",
		Short: "Print every discovered module's channel state",
		RunE: func(command *cobra.Command, args []string) error {
			if err := velbus.Initialize(); err != nil {
				return err
			}

			var address uint64
			if cmdArgs.Address != "" {
				var err error
				address, err = strconv.ParseUint(cmdArgs.Address, 0, 8)
				if err != nil {
					return fmt.Errorf("invalid address %q: %w", cmdArgs.Address, err)
				}
			}

			return velbus.StatusAction(cmdArgs.DSN, byte(address))
		},
	}

	command.Flags().BoolVarP(&velbus.Debug, "debug", "v", false, "Increase verbosity to the debug level")
	command.Flags().StringVarP(&cmdArgs.DSN, "dsn", "d", "", "Connect string, overriding the configured server address")
	command.Flags().StringVarP(&cmdArgs.Address, "address", "a", "", "Limit output to a single module address")

	return command
}

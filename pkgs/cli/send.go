package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpunie/govelbus/pkgs/app"
)

func NewSendCommand(velbus *app.VelbusApp) *cobra.Command {
	type Args struct {
		DSN     string
		Address string
		RTR     bool
	}

	cmdArgs := Args{}
	command := &cobra.Command{
		Use:   "send <hex-data>",
		Short: "Send a raw frame, bypassing the typed message layer",
		Long: `Sends one raw Velbus frame built from the given hex-encoded data bytes
(the command byte plus its payload), for debugging a module or protocol
interaction by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := velbus.Initialize(); err != nil {
				return err
			}

			address64, err := strconv.ParseUint(cmdArgs.Address, 0, 8)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", cmdArgs.Address, err)
			}

			data, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex data %q: %w", args[0], err)
			}

			return velbus.SendAction(cmdArgs.DSN, byte(address64), cmdArgs.RTR, data)
		},
	}

	command.Flags().BoolVarP(&velbus.Debug, "debug", "v", false, "Increase verbosity to the debug level")
	command.Flags().StringVarP(&cmdArgs.DSN, "dsn", "d", "", "Connect string, overriding the configured server address")
	command.Flags().StringVarP(&cmdArgs.Address, "address", "a", "0x00", "Destination module address")
	command.Flags().BoolVar(&cmdArgs.RTR, "rtr", false, "Set the RTR (request) flag on the frame")

	command.MarkFlagRequired("address")

	return command
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mpunie/govelbus/pkgs/app"
)

func NewRootCommand(velbus *app.VelbusApp) *cobra.Command {
	command := &cobra.Command{
		Use:   "govelbus",
		Short: "Velbus home-automation bus client",
		RunE: func(command *cobra.Command, args []string) error {
			return errors.New("please select a command")
		},
	}

	command.AddCommand(NewScanCommand(velbus))
	command.AddCommand(NewSendCommand(velbus))
	command.AddCommand(NewStatusCommand(velbus))
	command.AddCommand(NewClockCommand(velbus))

	return command
}

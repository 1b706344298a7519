package main

import (
	"os"

	"github.com/mpunie/govelbus/pkgs/app"
	"github.com/mpunie/govelbus/pkgs/cli"
	"github.com/mpunie/govelbus/pkgs/output"
)

func main() {
	velbus := app.VelbusApp{P: output.ConsolePrinter{}}
	cmd := cli.NewRootCommand(&velbus)
	args := os.Args
	if args != nil {
		args = args[1:]
		cmd.SetArgs(args)
	}
	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// Package app is the controller-facing action layer cli/*.go delegates to:
// everything needed to perform one user-facing operation (scan the bus,
// send a frame, print status) lives here, with every print routed through
// the output.Printer interface. Grounded on the teacher's LocoApp.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mpunie/govelbus/pkgs/config"
	"github.com/mpunie/govelbus/pkgs/controller"
	"github.com/mpunie/govelbus/pkgs/discovery"
	"github.com/mpunie/govelbus/pkgs/output"
	"github.com/mpunie/govelbus/pkgs/protodesc"
)

// VelbusApp is the controller-level object the CLI commands share: one
// loaded configuration, one connected controller.Controller, and the
// runtime parameters (debug flag, printer) the teacher's LocoApp also
// carries.
type VelbusApp struct {
	Config     *config.Configuration
	Controller *controller.Controller

	Debug bool
	P     output.Printer
}

// Initialize reads configuration and loads the protocol description. It
// runs once, after flag parsing, so commands know how to connect.
func (app *VelbusApp) Initialize() error {
	if app.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.Debug("Reading configuration files")
	cfg, cfgErr := config.NewConfig()
	app.Config = cfg
	if cfgErr != nil {
		return fmt.Errorf("cannot initialize app: %s", cfgErr)
	}

	logrus.Debug("Loading protocol description")
	res := <-protodesc.Load()
	if res.Err != nil {
		return fmt.Errorf("cannot initialize app: %s", res.Err)
	}

	cacheDir := app.Config.Server.CacheDir
	if cacheDir == "" {
		cacheDir = discovery.DefaultCacheDir()
	}
	app.Controller = controller.New(res.Description, cacheDir)
	return nil
}

// connect opens the bus connection described by the configuration (or dsn,
// if non-empty, overriding it). It does not scan; testOnly is passed on to
// Controller.Connect unchanged.
func (app *VelbusApp) connect(dsn string, testOnly bool) error {
	logrus.Debug("Connecting to the bus")
	if dsn == "" {
		dsn = app.Config.Server.Address
	}
	if err := app.Controller.Connect(dsn, testOnly); err != nil {
		return fmt.Errorf("cannot connect: %s", err)
	}
	return nil
}

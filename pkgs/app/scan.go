package app

import "fmt"

// ScanAction connects to the bus and drives a full discovery pass, per
// spec.md §4.G. force bypasses the on-disk cache and re-probes every
// address.
func (app *VelbusApp) ScanAction(dsn string, force bool) error {
	if err := app.connect(dsn, false); err != nil {
		return err
	}
	defer app.Controller.Stop()

	if err := app.Controller.Scan(force); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	modules := app.Controller.GetModules()
	app.P.Printf("Discovered %d module(s)\n", len(modules))
	for addr, m := range modules {
		app.P.Printf("  0x%02X  %s\n", addr, m.Name.String())
	}
	return nil
}

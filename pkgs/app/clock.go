package app

import "fmt"

// SyncClockAction connects to the bus and broadcasts the host's current
// time, date and daylight-saving state to every module, per spec.md §3.
func (app *VelbusApp) SyncClockAction(dsn string) error {
	if err := app.connect(dsn, true); err != nil {
		return err
	}
	defer app.Controller.Stop()

	if err := app.Controller.SyncClock(); err != nil {
		return fmt.Errorf("clock sync failed: %w", err)
	}
	app.P.Printf("Clock synced\n")
	return nil
}

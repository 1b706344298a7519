package app

import (
	"fmt"

	"github.com/mpunie/govelbus/pkgs/frame"
)

// SendAction connects to the bus in test-only mode (no discovery) and
// transmits one raw frame, for the debugging use case spec.md §8 calls out.
func (app *VelbusApp) SendAction(dsn string, address byte, rtr bool, data []byte) error {
	if err := app.connect(dsn, true); err != nil {
		return err
	}
	defer app.Controller.Stop()

	msg := frame.RawMessage{Priority: frame.PriorityLow, Address: address, RTR: rtr, Data: data}
	if err := app.Controller.Send(msg); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	app.P.Printf("Sent %s\n", msg.String())
	return nil
}

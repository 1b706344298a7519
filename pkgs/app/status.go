package app

import (
	"fmt"

	"github.com/mpunie/govelbus/pkgs/channel"
)

// StatusAction connects to the bus, runs a non-forced scan (modules with a
// cache file are rehydrated from it, every other address is probed), and
// prints every channel's current state for the requested address, or for
// every known module if address is 0.
func (app *VelbusApp) StatusAction(dsn string, address byte) error {
	if err := app.connect(dsn, false); err != nil {
		return err
	}
	defer app.Controller.Stop()

	if err := app.Controller.Scan(false); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if address != 0 {
		if _, ok := app.Controller.GetModule(address); !ok {
			return fmt.Errorf("no module known at address 0x%02X", address)
		}
	}

	for addr, m := range app.Controller.GetModules() {
		if address != 0 && addr != address {
			continue
		}
		app.P.Printf("0x%02X  %s (type 0x%02X)\n", addr, m.Name.String(), m.Type)
		for n, ch := range m.Channels() {
			app.P.Printf("  [%d] %-20s %s\n", n, ch.Name.String(), channelSummary(ch))
		}
	}
	return nil
}

// channelSummary renders the one or two fields most relevant to c's Kind,
// matching the teacher's PrintOutputsAction habit of a single compact
// human-readable line per entry.
func channelSummary(c *channel.Channel) string {
	switch c.Kind {
	case channel.KindRelay:
		return onOff(c.On)
	case channel.KindDimmer, channel.KindDaliDimmer:
		return fmt.Sprintf("level=%d", c.DimmerLevel)
	case channel.KindBlind:
		return fmt.Sprintf("%s position=%d", c.BlindState, c.BlindPosition)
	case channel.KindButton:
		return onOff(c.Closed)
	case channel.KindButtonCounter:
		return fmt.Sprintf("%d %s", c.Counter, c.Unit)
	case channel.KindTemperature:
		return fmt.Sprintf("%.1f°C", c.Temperature.Current)
	case channel.KindThermostat:
		return fmt.Sprintf("mode=%s status=%s", c.Mode, c.Status)
	case channel.KindMemo:
		return c.Text
	case channel.KindSelectedProgram:
		return c.Program
	default:
		return fmt.Sprintf("%.2f %s", c.NumericValue, c.ValueUnit)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Package controller is the public facade spec.md §3 describes: Connect,
// Scan, Send and the per-channel-kind operations a consumer (the CLI, an
// automation hub) drives a bus through. Grounded on commandstation/z21.go's
// role as the single object a caller holds onto, generalized from a fixed
// Station interface to the Velbus module/channel model.
package controller

import (
	"fmt"

	"github.com/mpunie/govelbus/pkgs/channel"
	"github.com/mpunie/govelbus/pkgs/discovery"
	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/handler"
	"github.com/mpunie/govelbus/pkgs/messages"
	"github.com/mpunie/govelbus/pkgs/module"
	"github.com/mpunie/govelbus/pkgs/protodesc"
	"github.com/mpunie/govelbus/pkgs/registry"
	"github.com/mpunie/govelbus/pkgs/transport"
)

// ErrNotConnected is returned by any operation issued before Connect, or
// after Stop.
var ErrNotConnected = fmt.Errorf("controller: not connected")

// ErrUnknownChannel is returned when a channel operation names a module or
// channel number this controller has no record of.
var ErrUnknownChannel = fmt.Errorf("controller: unknown module or channel")

// Sender is the narrow outbound interface the channel-operation helpers
// need; pkgs/transport.Engine implements it. Kept separate from the
// concrete *transport.Engine field so tests can exercise the operation
// helpers against a fake without opening a real connection.
type Sender interface {
	Send(msg frame.RawMessage) error
}

// Controller is the bus-wide object a caller constructs once and keeps for
// the life of the process: it owns the transport engine, the packet
// handler, the discovery scanner, and the protocol description they all
// share.
type Controller struct {
	engine  *transport.Engine
	sender  Sender
	handler *handler.Handler
	scanner *discovery.Scanner
	desc    *protodesc.Description
	reg     *registry.Registry

	cacheDir string
}

// New builds a Controller; the protocol description must already be loaded
// (see protodesc.Load), matching spec.md §4.D's "initialize once before any
// connection is opened".
func New(desc *protodesc.Description, cacheDir string) *Controller {
	reg := registry.New()
	messages.Register(reg)
	return &Controller{desc: desc, reg: reg, cacheDir: cacheDir}
}

// Connect parses dsn, opens the transport and wires the handler/discovery
// pipeline together. It never scans, whatever testOnly says; callers that
// want an inventory call Scan afterwards.
func (c *Controller) Connect(dsn string, testOnly bool) error {
	parsed, err := transport.ParseDSN(dsn)
	if err != nil {
		return err
	}

	var h *handler.Handler
	e := transport.New(parsed, func(msg frame.RawMessage) { h.Handle(msg) })
	h = handler.New(c.reg, c.desc, e)
	s := discovery.New(e, h, c.desc, c.cacheDir)
	h.SetScan(s)

	c.engine = e
	c.sender = e
	c.handler = h
	c.scanner = s

	// testOnly callers drive Send/raw frames by hand and never call Scan;
	// the transport and handler are wired regardless so Send still works.
	return e.Connect()
}

// Stop closes the transport and disables reconnection. Safe to call more
// than once.
func (c *Controller) Stop() {
	if c.engine != nil {
		c.engine.Stop()
	}
}

// Scan drives a full discovery pass (spec.md §4.G): forceRescan bypasses the
// cache and re-probes every address. Blocks until the Phase 3 watchdog
// settles, then persists the resulting inventory to the cache directory.
func (c *Controller) Scan(forceRescan bool) error {
	if c.scanner == nil {
		return ErrNotConnected
	}
	if err := c.scanner.Run(forceRescan); err != nil {
		return err
	}
	return c.scanner.SaveCache()
}

// Send transmits a raw frame, for callers that want to bypass the typed
// message layer entirely (spec.md §8).
func (c *Controller) Send(msg frame.RawMessage) error {
	if c.sender == nil {
		return ErrNotConnected
	}
	return c.sender.Send(msg)
}

// GetModule returns the module at address, if known.
func (c *Controller) GetModule(address byte) (*module.Module, bool) {
	if c.handler == nil {
		return nil, false
	}
	return c.handler.Module(address)
}

// GetModules returns every module this controller has discovered.
func (c *Controller) GetModules() map[byte]*module.Module {
	if c.handler == nil {
		return nil
	}
	return c.handler.Modules()
}

// GetChannels returns every channel of the module at address.
func (c *Controller) GetChannels(address byte) (map[int]*channel.Channel, error) {
	m, ok := c.GetModule(address)
	if !ok {
		return nil, ErrUnknownChannel
	}
	return m.Channels(), nil
}

// GetAll returns every channel across every module whose Kind carries the
// given category tag (spec.md §3's get_all(category), grounded on
// channels.py's is_load_disconnectable/is_counter-style predicates
// generalized to Kind.Categories()).
func (c *Controller) GetAll(category string) []*channel.Channel {
	var out []*channel.Channel
	for _, m := range c.GetModules() {
		for _, ch := range m.Channels() {
			for _, tag := range ch.Kind.Categories() {
				if tag == category {
					out = append(out, ch)
					break
				}
			}
		}
	}
	return out
}

func (c *Controller) channel(address byte, number int) (*module.Module, *channel.Channel, error) {
	m, ok := c.GetModule(address)
	if !ok {
		return nil, nil, ErrUnknownChannel
	}
	ch := m.Channel(number)
	if ch == nil {
		return nil, nil, ErrUnknownChannel
	}
	return m, ch, nil
}

func (c *Controller) send(address byte, msg interface{ EncodeData() []byte }) error {
	if c.sender == nil {
		return ErrNotConnected
	}
	return c.sender.Send(frame.RawMessage{
		Priority: frame.PriorityHigh,
		Address:  address,
		Data:     msg.EncodeData(),
	})
}

// TurnRelayOn/TurnRelayOff switch a single relay channel.
func (c *Controller) TurnRelayOn(address byte, number int) error {
	if _, _, err := c.channel(address, number); err != nil {
		return err
	}
	return c.send(address, &messages.SwitchRelayOn{Channels: []int{number}})
}

func (c *Controller) TurnRelayOff(address byte, number int) error {
	if _, _, err := c.channel(address, number); err != nil {
		return err
	}
	return c.send(address, &messages.SwitchRelayOff{Channels: []int{number}})
}

// SetDimmerLevel drives a dimmer channel to level (0-254) over transition
// seconds. DALI modules address a single device index rather than a bitmask
// (spec.md §4.G's DALI addressing note).
func (c *Controller) SetDimmerLevel(address byte, number int, level byte, transition uint16) error {
	_, ch, err := c.channel(address, number)
	if err != nil {
		return err
	}
	if ch.Kind == channel.KindDaliDimmer {
		msg := messages.NewDALISetDimmer()
		msg.Channels = []int{number}
		msg.State = level
		msg.TransitionTime = transition
		return c.send(address, msg)
	}
	return c.send(address, &messages.SetDimmer{Channels: []int{number}, State: level, TransitionTime: transition})
}

// RestoreDimmerLevel returns a dimmer channel to its previously remembered
// level (spec.md §4.E's dimmer-restore operation).
func (c *Controller) RestoreDimmerLevel(address byte, number int, transition uint16) error {
	_, ch, err := c.channel(address, number)
	if err != nil {
		return err
	}
	if ch.Kind == channel.KindDaliDimmer {
		msg := messages.NewDALIRestoreDimmer()
		msg.Channels = []int{number}
		msg.TransitionTime = transition
		return c.send(address, msg)
	}
	return c.send(address, &messages.RestoreDimmer{Channels: []int{number}, TransitionTime: transition})
}

// MoveBlind starts a blind moving up, down, or stops it, per spec.md §4.E.
func (c *Controller) MoveBlind(address byte, number int, direction string) error {
	if _, _, err := c.channel(address, number); err != nil {
		return err
	}
	if direction == "stop" {
		return c.send(address, &messages.CoverOff{Channel: number})
	}
	var position byte
	switch direction {
	case "up", "open":
		position = 0
	case "down", "close":
		position = 100
	default:
		return fmt.Errorf("controller: unknown blind direction %q", direction)
	}
	return c.send(address, &messages.SetBlindPosition{Channel: number, Position: position})
}

// SetBlindPosition drives a blind to an absolute 0-100 position, for the
// modern (Ng) blind controllers that support it.
func (c *Controller) SetBlindPosition(address byte, number int, position byte) error {
	if _, _, err := c.channel(address, number); err != nil {
		return err
	}
	return c.send(address, &messages.SetBlindPosition{Channel: number, Position: position})
}

// SetClimateMode switches a thermostat channel's mode
// (manual/run/sleep/safe), per spec.md §3's climate operations.
func (c *Controller) SetClimateMode(address byte, mode string, sleepMinutes uint16) error {
	if _, ok := c.GetModule(address); !ok {
		return ErrUnknownChannel
	}
	return c.send(address, messages.NewSwitchToClimateMode(mode, sleepMinutes))
}

// SelectProgram picks the module's active selectable program.
func (c *Controller) SelectProgram(address byte, name string) error {
	if _, ok := c.GetModule(address); !ok {
		return ErrUnknownChannel
	}
	return c.send(address, messages.NewSelectProgram(name))
}

// SetMemoText pages text to a module's memo display in 5-byte chunks, per
// SPEC_FULL.md §3's memo paging supplement.
func (c *Controller) SetMemoText(address byte, text string) error {
	if _, ok := c.GetModule(address); !ok {
		return ErrUnknownChannel
	}
	const chunk = 5
	for start := 0; start < len(text) || start == 0; start += chunk {
		end := start + chunk
		if end > len(text) {
			end = len(text)
		}
		msg := &messages.MemoText{Start: byte(start), Text: text[start:end]}
		if err := c.send(address, msg); err != nil {
			return err
		}
		if end >= len(text) {
			break
		}
	}
	return nil
}


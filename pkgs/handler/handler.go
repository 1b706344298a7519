// Package handler implements the single packet-handling entry point that
// turns a decoded frame into module state changes, per spec.md §4.F.
package handler

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/messages"
	"github.com/mpunie/govelbus/pkgs/module"
	"github.com/mpunie/govelbus/pkgs/protodesc"
	"github.com/mpunie/govelbus/pkgs/registry"
)

// moduleSubTypeBank maps the three ModuleSubType command bytes to the bank
// offset they carry (spec.md §4.F rule 3).
var moduleSubTypeBank = map[byte]byte{
	messages.CmdModuleSubTypeBank0: 0,
	messages.CmdModuleSubTypeBank4: 4,
	messages.CmdModuleSubTypeBank8: 8,
}

// nameOrMemoryCommands extends a module's inactivity timer during load,
// evidence it is still responding (spec.md §4.F rule 6).
var nameOrMemoryCommands = map[byte]bool{
	messages.CmdChannelNamePart1: true,
	messages.CmdChannelNamePart2: true,
	messages.CmdChannelNamePart3: true,
	0xFB:                         true, // RelayStatus, also used as a liveness signal during load
	messages.CmdMemoryData:       true,
	0xCC:                         true, // reserved name/memory command, kept for parity with spec.md
}

// Scan is the subset of discovery's state machine the handler drives:
// module creation on a ModuleType reply, cursor rewinding when a reply
// arrives from below the current address, and inactivity-timer resets that
// keep a module's load window open while it keeps responding.
type Scan interface {
	IsActive(address byte) bool
	// Acknowledge reports a ModuleType reply at address. The scan's own
	// cursor bookkeeping decides whether this rewinds the sweep (spec.md
	// §4.F rule 2: a reply below the current cursor means Velbuslink or a
	// parallel tool is interfering).
	Acknowledge(address byte, moduleType byte)
	ExtendInactivity(address byte)
}

// Sender lets the handler construct new Module instances that can issue
// their own load requests.
type Sender interface {
	Send(msg frame.RawMessage) error
}

// Handler is the process-wide packet dispatcher. Construct with New, wire a
// Scan observer with SetScan once discovery exists, then feed it every
// decoded RawMessage via Handle.
type Handler struct {
	mu       sync.RWMutex
	registry *registry.Registry
	desc     *protodesc.Description
	sender   Sender
	scan     Scan

	modules map[byte]*module.Module // primary address -> module
	aliases map[byte]byte           // sub-address -> primary address
}

// New builds a Handler. scan may be nil until discovery registers itself.
func New(reg *registry.Registry, desc *protodesc.Description, sender Sender) *Handler {
	return &Handler{
		registry: reg,
		desc:     desc,
		sender:   sender,
		modules:  make(map[byte]*module.Module),
		aliases:  make(map[byte]byte),
	}
}

// SetScan wires the discovery state machine after construction, avoiding an
// import cycle (discovery depends on handler to feed it frames).
func (h *Handler) SetScan(scan Scan) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scan = scan
}

// Module returns the module owning address (primary or sub-address).
func (h *Handler) Module(address byte) (*module.Module, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.moduleLocked(address)
}

func (h *Handler) moduleLocked(address byte) (*module.Module, bool) {
	if m, ok := h.modules[address]; ok {
		return m, true
	}
	if primary, ok := h.aliases[address]; ok {
		m, ok := h.modules[primary]
		return m, ok
	}
	return nil, false
}

// InsertModule registers a module the discovery engine built directly from
// a cache entry, bypassing the ModuleType-reply creation path of
// handleModuleType (spec.md §4.G "cache interaction").
func (h *Handler) InsertModule(address byte, m *module.Module) {
	h.mu.Lock()
	h.modules[address] = m
	h.mu.Unlock()
}

// Modules returns every known module keyed by primary address.
func (h *Handler) Modules() map[byte]*module.Module {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[byte]*module.Module, len(h.modules))
	for k, v := range h.modules {
		out[k] = v
	}
	return out
}

// Handle applies the six ordered rules of spec.md §4.F to one decoded frame.
func (h *Handler) Handle(raw frame.RawMessage) {
	// Rule 1: drop if address outside 1..254 or no command byte.
	if raw.Address < 1 || raw.Address > 254 {
		return
	}
	cmd, ok := raw.Command()
	if !ok {
		return
	}

	// Rule 2: ModuleType reply.
	if cmd == messages.CmdModuleType {
		h.handleModuleType(raw)
		return
	}

	// Rule 3: ModuleSubType replies.
	if bank, ok := moduleSubTypeBank[cmd]; ok {
		h.handleModuleSubType(raw, bank)
		return
	}

	// Rule 4: broadcast-to-ignore set.
	if h.desc != nil && h.desc.MessagesBroadCast[cmd] {
		return
	}

	// Rule 5: dispatch through the registry to module.on_message.
	h.dispatch(raw, cmd)

	// Rule 6: extend the inactivity timer for name/memory traffic.
	if nameOrMemoryCommands[cmd] {
		h.mu.RLock()
		scan := h.scan
		h.mu.RUnlock()
		if scan != nil {
			scan.ExtendInactivity(raw.Address)
		}
	}
}

func (h *Handler) handleModuleType(raw frame.RawMessage) {
	msg := &messages.ModuleType{}
	if err := msg.Populate(raw.Priority, raw.Address, raw.RTR, raw.DataOnly()); err != nil {
		logrus.WithError(err).Warn("handler: malformed ModuleType reply")
		return
	}

	h.mu.Lock()
	scan := h.scan
	existing, exists := h.modules[raw.Address]
	h.mu.Unlock()

	if exists {
		existing.OnMessage(messages.CmdModuleType, msg)
		if scan != nil && scan.IsActive(raw.Address) {
			scan.Acknowledge(raw.Address, msg.ModuleType)
		}
		return
	}

	desc, ok := h.descriptionFor(msg.ModuleType)
	if !ok {
		logrus.WithField("type", msg.ModuleType).Warn("handler: unknown module type")
		return
	}

	m := module.New(raw.Address, msg.ModuleType, desc, h.sender)
	h.mu.Lock()
	h.modules[raw.Address] = m
	h.mu.Unlock()
	m.OnMessage(messages.CmdModuleType, msg)

	// Acknowledge after insertion: the scan state machine's Acknowledge
	// looks the module back up via Module() to kick off its load sequence,
	// per spec.md §4.F rule 2 / §4.G Phase 2.
	if scan != nil && scan.IsActive(raw.Address) {
		scan.Acknowledge(raw.Address, msg.ModuleType)
	}
}

func (h *Handler) descriptionFor(moduleType byte) (*protodesc.ModuleDescription, bool) {
	if h.desc == nil {
		return nil, false
	}
	d, ok := h.desc.ModuleTypes[moduleType]
	return d, ok
}

func (h *Handler) handleModuleSubType(raw frame.RawMessage, bank byte) {
	m, ok := h.Module(raw.Address)
	if !ok {
		logrus.WithField("address", raw.Address).Warn("handler: ModuleSubType for unknown module")
		return
	}
	msg := &messages.ModuleSubType{Bank: bank}
	if err := msg.Populate(raw.Priority, raw.Address, raw.RTR, raw.DataOnly()); err != nil {
		logrus.WithError(err).Warn("handler: malformed ModuleSubType reply")
		return
	}
	m.OnMessage(raw.Data[0], msg)

	h.mu.Lock()
	for _, sub := range []byte{msg.SubAddress1, msg.SubAddress2, msg.SubAddress3, msg.SubAddress4} {
		if sub != 0 {
			h.aliases[sub] = raw.Address
		}
	}
	h.mu.Unlock()
}

func (h *Handler) dispatch(raw frame.RawMessage, cmd byte) {
	m, ok := h.Module(raw.Address)
	if !ok {
		logrus.WithFields(logrus.Fields{"address": raw.Address, "command": cmd}).
			Debug("handler: frame for unknown module, dropping")
		return
	}
	if h.registry == nil {
		return
	}
	ctor, ok := h.registry.Get(cmd, m.Type)
	if !ok {
		logrus.WithFields(logrus.Fields{"address": raw.Address, "command": cmd, "moduleType": m.Type}).
			Debug("handler: unknown command for this module")
		return
	}
	msg := ctor()
	if err := msg.Populate(raw.Priority, raw.Address, raw.RTR, raw.DataOnly()); err != nil {
		logrus.WithError(err).Warn("handler: failed to populate message")
		return
	}
	if err := m.OnMessage(cmd, msg); err != nil {
		logrus.WithError(err).Debug("handler: module did not handle message")
	}
}

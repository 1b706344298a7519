// Package discovery drives the multi-stage scan that turns a bus full of
// silent addresses into a fully populated module inventory: the Phase 1
// address sweep, the Phase 2 per-module load window, and the Phase 3
// completion watchdog, per spec.md §4.G. Grounded on scanner.py's state
// machine, expressed as explicit phases over channels/timers instead of the
// original's asyncio tasks+events (spec.md §9 "coroutines / event loop").
package discovery

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/messages"
	"github.com/mpunie/govelbus/pkgs/module"
	"github.com/mpunie/govelbus/pkgs/protodesc"
)

// Scan timeouts and the overall load budget, matching spec.md §6 exactly.
const (
	ModuleTypeTimeout         = 2 * time.Second
	ModuleInfoInitialTimeout  = 1 * time.Second
	ModuleInfoIntervalTimeout = 150 * time.Millisecond
	LoadTimeout               = 600 * time.Second

	perModuleBudget  = 30 * time.Second
	watchdogInterval = 15 * time.Second

	firstAddress = byte(1)
	lastAddress  = byte(254)
)

// Sender is the narrow outbound interface the scanner needs to probe
// addresses; pkgs/transport.Engine implements it.
type Sender interface {
	Send(msg frame.RawMessage) error
}

// ModuleRegistry is the subset of handler.Handler the scan engine drives:
// lookup, cache-path insertion, and full enumeration for the Phase 3
// watchdog. Kept as an interface so discovery and handler don't import each
// other directly; handler.Handler satisfies it and is handed in at wiring
// time by the controller.
type ModuleRegistry interface {
	Module(address byte) (*module.Module, bool)
	Modules() map[byte]*module.Module
	InsertModule(address byte, m *module.Module)
}

// Scanner is the process-wide discovery state machine. It implements
// handler.Scan (IsActive/Acknowledge/ExtendInactivity) so the packet handler
// can drive it without a direct import cycle.
type Scanner struct {
	mu       sync.Mutex
	sender   Sender
	modules  ModuleRegistry
	desc     *protodesc.Description
	cacheDir string

	cursor  byte
	active  bool
	replyCh chan byte

	inactivity map[byte]*time.Timer
}

// New builds a Scanner. cacheDir == "" disables cache interaction entirely
// (every address gets a fresh Phase 1 probe).
func New(sender Sender, modules ModuleRegistry, desc *protodesc.Description, cacheDir string) *Scanner {
	return &Scanner{
		sender:     sender,
		modules:    modules,
		desc:       desc,
		cacheDir:   cacheDir,
		inactivity: make(map[byte]*time.Timer),
	}
}

// IsActive reports whether address is the address the Phase 1 sweep is
// currently waiting on a ModuleType reply for.
func (s *Scanner) IsActive(address byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.cursor == address
}

// Acknowledge reports a ModuleType reply at address, per spec.md §4.F rule
// 2: a reply below the current cursor means Velbuslink or a parallel tool
// is interfering, so the cursor rewinds and requeries (the Open Question
// decision recorded in SPEC_FULL.md §4). It also kicks off the freshly
// created module's Phase 2 load sequence and arms its inactivity timer.
func (s *Scanner) Acknowledge(address byte, moduleType byte) {
	s.mu.Lock()
	if address < s.cursor {
		logrus.WithFields(logrus.Fields{"address": address, "cursor": s.cursor}).
			Warn("discovery: module type reply below scan cursor, rewinding")
		s.cursor = address
	}
	ch := s.replyCh
	s.mu.Unlock()

	if m, ok := s.modules.Module(address); ok {
		go func() {
			if err := m.Load(); err != nil {
				logrus.WithError(err).WithField("address", address).Warn("discovery: module load request failed")
			}
		}()
		s.armInactivity(address)
	}

	if ch != nil {
		select {
		case ch <- moduleType:
		default:
		}
	}
}

// ExtendInactivity extends address's Phase 2 inactivity budget, evidence the
// module is still responding to the load (spec.md §4.F rule 6).
func (s *Scanner) ExtendInactivity(address byte) {
	s.armInactivity(address)
}

func (s *Scanner) armInactivity(address byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.inactivity[address]; ok {
		t.Reset(ModuleInfoIntervalTimeout)
		return
	}
	s.inactivity[address] = time.AfterFunc(ModuleInfoInitialTimeout, func() {
		s.mu.Lock()
		delete(s.inactivity, address)
		s.mu.Unlock()
	})
}

// Run performs one full discovery pass: a cache-driven rehydration or a
// fresh Phase 1 sweep per address (forceRescan forces the latter for every
// address), then the Phase 3 completion watchdog. It blocks until the sweep
// finishes and the watchdog settles, per spec.md §4.G.
func (s *Scanner) Run(forceRescan bool) error {
	for addr := firstAddress; ; addr++ {
		if !forceRescan && s.tryCacheHit(addr) {
			if addr == lastAddress {
				break
			}
			continue
		}
		s.sweepAddress(addr)
		if addr == lastAddress {
			break
		}
	}
	s.watch()
	return nil
}

// tryCacheHit rehydrates a module directly from its cache file, bypassing
// the Phase 1 probe for this address, per spec.md §4.G "cache interaction".
func (s *Scanner) tryCacheHit(addr byte) bool {
	if s.cacheDir == "" {
		return false
	}
	cm, ok := loadCache(s.cacheDir, addr)
	if !ok {
		return false
	}
	desc, ok := s.desc.ModuleTypes[cm.Type]
	if !ok {
		return false
	}

	m := module.New(addr, cm.Type, desc, s.sender)
	m.PrepareChannels()
	rehydrate(m, cm)
	s.modules.InsertModule(addr, m)

	if err := m.RefreshStatus(); err != nil {
		logrus.WithError(err).WithField("address", addr).Warn("discovery: failed to refresh cached module status")
	}
	return true
}

// sweepAddress is one Phase 1 step: send ModuleTypeRequest and wait up to
// ModuleTypeTimeout for a reply to land via Acknowledge. A timeout means the
// address is empty and the sweep advances.
func (s *Scanner) sweepAddress(addr byte) {
	s.mu.Lock()
	s.cursor = addr
	s.active = true
	ch := make(chan byte, 1)
	s.replyCh = ch
	s.mu.Unlock()

	if err := s.sender.Send(moduleTypeRequest(addr)); err != nil {
		logrus.WithError(err).WithField("address", addr).Warn("discovery: failed to send ModuleTypeRequest")
	}

	select {
	case <-ch:
	case <-time.After(ModuleTypeTimeout):
	}

	s.mu.Lock()
	s.active = false
	s.replyCh = nil
	s.mu.Unlock()
}

// moduleTypeRequest builds the RTR probe frame for addr, per modulestatus.go's
// note that the request itself isn't a typed message: an empty-data RTR
// frame on CmdModuleType (0xFF).
func moduleTypeRequest(addr byte) frame.RawMessage {
	return frame.RawMessage{
		Priority: frame.PriorityLow,
		Address:  addr,
		RTR:      true,
		Data:     []byte{messages.CmdModuleType},
	}
}

// watch is the Phase 3 completion watchdog: poll every watchdogInterval
// until every known module reports IsLoaded(), or until
// min(len(modules)*perModuleBudget, LoadTimeout) elapses, whichever is
// first. On timeout the partial inventory is kept and a warning logged.
func (s *Scanner) watch() {
	deadline := time.After(s.overallBudget())
	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()

	for {
		if s.allLoaded() {
			return
		}
		select {
		case <-ticker.C:
			continue
		case <-deadline:
			logrus.Warn("discovery: overall load timeout reached, keeping partial inventory")
			return
		}
	}
}

func (s *Scanner) overallBudget() time.Duration {
	n := len(s.modules.Modules())
	budget := time.Duration(n) * perModuleBudget
	if budget > LoadTimeout || budget == 0 {
		return LoadTimeout
	}
	return budget
}

func (s *Scanner) allLoaded() bool {
	for _, m := range s.modules.Modules() {
		if !m.IsLoaded() {
			return false
		}
	}
	return true
}

// SaveCache persists every currently known module's state to disk. It is
// the only path that writes cache files; state changes between calls are
// not written. Errors for one module are logged, not fatal to the rest of
// the batch.
func (s *Scanner) SaveCache() error {
	if s.cacheDir == "" {
		return fmt.Errorf("discovery: no cache directory configured")
	}
	for _, m := range s.modules.Modules() {
		if err := saveCache(s.cacheDir, m); err != nil {
			logrus.WithError(err).WithField("address", m.Address).Warn("discovery: failed to save module cache")
		}
	}
	return nil
}

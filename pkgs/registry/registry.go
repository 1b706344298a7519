// Package registry implements the (command byte, module type) -> message
// constructor lookup used to turn a decoded frame into a typed message.
package registry

import "fmt"

// Message is the common interface every typed message implements. See
// package messages.
type Message interface {
	Populate(priority, address byte, rtr bool, data []byte) error
	EncodeData() []byte
}

// Constructor builds a fresh, zero-valued message ready for Populate or for
// field assignment before EncodeData.
type Constructor func() Message

// Registry is the process-wide (command, module type) -> constructor map.
// Registration happens once at startup; after that it is read-only.
type Registry struct {
	defaults  map[byte]Constructor
	overrides map[byte]map[byte]Constructor
}

func New() *Registry {
	return &Registry{
		defaults:  make(map[byte]Constructor),
		overrides: make(map[byte]map[byte]Constructor),
	}
}

// RegisterDefault registers the constructor used for cmd across every
// module type that doesn't have an override. Registering the same command
// twice is a programmer error and panics, matching the "fail at load"
// contract in spec.md §4.B.
func (r *Registry) RegisterDefault(cmd byte, ctor Constructor) {
	if _, exists := r.defaults[cmd]; exists {
		panic(fmt.Sprintf("registry: duplicate default registration for command 0x%02X", cmd))
	}
	r.defaults[cmd] = ctor
}

// RegisterOverride registers the constructor used for cmd on a specific
// module type, taking precedence over the default.
func (r *Registry) RegisterOverride(cmd byte, moduleType byte, ctor Constructor) {
	m, ok := r.overrides[moduleType]
	if !ok {
		m = make(map[byte]Constructor)
		r.overrides[moduleType] = m
	}
	if _, exists := m[cmd]; exists {
		panic(fmt.Sprintf("registry: duplicate override registration for command 0x%02X on module type 0x%02X", cmd, moduleType))
	}
	m[cmd] = ctor
}

// Get returns the constructor for (cmd, moduleType): override first, then
// default, then ok=false.
func (r *Registry) Get(cmd byte, moduleType byte) (Constructor, bool) {
	if m, ok := r.overrides[moduleType]; ok {
		if ctor, ok := m[cmd]; ok {
			return ctor, true
		}
	}
	ctor, ok := r.defaults[cmd]
	return ctor, ok
}

// Has reports whether a constructor is registered for (cmd, moduleType).
func (r *Registry) Has(cmd byte, moduleType byte) bool {
	_, ok := r.Get(cmd, moduleType)
	return ok
}

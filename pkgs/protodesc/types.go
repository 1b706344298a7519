// Package protodesc holds the static, read-only-after-init protocol
// description: for every known module type, its channel layout and memory
// map, plus the set of broadcast commands to ignore. It is process-wide, populated once by
// Load, grounded on the velbusaio "ModuleTypes" table shipped as
// protocol.json.
package protodesc

// ChannelDescriptor describes one declared channel slot of a module type.
type ChannelDescriptor struct {
	Type     string // channel.Kind name, e.g. "Relay", "Dimmer", "ThermostatChannel"
	Name     string // default name, used until the real name is learned
	Editable bool   // whether ChannelNameRequest applies to this channel
}

// MemoryDirective describes what a ReadDataFromMemory reply at a given
// address means for this module type.
type MemoryDirective struct {
	// ModuleNamePosition, when >= 0, marks this memory address as carrying
	// the module-name character at this buffer position (0-based).
	ModuleNamePosition int
	IsModuleName       bool

	// Match entries decode a sensor-unit / pulse-per-unit byte into a
	// channel attribute, as used by VMB7IN/VMB4AN memory dumps.
	Match []MatchEntry
}

// MatchEntry maps a bit pattern (8 chars of '0'/'1'/'#' wildcard) found at
// the memory byte to a channel attribute assignment.
type MatchEntry struct {
	Pattern string
	Channel int
	SubName string // "Unit" or "PulsePerUnits"; entries with any other SubName are ignored
	Value   string
}

// ChannelNumberMap remaps a raw channel/bit index to the logical channel
// number the module model uses, for module families whose name/command
// addressing does not match their physical channel numbering 1:1.
type ChannelNumberMap map[string]int // hex-encoded raw index -> channel number

// ModuleDescription is the static per-module-type entry of the protocol
// description.
type ModuleDescription struct {
	Type             byte
	Name             string
	Channels         map[int]ChannelDescriptor
	Memory           map[string]MemoryDirective // hex address -> directive
	ChannelNameMap   ChannelNumberMap           // "ChannelNumbers.Name.Map"
	AllChannelStatus bool
	// TemperatureChannel is the synthetic/physical channel number that
	// SensorTemperature/TempSensorStatus updates, when this module type has
	// exactly one.
	TemperatureChannel int
	HasTemperature     bool
	// ThermostatChannels lists the synthetic boolean channel numbers
	// (Heater/Boost/Pump/Cooler/Alarm1..4) derived from TempSensorStatus.
	ThermostatChannels map[string]int
	// IsDALI marks module types whose channels are discovered at runtime
	// (placeholders replaced or removed from DALI device replies) instead of
	// being taken from Channels alone.
	IsDALI bool
}

// Description is the full, process-wide protocol description.
type Description struct {
	ModuleTypes map[byte]*ModuleDescription
	// MessagesBroadCast is the set of command bytes silently ignored when
	// received as a broadcast/global message.
	MessagesBroadCast map[byte]bool
}

func (d *Description) TypeName(t byte) string {
	if m, ok := d.ModuleTypes[t]; ok {
		return m.Name
	}
	return "unknown"
}

// Package channel models the per-channel state a Velbus module exposes:
// relays, dimmers, blinds, buttons, counters, sensors and the synthetic
// thermostat-mode channels, each tagged with the categories a consumer
// (an automation hub, a CLI) uses to decide how to present it.
package channel

import "sync"

// Kind distinguishes the channel variants a module can expose.
type Kind int

const (
	KindRelay Kind = iota
	KindDimmer
	KindBlind
	KindButton
	KindButtonCounter
	KindSensor
	KindThermostat
	KindTemperature
	KindSensorNumber
	KindLightSensor
	KindEdgeLit
	KindMemo
	KindSelectedProgram
	KindDaliDimmer
)

// String renders the kind the way the protocol description's Channels.Type
// field spells it, the same names module.go's channelKinds table maps from;
// KindDaliDimmer renders as "Dimmer". Discovery's cache stores this name.
func (k Kind) String() string {
	switch k {
	case KindRelay:
		return "Relay"
	case KindDimmer:
		return "Dimmer"
	case KindBlind:
		return "Blind"
	case KindButton:
		return "Button"
	case KindButtonCounter:
		return "ButtonCounter"
	case KindSensor:
		return "Sensor"
	case KindThermostat:
		return "ThermostatChannel"
	case KindTemperature:
		return "Temperature"
	case KindSensorNumber:
		return "SensorNumber"
	case KindLightSensor:
		return "LightSensor"
	case KindEdgeLit:
		return "EdgeLit"
	case KindMemo:
		return "Memo"
	case KindSelectedProgram:
		return "SelectedProgram"
	case KindDaliDimmer:
		return "Dimmer"
	default:
		return "Sensor"
	}
}

// Categories tags a channel kind with the consumer-facing roles it plays,
// mirroring how the original library exposes is_load_disconnectable /
// is_counter / is_temperature style predicates as a single tag set instead
// of a scattered set of boolean methods.
func (k Kind) Categories() []string {
	switch k {
	case KindRelay:
		return []string{"switch"}
	case KindDimmer, KindDaliDimmer:
		return []string{"light"}
	case KindBlind:
		return []string{"cover"}
	case KindButton:
		return []string{"binary_sensor", "button"}
	case KindButtonCounter:
		return []string{"sensor", "counter"}
	case KindSensor:
		return []string{"binary_sensor"}
	case KindThermostat:
		return []string{"climate", "binary_sensor"}
	case KindTemperature:
		return []string{"sensor", "climate"}
	case KindSensorNumber, KindLightSensor:
		return []string{"sensor"}
	case KindEdgeLit:
		return []string{"led"}
	case KindMemo:
		return []string{"text"}
	case KindSelectedProgram:
		return []string{"select"}
	default:
		return nil
	}
}

// Channel is the address-scoped unit of state a module exposes. Most fields
// below are only meaningful for the Kind the channel actually has; unused
// fields stay at their zero value, matching how the Python original keeps a
// single Channel dataclass per module family and only populates the
// attributes that family's messages touch.
type Channel struct {
	mu sync.Mutex

	Address byte
	Number  int
	Kind    Kind
	Name    NameBuffer
	Editable bool

	// Relay / Button / led state
	On       bool
	Inhibited bool
	ForcedOn bool
	Disabled bool
	Closed   bool
	LongPress bool
	LedState string // "off", "on", "slow", "fast"

	// Dimmer / slider / DALI
	DimmerLevel         byte
	PreviousDimmerLevel byte
	DaliGroups          []int

	// Blind
	BlindState    string // "stopped", "opening", "closing"
	BlindPosition byte

	// ButtonCounter
	Pulses        int
	Counter       uint32
	PulsesPerUnit int
	Unit          string
	Rate          float64

	// Temperature / ThermostatChannel
	Temperature TemperatureState
	Mode        string
	Status      string
	SleepTimer  uint16

	// SensorNumber / LightSensor
	NumericValue float64
	ValueUnit    string

	// Memo / SelectedProgram
	Text    string
	Program string

	onUpdate []func(*Channel)
}

// New builds a channel of the given kind at the given 1-based number.
func New(address byte, number int, kind Kind) *Channel {
	return &Channel{Address: address, Number: number, Kind: kind}
}

// OnUpdate registers a callback invoked after any mutating Apply* call.
func (c *Channel) OnUpdate(fn func(*Channel)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = append(c.onUpdate, fn)
}

func (c *Channel) notify() {
	for _, fn := range c.onUpdate {
		fn(c)
	}
}

// NamePart feeds one name_part1/2/3 fragment into the channel's name buffer.
func (c *Channel) NamePart(index int, fragment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Name.AddPart(index, fragment) {
		c.notify()
	}
}

// NamePosition feeds one byte-position memory directive into the name buffer.
func (c *Channel) NamePosition(position int, char byte, save bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Name.AddPosition(position, char, save) {
		c.notify()
	}
}

// ApplyRelay updates relay on/off and inhibit/forced state.
func (c *Channel) ApplyRelay(on, inhibited, forcedOn, disabled bool) {
	c.mu.Lock()
	c.On, c.Inhibited, c.ForcedOn, c.Disabled = on, inhibited, forcedOn, disabled
	c.mu.Unlock()
	c.notify()
}

// ApplyDimmer updates the current dimmer level, remembering the previous
// level so a later "restore" operation can recover it.
func (c *Channel) ApplyDimmer(level byte) {
	c.mu.Lock()
	if c.DimmerLevel != level {
		c.PreviousDimmerLevel = c.DimmerLevel
	}
	c.DimmerLevel = level
	c.mu.Unlock()
	c.notify()
}

// ApplyBlind updates blind motion state and, for modern blind controllers,
// the absolute position.
func (c *Channel) ApplyBlind(state string, position byte, havePosition bool) {
	c.mu.Lock()
	c.BlindState = state
	if havePosition {
		c.BlindPosition = position
	}
	c.mu.Unlock()
	c.notify()
}

// ApplyButton updates push-button closed/long-press state.
func (c *Channel) ApplyButton(closed, long bool) {
	c.mu.Lock()
	c.Closed, c.LongPress = closed, long
	c.mu.Unlock()
	c.notify()
}

// ApplyCounter updates pulse counter state and its derived rate.
func (c *Channel) ApplyCounter(pulses int, counter uint32, rate float64, unit string) {
	c.mu.Lock()
	c.Pulses, c.Counter, c.Rate, c.Unit = pulses, counter, rate, unit
	c.mu.Unlock()
	c.notify()
}

// ApplyTemperature reconciles a newly received (value, precision) reading.
func (c *Channel) ApplyTemperature(value, precision float64) {
	c.mu.Lock()
	c.Temperature.Update(value, precision)
	c.mu.Unlock()
	c.notify()
}

// ApplyThermostatStatus updates the synthetic climate-mode bookkeeping a
// thermostat channel carries (mode name, status name, sleep timer).
func (c *Channel) ApplyThermostatStatus(mode, status string, sleep uint16) {
	c.mu.Lock()
	c.Mode, c.Status, c.SleepTimer = mode, status, sleep
	c.mu.Unlock()
	c.notify()
}

// ApplyNumeric updates a sensor-number or light-sensor reading.
func (c *Channel) ApplyNumeric(value float64, unit string) {
	c.mu.Lock()
	c.NumericValue, c.ValueUnit = value, unit
	c.mu.Unlock()
	c.notify()
}

// ApplyMemo replaces the assembled memo text.
func (c *Channel) ApplyMemo(text string) {
	c.mu.Lock()
	c.Text = text
	c.mu.Unlock()
	c.notify()
}

// ApplyProgram updates the selected-program name.
func (c *Channel) ApplyProgram(name string) {
	c.mu.Lock()
	c.Program = name
	c.mu.Unlock()
	c.notify()
}

// ApplyLed updates the LED feedback state of a button channel.
func (c *Channel) ApplyLed(state string) {
	c.mu.Lock()
	c.LedState = state
	c.mu.Unlock()
	c.notify()
}

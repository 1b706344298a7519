// Package module models one physical Velbus module: its identity, its
// channels, and the load sequence that turns a freshly discovered address
// into a fully-named, ready-to-use module. Grounded on module.py.
package module

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/mpunie/govelbus/pkgs/channel"
	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/messages"
	"github.com/mpunie/govelbus/pkgs/protodesc"
)

// Sender is the narrow outbound interface a Module needs during load and
// while relaying channel commands; pkgs/transport.Engine implements it.
type Sender interface {
	Send(msg frame.RawMessage) error
}

var channelKinds = map[string]channel.Kind{
	"Relay":           channel.KindRelay,
	"Dimmer":          channel.KindDimmer,
	"Blind":           channel.KindBlind,
	"Button":          channel.KindButton,
	"ButtonCounter":   channel.KindButtonCounter,
	"Sensor":          channel.KindSensor,
	"Temperature":     channel.KindTemperature,
	"SensorNumber":    channel.KindSensorNumber,
	"LightSensor":     channel.KindLightSensor,
	"EdgeLit":         channel.KindEdgeLit,
	"Memo":            channel.KindMemo,
	"SelectedProgram": channel.KindSelectedProgram,
	"ThermostatChannel": channel.KindThermostat,
}

// Module is a single addressed Velbus device, possibly spanning several bus
// addresses via sub-addresses (each covering an 8-channel bank).
type Module struct {
	mu sync.Mutex

	Address byte
	Type    byte
	desc    *protodesc.ModuleDescription
	sender  Sender

	Name          NameState
	SubAddresses  map[byte]byte // bank (0,4,8) -> sub address
	Serial        uint32
	MemoryMapVersion byte
	BuildYear     byte
	BuildWeek     byte

	channels map[int]*channel.Channel

	loading bool
	loaded  bool
	onLoad  []func(*Module)
}

// NameState tracks the module-level name, assembled from MemoryData replies
// rather than ChannelNamePart messages.
type NameState = channel.NameBuffer

// New builds a Module shell for address/moduleType; load() still needs to
// run before channels and identity are populated.
func New(address, moduleType byte, desc *protodesc.ModuleDescription, sender Sender) *Module {
	return &Module{
		Address:      address,
		Type:         moduleType,
		desc:         desc,
		sender:       sender,
		SubAddresses: make(map[byte]byte),
		channels:     make(map[int]*channel.Channel),
	}
}

// Addresses returns this module's primary address plus every known
// sub-address, the set of bus addresses that route to this Module.
func (m *Module) Addresses() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []byte{m.Address}
	for _, a := range m.SubAddresses {
		out = append(out, a)
	}
	return out
}

// Channel returns the channel at number, or nil if not declared.
func (m *Module) Channel(number int) *channel.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels[number]
}

// Channels returns every declared channel.
func (m *Module) Channels() map[int]*channel.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]*channel.Channel, len(m.channels))
	for k, v := range m.channels {
		out[k] = v
	}
	return out
}

// OnLoaded registers a callback fired once every declared channel has a
// name, matching spec.md's "a module is loaded when all its channels are".
func (m *Module) OnLoaded(fn func(*Module)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		fn(m)
		return
	}
	m.onLoad = append(m.onLoad, fn)
}

// IsLoaded reports (and, on first true observation, fires OnLoaded
// callbacks for) whether every declared channel has finished naming.
func (m *Module) IsLoaded() bool {
	m.mu.Lock()
	if m.loaded {
		m.mu.Unlock()
		return true
	}
	for _, c := range m.channels {
		if !c.Name.Complete() {
			m.mu.Unlock()
			return false
		}
	}
	m.loaded = true
	callbacks := m.onLoad
	m.onLoad = nil
	m.mu.Unlock()
	for _, cb := range callbacks {
		cb(m)
	}
	return true
}

// Load drives the request sequence that populates this module's identity
// and channel names: default channels from the protocol description, a
// module-status request (if this type defines one), then a per-channel (or
// all-at-once) channel name request. Idempotent: a second call while
// loading is already in flight is a no-op, matching module.py's handling of
// sub-addresses routing back to the same Module.
func (m *Module) Load() error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	if m.desc != nil && m.desc.IsDALI {
		m.loadDaliPlaceholders()
		m.mu.Unlock()
		return m.requestDaliScan()
	}
	m.loadDefaultChannels()
	m.mu.Unlock()

	if err := m.requestModuleStatus(); err != nil {
		return err
	}
	if err := m.requestCounterStatus(); err != nil {
		return err
	}
	if err := m.requestChannelNames(); err != nil {
		return err
	}
	return m.requestMemory()
}

// daliChannelCount is the number of placeholder logical devices a VMBDALI
// module starts with before its DaliDeviceSetting replies resolve which
// channels actually carry a device, per spec.md §4.G.
const daliChannelCount = 64

// loadDaliPlaceholders creates the 64 placeholder device channels a VMBDALI
// module's load sequence starts from; must be called with m.mu held.
func (m *Module) loadDaliPlaceholders() {
	for n := 1; n <= daliChannelCount; n++ {
		c := channel.New(m.Address, n, channel.KindSensor)
		c.Editable = false
		c.Name.SetComplete(fmt.Sprintf("Channel %d", n))
		m.channels[n] = c
	}
}

// requestDaliScan issues the "all channels, all settings" DaliDeviceSettings
// request that drives DeviceType/GroupMembers replies for every placeholder.
func (m *Module) requestDaliScan() error {
	return m.send(messages.CmdDaliDeviceSettingsRequest, messages.NewDaliScanAllRequest())
}

// PrepareChannels populates this module's channel set from the protocol
// description without issuing any bus traffic, the part of Load a
// cache-rehydrated module needs before its cached names are applied.
func (m *Module) PrepareChannels() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) > 0 {
		return
	}
	m.loadDefaultChannels()
}

// RefreshStatus re-issues the module/counter status requests without
// re-requesting channel names or memory, matching spec.md §4.G's cache path
// ("rehydrate the module from it, replay a ModuleStatusRequest to refresh
// runtime state, and skip Phase 1 for that address").
func (m *Module) RefreshStatus() error {
	if err := m.requestModuleStatus(); err != nil {
		return err
	}
	return m.requestCounterStatus()
}

// requestCounterStatus issues one CounterStatusRequest if this module
// declares any ButtonCounter channel, per spec.md §4.G Phase 2 step i
// (CounterStatusRequest addresses all four counter channels in one frame,
// same as ModuleStatusRequest does for the other eight).
func (m *Module) requestCounterStatus() error {
	if !m.hasCounterChannel() {
		return nil
	}
	return m.send(messages.CmdCounterStatusRequest, &messages.CounterStatusRequest{})
}

func (m *Module) hasCounterChannel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.channels {
		if c.Kind == channel.KindButtonCounter {
			return true
		}
	}
	return false
}

// requestMemory issues ReadDataFromMemory for every address the protocol
// description lists for this module type, per spec.md §4.G Phase 2 step iii.
func (m *Module) requestMemory() error {
	if m.desc == nil {
		return nil
	}
	for key := range m.desc.Memory {
		addr, err := strconv.ParseUint(key, 16, 16)
		if err != nil {
			continue
		}
		req := &messages.ReadDataFromMemory{HighAddress: byte(addr >> 8), LowAddress: byte(addr)}
		if err := m.send(messages.CmdReadDataFromMemory, req); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) loadDefaultChannels() {
	if m.desc == nil {
		return
	}
	for number, cd := range m.desc.Channels {
		kind, ok := channelKinds[cd.Type]
		if !ok {
			kind = channel.KindSensor
		}
		c := channel.New(m.Address, number, kind)
		c.Editable = cd.Editable
		if !cd.Editable {
			c.Name.SetComplete(cd.Name)
		}
		m.channels[number] = c
	}
	if m.desc.HasTemperature && m.desc.TemperatureChannel != 0 {
		if _, ok := m.channels[m.desc.TemperatureChannel]; !ok {
			c := channel.New(m.Address, m.desc.TemperatureChannel, channel.KindTemperature)
			c.Name.SetComplete("Temperature")
			m.channels[m.desc.TemperatureChannel] = c
		}
	}
	for name, number := range m.desc.ThermostatChannels {
		if _, ok := m.channels[number]; !ok {
			c := channel.New(m.Address, number, channel.KindThermostat)
			c.Name.SetComplete(name)
			m.channels[number] = c
		}
	}
}

func (m *Module) requestModuleStatus() error {
	if m.desc == nil || len(m.desc.Channels) == 0 {
		return nil
	}
	req := &messages.ModuleStatusRequest{Channels: m.channelNumbers()}
	return m.send(messages.CmdModuleStatusRequest, req)
}

func (m *Module) requestChannelNames() error {
	if m.desc != nil && m.desc.AllChannelStatus {
		return m.send(messages.CmdChannelNameRequest, &messages.ChannelNameRequest{All: true})
	}
	for _, number := range m.channelNumbers() {
		req := &messages.ChannelNameRequest{Channels: []int{number}}
		if err := m.send(messages.CmdChannelNameRequest, req); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) channelNumbers() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.channels))
	for n := range m.channels {
		out = append(out, n)
	}
	return out
}

func (m *Module) send(cmd byte, msg interface{ EncodeData() []byte }) error {
	if m.sender == nil {
		return nil
	}
	return m.sender.Send(frame.RawMessage{
		Priority: frame.PriorityLow,
		Address:  m.Address,
		Data:     msg.EncodeData(),
	})
}

// OnMessage applies a decoded, typed message to this module's state. It is
// the single fan-in point the handler package routes every addressed frame
// through, mirroring module.py's on_message dispatch.
func (m *Module) OnMessage(cmd byte, msg interface{}) error {
	switch v := msg.(type) {
	case *messages.ChannelNamePart1:
		m.applyNamePart(1, v.Channel, v.Fragment)
	case *messages.ChannelNamePart2:
		m.applyNamePart(2, v.Channel, v.Fragment)
	case *messages.ChannelNamePart3:
		m.applyNamePart(3, v.Channel, v.Fragment)

	case *messages.MemoryData:
		m.applyMemoryData(v)

	case *messages.ModuleType:
		m.mu.Lock()
		m.Serial, m.MemoryMapVersion, m.BuildYear, m.BuildWeek = v.Serial, v.MemoryMapVersion, v.BuildYear, v.BuildWeek
		m.mu.Unlock()

	case *messages.ModuleSubType:
		m.mu.Lock()
		for i, sub := range []byte{v.SubAddress1, v.SubAddress2, v.SubAddress3, v.SubAddress4} {
			if sub != 0 {
				m.SubAddresses[v.Bank+byte(i)] = sub
			}
		}
		m.mu.Unlock()

	case *messages.RelayStatus:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyRelay(v.On(), v.DisableInhibited == messages.RelayInhibited,
				v.DisableInhibited == messages.RelayForcedOn, v.DisableInhibited == messages.RelayDisabled)
		}
	case *messages.RelayStatusVMB4RY:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyRelay(v.On(), v.DisableInhibited == messages.RelayInhibited,
				v.DisableInhibited == messages.RelayForcedOn, v.DisableInhibited == messages.RelayDisabled)
		}

	case *messages.DimmerChannelStatus:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyDimmer(v.State)
		}
	case *messages.DimmerStatus:
		if c := m.Channel(1); c != nil {
			c.ApplyDimmer(v.State)
		}
	case *messages.SliderStatus:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyDimmer(v.State)
		}

	case *messages.BlindStatusNg:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyBlind(blindStateName(v.Status), v.Position, true)
		}
	case *messages.BlindStatus:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyBlind(blindStateName(v.Status), 0, false)
		}

	case *messages.PushButtonStatus:
		m.applyButtonBitmasks(v.Closed, v.Opened, v.ClosedLong)

	case *messages.ModuleStatus:
		m.applyModuleStatus(v.Closed, v.LedOn, v.LedSlowBlinking, v.LedFastBlinking)
	case *messages.ModuleStatus2:
		m.applyModuleStatus(v.Closed, nil, nil, nil)
		m.applyProgramName(v.ProgramName())
	case *messages.ModuleStatusPir:
		m.applyPirStatus(v)

	case *messages.UpdateLedStatus:
		m.applyLedBitmasks(v.LedOn, v.LedSlowBlinking, v.LedFastBlinking)

	case *messages.CounterStatus:
		if c := m.Channel(v.Channel); c != nil {
			c.ApplyCounter(v.Pulses, v.Counter, v.Rate(counterScale(c.Unit)), c.Unit)
		}

	case *messages.SensorTemperature:
		m.applyTemperature(v.Current, 1.0/16)
	case *messages.TempSensorStatus:
		m.applyTemperature(v.CurrentTemp, 0.5)
		m.applyThermostatStatus(v)

	case *messages.SwitchToClimateMode:
		m.applyClimateMode(v)

	case *messages.MeteoRaw:
		m.applyNumeric(11, v.Rain, "mm")
		m.applyNumeric(12, v.Light, "lux")
		m.applyNumeric(13, v.Wind, "m/s")
	case *messages.SensorRaw:
		m.applyNumeric(int(v.Sensor), v.Value, v.Unit)

	case *messages.DaliDeviceSetting:
		m.applyDaliDeviceSetting(v)
	case *messages.DaliDimValueStatus:
		m.applyDaliDimValues(v)

	case *messages.MemoText:
		m.applyMemo(v)
	case *messages.SelectProgram:
		m.applyProgram(v)

	default:
		return fmt.Errorf("module: unhandled message type %T for command 0x%02X", msg, cmd)
	}
	return nil
}

func (m *Module) applyNamePart(part, rawChannel int, fragment string) {
	number := rawChannel
	if m.desc != nil && m.desc.ChannelNameMap != nil {
		if mapped, ok := m.desc.ChannelNameMap[fmt.Sprintf("%02X", rawChannel)]; ok {
			number = mapped
		}
	}
	if c := m.Channel(number); c != nil {
		c.NamePart(part, fragment)
	}
	m.IsLoaded()
}

func (m *Module) applyMemoryData(v *messages.MemoryData) {
	if m.desc == nil {
		return
	}
	key := fmt.Sprintf("%02X", v.LowAddress)
	dir, ok := m.desc.Memory[key]
	if !ok {
		return
	}
	if dir.IsModuleName {
		if v.Data == 0xFF {
			m.mu.Lock()
			m.Name.AddPosition(dir.ModuleNamePosition, 0, true)
			m.mu.Unlock()
			return
		}
		m.mu.Lock()
		m.Name.AddPosition(dir.ModuleNamePosition, v.Data, false)
		m.mu.Unlock()
		return
	}
	for _, entry := range dir.Match {
		if !matchesBitPattern(entry.Pattern, v.Data) {
			continue
		}
		c := m.Channel(entry.Channel)
		if c == nil {
			continue
		}
		if entry.SubName == "Unit" {
			c.Unit = entry.Value
		}
		if entry.SubName == "PulsePerUnits" {
			fmt.Sscanf(entry.Value, "%d", &c.PulsesPerUnit)
		}
	}
}

// matchesBitPattern checks an 8-char '0'/'1'/'#' pattern against a byte's
// bit representation, per module.py's _handle_match.
func matchesBitPattern(pattern string, b byte) bool {
	if len(pattern) != 8 {
		return false
	}
	for i := 0; i < 8; i++ {
		bit := (b >> uint(7-i)) & 1
		switch pattern[i] {
		case '0':
			if bit != 0 {
				return false
			}
		case '1':
			if bit != 1 {
				return false
			}
		}
	}
	return true
}

func (m *Module) applyButtonBitmasks(closed, opened, long []int) {
	for _, n := range opened {
		if c := m.Channel(n); c != nil {
			c.ApplyButton(false, false)
		}
	}
	for _, n := range closed {
		if c := m.Channel(n); c != nil {
			c.ApplyButton(true, false)
		}
	}
	for _, n := range long {
		if c := m.Channel(n); c != nil {
			c.ApplyButton(true, true)
		}
	}
}

func (m *Module) applyModuleStatus(closed, ledOn, ledSlow, ledFast []int) {
	closedSet := toSet(closed)
	for n, c := range m.Channels() {
		_, isClosed := closedSet[n]
		c.ApplyButton(isClosed, c.LongPress)
	}
	if ledOn != nil || ledSlow != nil || ledFast != nil {
		m.applyLedBitmasks(ledOn, ledSlow, ledFast)
	}
}

func (m *Module) applyPirStatus(v *messages.ModuleStatusPir) {
	if c := m.Channel(1); c != nil {
		c.ApplyButton(v.Motion1, false)
	}
	if c := m.Channel(2); c != nil {
		c.ApplyButton(v.Motion2, false)
	}
}

func (m *Module) applyLedBitmasks(on, slow, fast []int) {
	for _, n := range on {
		if c := m.Channel(n); c != nil {
			c.ApplyLed("on")
		}
	}
	for _, n := range slow {
		if c := m.Channel(n); c != nil {
			c.ApplyLed("slow")
		}
	}
	for _, n := range fast {
		if c := m.Channel(n); c != nil {
			c.ApplyLed("fast")
		}
	}
}

func (m *Module) applyTemperature(value, precision float64) {
	if m.desc == nil || !m.desc.HasTemperature {
		return
	}
	if c := m.Channel(m.desc.TemperatureChannel); c != nil {
		c.ApplyTemperature(value, precision)
	}
}

func (m *Module) applyThermostatStatus(v *messages.TempSensorStatus) {
	if m.desc == nil {
		return
	}
	flags := map[string]bool{"Heater": v.Heater, "Boost": v.Boost, "Pump": v.Pump, "Cooler": v.Cooler,
		"Alarm1": v.Alarm1, "Alarm2": v.Alarm2, "Alarm3": v.Alarm3, "Alarm4": v.Alarm4}
	for name, number := range m.desc.ThermostatChannels {
		if c := m.Channel(number); c != nil {
			c.ApplyThermostatStatus(v.ModeName(), v.StatusName(), v.SleepTimer)
			c.On = flags[name]
		}
	}
}

func (m *Module) applyClimateMode(v *messages.SwitchToClimateMode) {
	if m.desc == nil {
		return
	}
	for _, number := range m.desc.ThermostatChannels {
		if c := m.Channel(number); c != nil {
			c.SleepTimer = v.Sleep
		}
	}
}

func (m *Module) applyNumeric(number int, value float64, unit string) {
	if c := m.Channel(number); c != nil {
		c.ApplyNumeric(value, unit)
	}
}

// applyDaliDeviceSetting dispatches on the DaliDeviceSetting sub-type, per
// spec.md §4.G: a DeviceType reply drives channel replacement/deletion
// (LedModule -> Dimmer scaled 0..254, NoDevicePresent -> delete), a
// GroupMembers reply records which of the 16 DALI groups this channel
// belongs to for DimValueStatus's group fan-out.
func (m *Module) applyDaliDeviceSetting(v *messages.DaliDeviceSetting) {
	switch v.SubType {
	case messages.DaliSubTypeDeviceType:
		m.applyDaliDeviceType(int(v.Channel), v.DeviceType)
	case messages.DaliSubTypeGroupMembers:
		c := m.Channel(int(v.Channel))
		if c == nil {
			return
		}
		var groups []int
		for g := 0; g < 16; g++ {
			if v.IsGroupMember(g) {
				groups = append(groups, g)
			}
		}
		if groups != nil {
			c.DaliGroups = groups
		}
	}
}

// applyDaliDeviceType replaces the numbered placeholder channel with a
// Dimmer (0..254 scale) when a DALI LED module is present, or removes it
// entirely when no device answers at that index; any other DeviceType
// leaves the placeholder as-is (scan S5 only exercises these two).
func (m *Module) applyDaliDeviceType(number int, dt messages.DaliDeviceType) {
	switch dt {
	case messages.DaliNoDevicePresent:
		m.mu.Lock()
		delete(m.channels, number)
		m.mu.Unlock()
	case messages.DaliLedModule:
		c := m.Channel(number)
		if c == nil {
			return
		}
		c.Kind = channel.KindDaliDimmer
		if err := m.send(messages.CmdChannelNameRequest, &messages.ChannelNameRequest{Channels: []int{number}}); err != nil {
			return
		}
	}
}

func (m *Module) applyDaliDimValues(v *messages.DaliDimValueStatus) {
	switch {
	case v.Index >= 1 && v.Index <= 64:
		if c := m.Channel(int(v.Index)); c != nil && len(v.DimValues) > 0 {
			c.ApplyDimmer(v.DimValues[0])
		}
	case v.Index >= 65 && v.Index <= 80:
		m.applyDaliGroupDimValue(int(v.Index)-65, v.DimValues)
	case v.Index == 81:
		// broadcast dim value: applies to every DALI channel on this module.
		for _, c := range m.Channels() {
			if c.Kind == channel.KindDaliDimmer && len(v.DimValues) > 0 {
				c.ApplyDimmer(v.DimValues[0])
			}
		}
	}
}

// applyDaliGroupDimValue fans a group DimValueStatus out to every Dimmer
// channel whose GroupMembers reply placed it in this group (0..15).
func (m *Module) applyDaliGroupDimValue(group int, dimValues []byte) {
	if len(dimValues) == 0 {
		return
	}
	for _, c := range m.Channels() {
		if c.Kind != channel.KindDaliDimmer {
			continue
		}
		for _, g := range c.DaliGroups {
			if g == group {
				c.ApplyDimmer(dimValues[0])
				break
			}
		}
	}
}

func (m *Module) applyMemo(v *messages.MemoText) {
	if c := m.Channel(0); c != nil {
		c.ApplyMemo(c.Text + v.Text)
		return
	}
	for _, c := range m.Channels() {
		if c.Kind == channel.KindMemo {
			c.ApplyMemo(c.Text + v.Text)
		}
	}
}

func (m *Module) applyProgram(v *messages.SelectProgram) {
	m.applyProgramName(v.Name())
}

// applyProgramName updates every synthetic SelectedProgram channel this
// module declares, shared by the outbound-echo SelectProgram message and
// ModuleStatus2's bundled selected-program field.
func (m *Module) applyProgramName(name string) {
	if name == "" {
		return
	}
	for _, c := range m.Channels() {
		if c.Kind == channel.KindSelectedProgram {
			c.ApplyProgram(name)
		}
	}
}

// counterScale picks the Rate multiplier for a ButtonCounter's decoded
// unit: kWh counts in 1000s per spec.md's CounterStatus contract, L/h and
// m³/h count in ones.
func counterScale(unit string) int {
	if unit == "kWh" {
		return 1000
	}
	return 1
}

func toSet(channels []int) map[int]struct{} {
	out := make(map[int]struct{}, len(channels))
	for _, c := range channels {
		out[c] = struct{}{}
	}
	return out
}

func blindStateName(status byte) string {
	switch status {
	case messages.BlindUp:
		return "opening"
	case messages.BlindDown:
		return "closing"
	default:
		return "stopped"
	}
}

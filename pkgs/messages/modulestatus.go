package messages

// Module identification and status, grounded on module_type.py,
// module_status_request.py, module_status.py and module_subtype.py. The
// ModuleType reply is also how a ModuleTypeRequest is answered; the request
// itself is an empty-data RTR frame on CmdModuleType, built by the
// discovery package directly against the frame codec.
const (
	CmdModuleType          = 0xFF
	CmdModuleStatusRequest = 0xFA
	CmdModuleStatus        = 0xED
	CmdModuleSubTypeBank0  = 0xB0
	CmdModuleSubTypeBank4  = 0xA7
	CmdModuleSubTypeBank8  = 0xA6
)

// modulesWithoutSerial lists module types whose ModuleType reply omits the
// serial/memory-map fields, per ModuleTypeMessage.MODULES_WITHOUT_SERIAL.
var modulesWithoutSerial = map[byte]bool{
	0x01: true, 0x02: true, 0x03: true, 0x05: true, 0x07: true,
	0x08: true, 0x09: true, 0x0C: true, 0x0F: true, 0x14: true,
}

type ModuleType struct {
	ModuleType        byte
	Serial            uint32
	MemoryMapVersion  byte
	BuildYear         byte
	BuildWeek         byte
}

func (m *ModuleType) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdModuleType, data, 4); err != nil {
		return err
	}
	m.ModuleType = data[0]
	if !modulesWithoutSerial[m.ModuleType] && len(data) >= 4 {
		m.Serial = uint32(data[1])<<8 | uint32(data[2])
		m.MemoryMapVersion = data[3]
	}
	m.BuildYear = data[len(data)-2]
	m.BuildWeek = data[len(data)-1]
	return nil
}

func (m *ModuleType) EncodeData() []byte {
	return []byte{CmdModuleType, m.ModuleType, 0, 0, 0, m.BuildYear, m.BuildWeek}
}

// ModuleSubType carries up to four sub-address bytes for one of the three
// 8-channel banks (0, 4, 8). A zero sub-address byte means "not populated".
type ModuleSubType struct {
	Bank        byte // 0, 4, or 8 -- the starting channel offset of this bank
	SubAddress1 byte
	SubAddress2 byte
	SubAddress3 byte
	SubAddress4 byte
}

func (m *ModuleSubType) Populate(priority, address byte, rtr bool, data []byte) error {
	cmd := m.command()
	if err := needsData(cmd, data, 4); err != nil {
		return err
	}
	m.SubAddress1, m.SubAddress2, m.SubAddress3, m.SubAddress4 = data[0], data[1], data[2], data[3]
	return nil
}

func (m *ModuleSubType) EncodeData() []byte {
	return []byte{m.command(), m.SubAddress1, m.SubAddress2, m.SubAddress3, m.SubAddress4}
}

func (m *ModuleSubType) command() byte {
	switch m.Bank {
	case 4:
		return CmdModuleSubTypeBank4
	case 8:
		return CmdModuleSubTypeBank8
	default:
		return CmdModuleSubTypeBank0
	}
}

// ModuleStatusRequest asks for the status of the channels in Channels (a
// bitmask); wait_after_send in the original is an engine-level pacing
// concern, not part of the wire payload.
type ModuleStatusRequest struct{ Channels []int }

func (m *ModuleStatusRequest) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdModuleStatusRequest, data, 1); err != nil {
		return err
	}
	m.Channels = byteToChannels(data[0])
	return nil
}

func (m *ModuleStatusRequest) EncodeData() []byte {
	return []byte{CmdModuleStatusRequest, channelsToByte(m.Channels)}
}

// ModuleStatus is the default VMB6IN/VMB4RYLD-style status: closed + three
// LED-blink bitmasks.
type ModuleStatus struct {
	Closed           []int
	LedOn            []int
	LedSlowBlinking  []int
	LedFastBlinking  []int
}

func (m *ModuleStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdModuleStatus, data, 4); err != nil {
		return err
	}
	m.Closed = byteToChannels(data[0])
	m.LedOn = byteToChannels(data[1])
	m.LedSlowBlinking = byteToChannels(data[2])
	m.LedFastBlinking = byteToChannels(data[3])
	return nil
}

func (m *ModuleStatus) EncodeData() []byte {
	return []byte{CmdModuleStatus, channelsToByte(m.Closed), channelsToByte(m.LedOn), channelsToByte(m.LedSlowBlinking), channelsToByte(m.LedFastBlinking)}
}

// ModuleStatus2 is the override used by input-panel families (VMBGP4,
// VMBGPOD, VMB7IN, ...): closed/enabled/normal/locked/program bitmasks. Bits
// set in Program select a per-channel "program mode enabled" flag; the
// module-wide selected program (none/summer/winter/holiday) travels in the
// low two bits of the same data[4] byte and is exposed as SelectedProgram
// for the module layer to apply to the synthetic SelectedProgram channel.
type ModuleStatus2 struct {
	Closed          []int
	Enabled         []int
	Normal          []int
	Locked          []int
	Program         []int
	SelectedProgram byte
}

func (m *ModuleStatus2) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdModuleStatus, data, 6); err != nil {
		return err
	}
	m.Closed = byteToChannels(data[0])
	m.Enabled = byteToChannels(data[1])
	m.Normal = byteToChannels(data[2])
	m.Locked = byteToChannels(data[3])
	m.Program = byteToChannels(data[4])
	m.SelectedProgram = data[4] & 0x03
	return nil
}

// ProgramName decodes SelectedProgram to the name
// (none/summer/winter/holiday) the synthetic SelectedProgram channel uses,
// the same selectedProgramNames table (memo.go) SelectProgram uses.
func (m *ModuleStatus2) ProgramName() string { return selectedProgramNames[m.SelectedProgram] }

func (m *ModuleStatus2) EncodeData() []byte {
	return []byte{CmdModuleStatus, channelsToByte(m.Closed), channelsToByte(m.Enabled), channelsToByte(m.Normal), channelsToByte(m.Locked)}
}

// ModuleStatusPir is the PIR-family override (VMBPIRM, VMBGP4PIR, ...): a
// bit-per-signal status byte plus a 10-bit light value.
type ModuleStatusPir struct {
	Dark           bool
	Light          bool
	Motion1        bool
	LightMotion1   bool
	Motion2        bool
	LightMotion2   bool
	LowTempAlarm   bool
	HighTempAlarm  bool
	LightValue     int
}

func (m *ModuleStatusPir) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdModuleStatus, data, 3); err != nil {
		return err
	}
	m.Dark = data[0]&(1<<0) != 0
	m.Light = data[0]&(1<<1) != 0
	m.Motion1 = data[0]&(1<<2) != 0
	m.LightMotion1 = data[0]&(1<<3) != 0
	m.Motion2 = data[0]&(1<<4) != 0
	m.LightMotion2 = data[0]&(1<<5) != 0
	m.LowTempAlarm = data[0]&(1<<6) != 0
	m.HighTempAlarm = data[0]&(1<<7) != 0
	m.LightValue = int(data[1])<<8 | int(data[2])
	return nil
}

// ModuleStatusPir is receive-only on the bus; EncodeData exists to satisfy
// registry.Message but is never used by the controller.
func (m *ModuleStatusPir) EncodeData() []byte { return nil }

package messages

// DALI messages, grounded on dali_device_settings.py,
// dali_device_settings_request.py and dali_dim_value_status.py. The
// original's DaliDeviceSetting enum carries 26 sub-message kinds; only
// DeviceType and GroupMembers are dispatched by the module layer (spec.md
// §4.G), so the rest of the sub-message payload is preserved as raw bytes.
const (
	CmdDaliDeviceSettingsRequest = 0xE7
	CmdDaliDeviceSetting         = 0xE8
	CmdDaliDimValueStatus        = 0xA5
)

// DaliDeviceType mirrors the DALI DeviceType enum used inside a
// DaliDeviceSetting reply of sub-type DeviceType (25).
type DaliDeviceType byte

const (
	DaliFluorescentLamp DaliDeviceType = 0
	DaliEmergencyLamp   DaliDeviceType = 1
	DaliDischargeLamp   DaliDeviceType = 2
	DaliLowVoltageLamp  DaliDeviceType = 3
	DaliDimmer          DaliDeviceType = 4
	DaliConversionToDC  DaliDeviceType = 5
	DaliLedModule       DaliDeviceType = 6
	DaliRelay           DaliDeviceType = 7
	DaliColorControl    DaliDeviceType = 8
	DaliSequencer       DaliDeviceType = 9
	DaliDevicePresent   DaliDeviceType = 254
	DaliNoDevicePresent DaliDeviceType = 255
)

// Sub-message kinds the module layer dispatches on; see DaliDeviceSetting.
const (
	DaliSubTypeDeviceType   = 25
	DaliSubTypeGroupMembers = 21
)

// DaliDeviceSetting is the generic reply envelope: Channel, the sub-message
// type byte, and its raw payload. DeviceType/Groups are populated when
// SubType matches a kind the module layer understands.
type DaliDeviceSetting struct {
	Channel    byte
	SubType    byte
	Raw        []byte
	DeviceType DaliDeviceType
	Groups     [2]byte // bitmask pair covering groups 0-15 (GroupMembers payload)
}

func (m *DaliDeviceSetting) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdDaliDeviceSetting, data, 2); err != nil {
		return err
	}
	m.Channel = data[0]
	m.SubType = data[1]
	m.Raw = append([]byte(nil), data[2:]...)
	switch m.SubType {
	case DaliSubTypeDeviceType:
		if len(m.Raw) >= 1 {
			m.DeviceType = DaliDeviceType(m.Raw[0])
		}
	case DaliSubTypeGroupMembers:
		if len(m.Raw) >= 2 {
			m.Groups[0], m.Groups[1] = m.Raw[0], m.Raw[1]
		}
	}
	return nil
}

func (m *DaliDeviceSetting) EncodeData() []byte {
	out := []byte{CmdDaliDeviceSetting, m.Channel, m.SubType}
	switch m.SubType {
	case DaliSubTypeDeviceType:
		return append(out, byte(m.DeviceType))
	case DaliSubTypeGroupMembers:
		return append(out, m.Groups[0], m.Groups[1])
	default:
		return append(out, m.Raw...)
	}
}

// IsGroupMember reports whether group (0-15) is set in the GroupMembers
// payload.
func (m *DaliDeviceSetting) IsGroupMember(group int) bool {
	if group < 0 || group > 15 {
		return false
	}
	return m.Groups[group/8]&(1<<uint(group%8)) != 0
}

// DaliDeviceSettingsRequest asks for one setting kind across every channel
// (0xFF channel, 0xFF sub-type selects "all channels, all settings").
type DaliDeviceSettingsRequest struct {
	Channel byte
	SubType byte
}

func (m *DaliDeviceSettingsRequest) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdDaliDeviceSettingsRequest, data, 2); err != nil {
		return err
	}
	m.Channel, m.SubType = data[0], data[1]
	return nil
}

func (m *DaliDeviceSettingsRequest) EncodeData() []byte {
	return []byte{CmdDaliDeviceSettingsRequest, m.Channel, m.SubType}
}

// NewDaliScanAllRequest builds the "all channels, all settings" request
// issued during DALI module load (spec.md §4.G).
func NewDaliScanAllRequest() *DaliDeviceSettingsRequest {
	return &DaliDeviceSettingsRequest{Channel: 0xFF, SubType: 0xFF}
}

// DaliDimValueStatus reports a dim level for a device (1-64), a group
// (65-80) or the broadcast index (81).
type DaliDimValueStatus struct {
	Index     byte
	DimValues []byte
}

func (m *DaliDimValueStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdDaliDimValueStatus, data, 2); err != nil {
		return err
	}
	m.Index = data[0]
	m.DimValues = append([]byte(nil), data[1:]...)
	return nil
}

func (m *DaliDimValueStatus) EncodeData() []byte {
	return append([]byte{CmdDaliDimValueStatus, m.Index}, m.DimValues...)
}

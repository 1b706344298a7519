package messages

// Dimmer commands, grounded on dimmer_channel_status.py, dimmer_status.py,
// set_dimmer.py, restore_dimmer.py and slider_status.py.
const (
	CmdDimmerChannelStatus = 0xB8
	CmdDimmerStatus        = 0xEE
	CmdSetDimmer           = 0x07
	CmdRestoreDimmer       = 0x11
	CmdSliderStatus        = 0x0F

	DimmerModeStartStop = 0x00
	DimmerModeStaircase = 0x01
	DimmerModeDimmer    = 0x02
	DimmerModeMemory    = 0x03
	DimmerModeMulti     = 0x04
	DimmerModeSlowOn    = 0x05
	DimmerModeSlow      = 0x06
)

// DimmerChannelStatus is the 4-channel family (VMB4DC, VMBDMI, VMBDMI-R):
// State ranges 0-254.
type DimmerChannelStatus struct {
	Channel          int
	DisableInhibited byte
	State            byte
	LedStatus        byte
	DelayTime        uint32
}

func (m *DimmerChannelStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdDimmerChannelStatus, data, 7); err != nil {
		return err
	}
	m.Channel = byteToChannel(data[0])
	m.DisableInhibited = data[1]
	m.State = data[2]
	m.LedStatus = data[3]
	m.DelayTime = uint32(data[4])<<16 | uint32(data[5])<<8 | uint32(data[6])
	return nil
}

func (m *DimmerChannelStatus) EncodeData() []byte {
	return []byte{
		CmdDimmerChannelStatus,
		channelsToByte([]int{m.Channel}),
		m.DisableInhibited,
		m.State,
		m.LedStatus,
		byte(m.DelayTime >> 16),
		byte(m.DelayTime >> 8),
		byte(m.DelayTime),
	}
}

// DimmerStatus is the single-channel family (VMB1DM, VMBDME, VMB1LED).
type DimmerStatus struct {
	Mode             byte
	State            byte
	LedStatus        byte
	DelayTime        uint32
	Config           byte
}

func (m *DimmerStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdDimmerStatus, data, 7); err != nil {
		return err
	}
	m.Mode = data[0]
	m.State = data[1]
	m.LedStatus = data[2]
	m.DelayTime = uint32(data[3])<<16 | uint32(data[4])<<8 | uint32(data[5])
	m.Config = data[6]
	return nil
}

func (m *DimmerStatus) EncodeData() []byte {
	return []byte{CmdDimmerStatus, m.Mode, m.State, m.LedStatus,
		byte(m.DelayTime >> 16), byte(m.DelayTime >> 8), byte(m.DelayTime)}
}

// SetDimmer moves one or more dimmer channels to State over
// TransitionTime seconds. The DALI override addresses a single channel by
// integer index rather than bitmask (SetDimmerMessage2 in set_dimmer.py).
type SetDimmer struct {
	Channels        []int
	State           byte
	TransitionTime  uint16
	singleChannel   bool
}

func (m *SetDimmer) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdSetDimmer, data, 4); err != nil {
		return err
	}
	if m.singleChannel {
		m.Channels = []int{int(data[0])}
	} else {
		m.Channels = byteToChannels(data[0])
	}
	m.State = data[1]
	m.TransitionTime = u16(data[2], data[3])
	return nil
}

func (m *SetDimmer) EncodeData() []byte {
	var chanByte byte
	if m.singleChannel {
		chanByte = byte(m.Channels[0])
	} else {
		chanByte = channelsToByte(m.Channels)
	}
	return []byte{CmdSetDimmer, chanByte, m.State, byte(m.TransitionTime >> 8), byte(m.TransitionTime)}
}

// NewDALISetDimmer builds a SetDimmer whose channel field addresses a single
// integer channel, as DALI modules require.
func NewDALISetDimmer() *SetDimmer { return &SetDimmer{singleChannel: true} }

type RestoreDimmer struct {
	Channels       []int
	TransitionTime uint16
	singleChannel  bool
}

func (m *RestoreDimmer) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdRestoreDimmer, data, 1); err != nil {
		return err
	}
	if m.singleChannel {
		m.Channels = []int{int(data[0])}
	} else {
		m.Channels = byteToChannels(data[0])
	}
	return nil
}

func (m *RestoreDimmer) EncodeData() []byte {
	var chanByte byte
	if m.singleChannel {
		chanByte = byte(m.Channels[0])
	} else {
		chanByte = channelsToByte(m.Channels)
	}
	return []byte{CmdRestoreDimmer, chanByte, 0, byte(m.TransitionTime >> 8), byte(m.TransitionTime)}
}

func NewDALIRestoreDimmer() *RestoreDimmer { return &RestoreDimmer{singleChannel: true} }

// SliderStatus reports a physical slider's position on VMBDME/VMB4DC/etc.
type SliderStatus struct {
	Channel          int
	State            byte
	LongPressed      byte
}

func (m *SliderStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdSliderStatus, data, 3); err != nil {
		return err
	}
	m.Channel = byteToChannel(data[0])
	m.State = data[1]
	m.LongPressed = data[2]
	return nil
}

func (m *SliderStatus) EncodeData() []byte {
	return []byte{CmdSliderStatus, channelsToByte([]int{m.Channel}), m.State, m.LongPressed}
}

package messages

// Channel name assembly, grounded on channel_name_part1/2/3.py and
// channel_name_request.py. Three wire variants exist depending on module
// family: channel addressed by bitmask (default), by raw byte (input-panel
// family), or by a 2-bit field in data[0]'s high nibble (VMB1BL/VMB2BL).
const (
	CmdChannelNamePart1  = 0xF0
	CmdChannelNamePart2  = 0xF1
	CmdChannelNamePart3  = 0xF2
	CmdChannelNameRequest = 0xEF
)

// ChannelIndexing selects how a channel-name message's first byte maps to a
// channel number, since it varies by module family.
type ChannelIndexing int

const (
	IndexByBitmask ChannelIndexing = iota
	IndexByRawByte
	IndexByTwoBitField
)

type channelNamePart struct {
	cmd      byte
	indexing ChannelIndexing
	Channel  int
	Fragment string
}

func (m *channelNamePart) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(m.cmd, data, 1); err != nil {
		return err
	}
	switch m.indexing {
	case IndexByRawByte:
		m.Channel = int(data[0])
	case IndexByTwoBitField:
		m.Channel = int((data[0] >> 1) & 0x03)
	default:
		m.Channel = byteToChannel(data[0])
	}
	m.Fragment = printable(string(data[1:]))
	return nil
}

func (m *channelNamePart) EncodeData() []byte {
	var chanByte byte
	switch m.indexing {
	case IndexByRawByte:
		chanByte = byte(m.Channel)
	case IndexByTwoBitField:
		if m.Channel == 1 {
			chanByte = 0x02
		} else {
			chanByte = 0x08
		}
	default:
		chanByte = channelsToByte([]int{m.Channel})
	}
	return append([]byte{m.cmd, chanByte}, []byte(m.Fragment)...)
}

// ChannelNamePart1/2/3 are the three wire layouts. Use the NewChannelNamePartN
// constructors to pick the indexing scheme that matches the module family.
type ChannelNamePart1 struct{ channelNamePart }
type ChannelNamePart2 struct{ channelNamePart }
type ChannelNamePart3 struct{ channelNamePart }

func NewChannelNamePart1(idx ChannelIndexing) *ChannelNamePart1 {
	return &ChannelNamePart1{channelNamePart{cmd: CmdChannelNamePart1, indexing: idx}}
}
func NewChannelNamePart2(idx ChannelIndexing) *ChannelNamePart2 {
	return &ChannelNamePart2{channelNamePart{cmd: CmdChannelNamePart2, indexing: idx}}
}
func NewChannelNamePart3(idx ChannelIndexing) *ChannelNamePart3 {
	return &ChannelNamePart3{channelNamePart{cmd: CmdChannelNamePart3, indexing: idx}}
}

// ChannelNameRequest asks for the name of the channels in Channels; All
// requests every channel at once (AllChannelStatus module types).
type ChannelNameRequest struct {
	Channels []int
	All      bool
	twoBit   bool
}

func (m *ChannelNameRequest) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdChannelNameRequest, data, 1); err != nil {
		return err
	}
	if m.twoBit {
		m.Channels = byteToChannels((data[0] >> 1) & 0x03)
		return nil
	}
	if data[0] == 0xFF {
		m.All = true
		return nil
	}
	m.Channels = byteToChannels(data[0])
	return nil
}

func (m *ChannelNameRequest) EncodeData() []byte {
	if m.All {
		return []byte{CmdChannelNameRequest, 0xFF}
	}
	if m.twoBit {
		var b byte
		for _, c := range m.Channels {
			if c == 1 {
				b += 0x03
			}
			if c == 2 {
				b += 0x0C
			}
		}
		return []byte{CmdChannelNameRequest, b}
	}
	return []byte{CmdChannelNameRequest, channelsToByte(m.Channels)}
}

// NewTwoBitChannelNameRequest builds the VMB1BL/VMB2BL-specific encoding.
func NewTwoBitChannelNameRequest(channels []int) *ChannelNameRequest {
	return &ChannelNameRequest{Channels: channels, twoBit: true}
}

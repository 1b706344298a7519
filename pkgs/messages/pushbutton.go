package messages

// PushButtonStatus is grounded on push_button_status.py: high priority,
// three channel bitmasks for just-pressed, just-released and long-press.
const CmdPushButtonStatus = 0x00

type PushButtonStatus struct {
	Closed     []int
	Opened     []int
	ClosedLong []int
}

func (m *PushButtonStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdPushButtonStatus, data, 3); err != nil {
		return err
	}
	m.Closed = byteToChannels(data[0])
	m.Opened = byteToChannels(data[1])
	m.ClosedLong = byteToChannels(data[2])
	return nil
}

func (m *PushButtonStatus) EncodeData() []byte {
	return []byte{CmdPushButtonStatus, channelsToByte(m.Closed), channelsToByte(m.Opened), channelsToByte(m.ClosedLong)}
}

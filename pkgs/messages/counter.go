package messages

// CounterStatus/CounterStatusRequest are grounded on counter_status.py and
// counter_status_request.py (VMB7IN pulse-counting inputs).
const (
	CmdCounterStatusRequest = 0xBD
	CmdCounterStatus        = 0xBE
)

type CounterStatus struct {
	Channel int
	Pulses  int
	Counter uint32
	Delay   uint16
}

func (m *CounterStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdCounterStatus, data, 7); err != nil {
		return err
	}
	m.Channel = int(data[0]&0x03) + 1
	m.Pulses = int(data[0]>>2) * 100
	m.Counter = uint32(data[1])<<24 | uint32(data[2])<<16 | uint32(data[3])<<8 | uint32(data[4])
	m.Delay = u16(data[5], data[6])
	return nil
}

func (m *CounterStatus) EncodeData() []byte {
	return []byte{
		CmdCounterStatus,
		byte((m.Channel-1)&0x03) | byte((m.Pulses/100)<<2),
		byte(m.Counter >> 24), byte(m.Counter >> 16), byte(m.Counter >> 8), byte(m.Counter),
		byte(m.Delay >> 8), byte(m.Delay),
	}
}

// Rate computes the derived rate per hour: (1000*3600*scale)/(delay*pulses),
// per spec.md's CounterStatus contract. scale is 1 for L/h and m3/h units,
// 1000 for kWh. Delay 0xFFFF is the "no rate available" sentinel.
func (m *CounterStatus) Rate(scale int) float64 {
	if m.Delay == 0xFFFF || m.Pulses == 0 {
		return 0
	}
	return float64(1000*3600*scale) / float64(int(m.Delay)*m.Pulses)
}

type CounterStatusRequest struct{}

func (m *CounterStatusRequest) Populate(priority, address byte, rtr bool, data []byte) error {
	return needsData(CmdCounterStatusRequest, data, 1)
}

func (m *CounterStatusRequest) EncodeData() []byte {
	return []byte{CmdCounterStatusRequest, 0x0F, 0x00}
}

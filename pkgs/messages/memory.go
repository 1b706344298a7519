package messages

// Memory access, grounded on memory_data.py and read_data_block_from_memory.py.
const (
	CmdMemoryData           = 0xFE
	CmdReadDataFromMemory   = 0xC9
)

// MemoryData is a single-byte memory dump reply at a 16-bit address.
type MemoryData struct {
	HighAddress byte
	LowAddress  byte
	Data        byte
}

func (m *MemoryData) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdMemoryData, data, 3); err != nil {
		return err
	}
	m.HighAddress, m.LowAddress, m.Data = data[0], data[1], data[2]
	return nil
}

func (m *MemoryData) EncodeData() []byte {
	return []byte{CmdMemoryData, m.HighAddress, m.LowAddress, m.Data}
}

// Address returns the combined 16-bit memory address. The protocol
// description's Memory map is keyed by LowAddress alone (2 hex digits), since
// every known directive lives in the 0x00-0xFF range.
func (m *MemoryData) Address() uint16 { return uint16(m.HighAddress)<<8 | uint16(m.LowAddress) }

// ReadDataFromMemory requests the byte at a 16-bit memory address.
type ReadDataFromMemory struct {
	HighAddress byte
	LowAddress  byte
}

func (m *ReadDataFromMemory) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdReadDataFromMemory, data, 2); err != nil {
		return err
	}
	m.HighAddress, m.LowAddress = data[0], data[1]
	return nil
}

func (m *ReadDataFromMemory) EncodeData() []byte {
	return []byte{CmdReadDataFromMemory, m.HighAddress, m.LowAddress}
}

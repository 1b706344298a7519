package messages

// MemoText pages a module's free-form memo display in 5-character chunks,
// grounded on memo_text.py. Start is the character offset of this chunk;
// a full memo is reassembled by the channel layer from successive chunks
// with increasing Start, per SPEC_FULL.md's supplemented memo paging.
const CmdMemoText = 0xAC

type MemoText struct {
	Start byte
	Text  string
}

func (m *MemoText) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdMemoText, data, 2); err != nil {
		return err
	}
	m.Start = data[1]
	m.Text = printable(string(data[2:]))
	return nil
}

func (m *MemoText) EncodeData() []byte {
	text := m.Text
	for len(text) < 5 {
		text += "\x00"
	}
	return append([]byte{CmdMemoText, 0x00, m.Start}, []byte(text)...)
}

// SelectProgram picks the active selectable program
// (none/summer/winter/holiday), grounded on select_program.py.
const CmdSelectProgram = 0xB3

var selectedProgramNames = map[byte]string{0: "none", 1: "summer", 2: "winter", 3: "holiday"}
var selectedProgramValues = map[string]byte{"none": 0, "summer": 1, "winter": 2, "holiday": 3}

type SelectProgram struct{ Program byte }

func (m *SelectProgram) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdSelectProgram, data, 1); err != nil {
		return err
	}
	m.Program = data[0] & 0x03
	return nil
}

func (m *SelectProgram) EncodeData() []byte {
	return []byte{CmdSelectProgram, m.Program}
}

func (m *SelectProgram) Name() string { return selectedProgramNames[m.Program] }

// NewSelectProgram builds an outbound SelectProgram from its name.
func NewSelectProgram(name string) *SelectProgram {
	return &SelectProgram{Program: selectedProgramValues[name]}
}

package messages

// LED control, grounded on set_led.py, update_led_status.py and the
// sibling clear/slow/fast-blink command bytes in relay_status.py's LED_*
// constants and slow_blinking_led.py/fast_blinking_led.py.
const (
	CmdSetLed         = 0xF6
	CmdClearLed       = 0xF5
	CmdSlowBlinkingLed = 0xF7
	CmdFastBlinkingLed = 0xF8
	CmdUpdateLedStatus = 0xF4
)

type ledCommand struct {
	cmd      byte
	Channels []int
}

func (m *ledCommand) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(m.cmd, data, 1); err != nil {
		return err
	}
	m.Channels = byteToChannels(data[0])
	return nil
}

func (m *ledCommand) EncodeData() []byte {
	return []byte{m.cmd, channelsToByte(m.Channels)}
}

type SetLed struct{ ledCommand }
type ClearLed struct{ ledCommand }
type SlowBlinkingLed struct{ ledCommand }
type FastBlinkingLed struct{ ledCommand }

func NewSetLed() *SetLed                   { return &SetLed{ledCommand{cmd: CmdSetLed}} }
func NewClearLed() *ClearLed               { return &ClearLed{ledCommand{cmd: CmdClearLed}} }
func NewSlowBlinkingLed() *SlowBlinkingLed { return &SlowBlinkingLed{ledCommand{cmd: CmdSlowBlinkingLed}} }
func NewFastBlinkingLed() *FastBlinkingLed { return &FastBlinkingLed{ledCommand{cmd: CmdFastBlinkingLed}} }

// UpdateLedStatus reports the current LED state of every button channel in
// one message: on, slow-blinking, fast-blinking bitmasks.
type UpdateLedStatus struct {
	LedOn           []int
	LedSlowBlinking []int
	LedFastBlinking []int
}

func (m *UpdateLedStatus) Populate(priority, address byte, rtr bool, data []byte) error {
	if err := needsData(CmdUpdateLedStatus, data, 3); err != nil {
		return err
	}
	m.LedOn = byteToChannels(data[0])
	m.LedSlowBlinking = byteToChannels(data[1])
	m.LedFastBlinking = byteToChannels(data[2])
	return nil
}

func (m *UpdateLedStatus) EncodeData() []byte {
	return []byte{CmdUpdateLedStatus, channelsToByte(m.LedOn), channelsToByte(m.LedSlowBlinking), channelsToByte(m.LedFastBlinking)}
}

package messages

import "github.com/mpunie/govelbus/pkgs/registry"

// Module type bytes referenced by the registrations below, matching the
// keys of the packaged protocol description (protodesc/protocol.json).
const (
	typeVMB8PB    = 0x01
	typeVMB1RY    = 0x02
	typeVMB1BL    = 0x03
	typeVMB6IN    = 0x05
	typeVMB1DM    = 0x07
	typeVMB4RY    = 0x08
	typeVMB2BL    = 0x09
	typeVMB1TS    = 0x0C
	typeVMB1LED   = 0x0F
	typeVMB1TC    = 0x0E
	typeVMBGP1    = 0x1E
	typeVMBGP4    = 0x20
	typeVMB7IN    = 0x22
	typeVMBGPOD   = 0x28
	typeVMBPIRM   = 0x2A
	typeVMBGP4PIR = 0x2D
	typeVMBMETEO  = 0x31
	typeVMB4AN    = 0x32
	typeVMBEL1    = 0x34
	typeVMBEL4    = 0x36
	typeVMBDALI   = 0x45
)

// Register walks every message family and registers its default and
// per-module-type constructors. Called exactly once, before any connection
// is opened, per spec.md §4.B/§4.D/§9 ("initialize both from a single entry
// point ... after initialization they are read-only").
func Register(r *registry.Registry) {
	r.RegisterDefault(CmdPushButtonStatus, func() registry.Message { return &PushButtonStatus{} })

	r.RegisterDefault(CmdModuleType, func() registry.Message { return &ModuleType{} })
	r.RegisterDefault(CmdModuleStatusRequest, func() registry.Message { return &ModuleStatusRequest{} })
	r.RegisterDefault(CmdModuleSubTypeBank0, func() registry.Message { return &ModuleSubType{Bank: 0} })
	r.RegisterDefault(CmdModuleSubTypeBank4, func() registry.Message { return &ModuleSubType{Bank: 4} })
	r.RegisterDefault(CmdModuleSubTypeBank8, func() registry.Message { return &ModuleSubType{Bank: 8} })

	r.RegisterDefault(CmdModuleStatus, func() registry.Message { return &ModuleStatus{} })
	for _, t := range []byte{typeVMBGP1, typeVMBGP4, typeVMB7IN, typeVMBGPOD} {
		r.RegisterOverride(CmdModuleStatus, t, func() registry.Message { return &ModuleStatus2{} })
	}
	for _, t := range []byte{typeVMBPIRM, typeVMBGP4PIR} {
		r.RegisterOverride(CmdModuleStatus, t, func() registry.Message { return &ModuleStatusPir{} })
	}

	r.RegisterDefault(CmdRelayStatus, func() registry.Message { return &RelayStatus{} })
	r.RegisterOverride(CmdRelayStatus, typeVMB4RY, func() registry.Message { return &RelayStatusVMB4RY{} })
	r.RegisterDefault(CmdSwitchRelayOn, func() registry.Message { return &SwitchRelayOn{} })
	r.RegisterDefault(CmdSwitchRelayOff, func() registry.Message { return &SwitchRelayOff{} })

	r.RegisterOverride(CmdDimmerStatus, typeVMB1DM, func() registry.Message { return &DimmerStatus{} })
	r.RegisterOverride(CmdDimmerStatus, typeVMB1LED, func() registry.Message { return &DimmerStatus{} })
	r.RegisterOverride(CmdSetDimmer, typeVMB1DM, func() registry.Message { return &SetDimmer{} })
	r.RegisterOverride(CmdSetDimmer, typeVMB1LED, func() registry.Message { return &SetDimmer{} })
	r.RegisterOverride(CmdSetDimmer, typeVMBDALI, func() registry.Message { return NewDALISetDimmer() })
	r.RegisterOverride(CmdRestoreDimmer, typeVMB1DM, func() registry.Message { return &RestoreDimmer{} })
	r.RegisterOverride(CmdRestoreDimmer, typeVMBDALI, func() registry.Message { return NewDALIRestoreDimmer() })
	r.RegisterDefault(CmdSliderStatus, func() registry.Message { return &SliderStatus{} })

	r.RegisterOverride(CmdBlindStatus, typeVMB1BL, func() registry.Message { return &BlindStatus{} })
	r.RegisterOverride(CmdBlindStatus, typeVMB2BL, func() registry.Message { return &BlindStatus{} })
	r.RegisterDefault(CmdBlindStatus, func() registry.Message { return &BlindStatusNg{} })
	r.RegisterOverride(CmdCoverOff, typeVMB1BL, func() registry.Message { return &CoverOffTwoBit{} })
	r.RegisterOverride(CmdCoverOff, typeVMB2BL, func() registry.Message { return &CoverOffTwoBit{} })
	r.RegisterDefault(CmdCoverOff, func() registry.Message { return &CoverOff{} })
	r.RegisterDefault(CmdSetBlindPosition, func() registry.Message { return &SetBlindPosition{} })

	r.RegisterDefault(CmdCounterStatusRequest, func() registry.Message { return &CounterStatusRequest{} })
	r.RegisterOverride(CmdCounterStatus, typeVMB7IN, func() registry.Message { return &CounterStatus{} })

	r.RegisterDefault(CmdSensorTemperature, func() registry.Message { return &SensorTemperature{} })
	r.RegisterDefault(CmdSetTemperature, func() registry.Message { return &SetTemperature{} })
	r.RegisterDefault(CmdTempSensorStatus, func() registry.Message { return &TempSensorStatus{} })
	r.RegisterDefault(CmdSwitchToComfort, func() registry.Message { return &SwitchToClimateMode{Command: CmdSwitchToComfort} })
	r.RegisterDefault(CmdSwitchToDay, func() registry.Message { return &SwitchToClimateMode{Command: CmdSwitchToDay} })
	r.RegisterDefault(CmdSwitchToNight, func() registry.Message { return &SwitchToClimateMode{Command: CmdSwitchToNight} })
	r.RegisterDefault(CmdSwitchToSafe, func() registry.Message { return &SwitchToClimateMode{Command: CmdSwitchToSafe} })

	r.RegisterDefault(CmdChannelNamePart1, func() registry.Message { return NewChannelNamePart1(IndexByBitmask) })
	r.RegisterDefault(CmdChannelNamePart2, func() registry.Message { return NewChannelNamePart2(IndexByBitmask) })
	r.RegisterDefault(CmdChannelNamePart3, func() registry.Message { return NewChannelNamePart3(IndexByBitmask) })
	for _, t := range []byte{typeVMBGP1, typeVMBGP4, typeVMBGPOD, typeVMBGP4PIR, typeVMBEL1, typeVMBEL4, typeVMBDALI, typeVMB4AN} {
		t := t
		r.RegisterOverride(CmdChannelNamePart1, t, func() registry.Message { return NewChannelNamePart1(IndexByRawByte) })
		r.RegisterOverride(CmdChannelNamePart2, t, func() registry.Message { return NewChannelNamePart2(IndexByRawByte) })
		r.RegisterOverride(CmdChannelNamePart3, t, func() registry.Message { return NewChannelNamePart3(IndexByRawByte) })
	}
	for _, t := range []byte{typeVMB1BL, typeVMB2BL} {
		r.RegisterOverride(CmdChannelNamePart1, t, func() registry.Message { return NewChannelNamePart1(IndexByTwoBitField) })
		r.RegisterOverride(CmdChannelNamePart2, t, func() registry.Message { return NewChannelNamePart2(IndexByTwoBitField) })
		r.RegisterOverride(CmdChannelNamePart3, t, func() registry.Message { return NewChannelNamePart3(IndexByTwoBitField) })
	}
	r.RegisterDefault(CmdChannelNameRequest, func() registry.Message { return &ChannelNameRequest{} })

	r.RegisterDefault(CmdMemoryData, func() registry.Message { return &MemoryData{} })
	r.RegisterDefault(CmdReadDataFromMemory, func() registry.Message { return &ReadDataFromMemory{} })

	r.RegisterDefault(CmdSetLed, func() registry.Message { return NewSetLed() })
	r.RegisterDefault(CmdClearLed, func() registry.Message { return NewClearLed() })
	r.RegisterDefault(CmdSlowBlinkingLed, func() registry.Message { return NewSlowBlinkingLed() })
	r.RegisterDefault(CmdFastBlinkingLed, func() registry.Message { return NewFastBlinkingLed() })
	r.RegisterDefault(CmdUpdateLedStatus, func() registry.Message { return &UpdateLedStatus{} })

	r.RegisterOverride(CmdAnalogRaw, typeVMBMETEO, func() registry.Message { return &MeteoRaw{} })
	r.RegisterOverride(CmdAnalogRaw, typeVMB4AN, func() registry.Message { return &SensorRaw{} })

	r.RegisterOverride(CmdDaliDeviceSettingsRequest, typeVMBDALI, func() registry.Message { return &DaliDeviceSettingsRequest{} })
	r.RegisterOverride(CmdDaliDeviceSetting, typeVMBDALI, func() registry.Message { return &DaliDeviceSetting{} })
	r.RegisterDefault(CmdDaliDimValueStatus, func() registry.Message { return &DaliDimValueStatus{} })

	r.RegisterDefault(CmdSetRealtimeClock, func() registry.Message { return &SetRealtimeClock{} })
	r.RegisterDefault(CmdSetDate, func() registry.Message { return &SetDate{} })
	r.RegisterDefault(CmdSetDaylightSaving, func() registry.Message { return &SetDaylightSaving{} })

	r.RegisterDefault(CmdMemoText, func() registry.Message { return &MemoText{} })
	r.RegisterDefault(CmdSelectProgram, func() registry.Message { return &SelectProgram{} })
}

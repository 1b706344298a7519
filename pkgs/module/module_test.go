package module

import (
	"testing"

	"github.com/mpunie/govelbus/pkgs/channel"
	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/messages"
	"github.com/mpunie/govelbus/pkgs/protodesc"
)

type fakeSender struct {
	sent []frame.RawMessage
}

func (f *fakeSender) Send(msg frame.RawMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

func testDesc() *protodesc.ModuleDescription {
	return &protodesc.ModuleDescription{
		Type: 0x02,
		Name: "VMB1RY",
		Channels: map[int]protodesc.ChannelDescriptor{
			1: {Type: "Relay", Name: "Relay 1", Editable: true},
		},
	}
}

func TestLoadRequestsStatusAndNames(t *testing.T) {
	sender := &fakeSender{}
	m := New(0x10, 0x02, testDesc(), sender)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(sender.sent) < 2 {
		t.Fatalf("expected at least 2 outbound requests, got %d", len(sender.sent))
	}
	if c := m.Channel(1); c == nil {
		t.Fatalf("expected channel 1 to be declared after Load()")
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	sender := &fakeSender{}
	m := New(0x10, 0x02, testDesc(), sender)
	m.Load()
	first := len(sender.sent)
	m.Load()
	if len(sender.sent) != first {
		t.Errorf("second Load() call sent more requests: %d -> %d", first, len(sender.sent))
	}
}

func TestOnMessageRelayStatusUpdatesChannel(t *testing.T) {
	m := New(0x10, 0x02, testDesc(), nil)
	m.loadDefaultChannels()
	msg := &messages.RelayStatus{Channel: 1, Status: messages.RelayStatusOn}
	if err := m.OnMessage(messages.CmdRelayStatus, msg); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if c := m.Channel(1); c == nil || !c.On {
		t.Errorf("expected channel 1 On after RelayStatus")
	}
}

func TestIsLoadedFiresCallbackOnce(t *testing.T) {
	m := New(0x10, 0x02, testDesc(), nil)
	m.loadDefaultChannels()
	fired := 0
	m.OnLoaded(func(*Module) { fired++ })
	if m.IsLoaded() {
		t.Fatalf("expected not loaded before channel names arrive")
	}
	m.Channel(1).NamePart(1, "Re")
	m.Channel(1).NamePart(2, "la")
	m.Channel(1).NamePart(3, "y1")
	if !m.IsLoaded() {
		t.Fatalf("expected loaded after all channel names arrive")
	}
	if fired != 1 {
		t.Errorf("OnLoaded fired %d times, want 1", fired)
	}
}

func TestModuleTypeIdentity(t *testing.T) {
	m := New(0x10, 0x02, testDesc(), nil)
	msg := &messages.ModuleType{ModuleType: 0x02, BuildYear: 15, BuildWeek: 3}
	if err := m.OnMessage(messages.CmdModuleType, msg); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if m.BuildYear != 15 || m.BuildWeek != 3 {
		t.Errorf("BuildYear/BuildWeek = %d/%d, want 15/3", m.BuildYear, m.BuildWeek)
	}
}

func TestOnMessageModuleStatus2SetsSelectedProgram(t *testing.T) {
	desc := &protodesc.ModuleDescription{
		Type: 0x20,
		Name: "VMBGP4",
		Channels: map[int]protodesc.ChannelDescriptor{
			96: {Type: "SelectedProgram", Name: "Selected program", Editable: false},
		},
	}
	m := New(0x01, 0x20, desc, nil)
	m.loadDefaultChannels()

	msg := &messages.ModuleStatus2{SelectedProgram: 2}
	if err := m.OnMessage(messages.CmdModuleStatus, msg); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	c := m.Channel(96)
	if c == nil {
		t.Fatalf("expected synthetic channel 96 to exist")
	}
	if c.Program != "winter" {
		t.Errorf("Program = %q, want %q", c.Program, "winter")
	}
}

func daliTestDesc() *protodesc.ModuleDescription {
	return &protodesc.ModuleDescription{
		Type:   0x45,
		Name:   "VMBDALI",
		IsDALI: true,
	}
}

func TestDaliLoadCreatesPlaceholdersAndScans(t *testing.T) {
	sender := &fakeSender{}
	m := New(0x01, 0x45, daliTestDesc(), sender)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(m.Channels()) != daliChannelCount {
		t.Fatalf("expected %d placeholder channels, got %d", daliChannelCount, len(m.Channels()))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one DaliDeviceSettingsRequest, got %d", len(sender.sent))
	}
	if got := sender.sent[0].Data; len(got) < 3 || got[1] != 0xFF || got[2] != 0xFF {
		t.Errorf("expected an all-channels/all-settings request, got %v", got)
	}
}

func TestDaliDeviceTypeReplacesAndDeletesPlaceholders(t *testing.T) {
	m := New(0x01, 0x45, daliTestDesc(), nil)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	led := &messages.DaliDeviceSetting{Channel: 1, SubType: messages.DaliSubTypeDeviceType, DeviceType: messages.DaliLedModule}
	if err := m.OnMessage(messages.CmdDaliDeviceSetting, led); err != nil {
		t.Fatalf("OnMessage(led) error = %v", err)
	}
	c1 := m.Channel(1)
	if c1 == nil || c1.Kind != channel.KindDaliDimmer {
		t.Fatalf("expected channel 1 to become a Dimmer, got %+v", c1)
	}

	absent := &messages.DaliDeviceSetting{Channel: 2, SubType: messages.DaliSubTypeDeviceType, DeviceType: messages.DaliNoDevicePresent}
	if err := m.OnMessage(messages.CmdDaliDeviceSetting, absent); err != nil {
		t.Fatalf("OnMessage(absent) error = %v", err)
	}
	if m.Channel(2) != nil {
		t.Errorf("expected channel 2 to be removed")
	}
}

func TestDaliGroupDimValueFansOutToMembers(t *testing.T) {
	m := New(0x01, 0x45, daliTestDesc(), nil)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	led := &messages.DaliDeviceSetting{Channel: 1, SubType: messages.DaliSubTypeDeviceType, DeviceType: messages.DaliLedModule}
	m.OnMessage(messages.CmdDaliDeviceSetting, led)

	membership := &messages.DaliDeviceSetting{Channel: 1, SubType: messages.DaliSubTypeGroupMembers, Groups: [2]byte{0x01, 0x00}}
	if err := m.OnMessage(messages.CmdDaliDeviceSetting, membership); err != nil {
		t.Fatalf("OnMessage(membership) error = %v", err)
	}

	dim := &messages.DaliDimValueStatus{Index: 65, DimValues: []byte{200}}
	if err := m.OnMessage(messages.CmdDaliDimValueStatus, dim); err != nil {
		t.Fatalf("OnMessage(dim) error = %v", err)
	}
	if c := m.Channel(1); c == nil || c.DimmerLevel != 200 {
		t.Errorf("expected channel 1 DimmerLevel = 200, got %+v", c)
	}
}

func TestOnMessageCounterStatusUsesKWhScale(t *testing.T) {
	desc := &protodesc.ModuleDescription{
		Type: 0x22,
		Name: "VMB7IN",
		Channels: map[int]protodesc.ChannelDescriptor{
			1: {Type: "ButtonCounter", Name: "Counter 1", Editable: true},
		},
	}
	m := New(0x10, 0x22, desc, nil)
	m.loadDefaultChannels()
	m.Channel(1).Unit = "kWh"

	msg := &messages.CounterStatus{Channel: 1, Pulses: 100, Delay: 36}
	if err := m.OnMessage(messages.CmdCounterStatus, msg); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	c := m.Channel(1)
	want := float64(1000*3600*1000) / float64(36*100)
	if c.Rate != want {
		t.Errorf("Rate = %f, want %f (kWh scale)", c.Rate, want)
	}
}

func TestMatchesBitPattern(t *testing.T) {
	if !matchesBitPattern("000000##", 0x03) {
		t.Errorf("expected pattern to match 0x03 with wildcard low bits")
	}
	if matchesBitPattern("1#######", 0x03) {
		t.Errorf("expected pattern requiring high bit set to not match 0x03")
	}
}

package messages

import (
	"reflect"
	"testing"

	"github.com/mpunie/govelbus/pkgs/registry"
)

func TestRegisterIsOrderIndependentAndComplete(t *testing.T) {
	r := registry.New()
	Register(r)
	if !r.Has(CmdRelayStatus, typeVMB1RY) {
		t.Fatalf("expected RelayStatus to be registered")
	}
	if !r.Has(CmdBlindStatus, typeVMB1BL) {
		t.Fatalf("expected the VMB1BL blind status override to be registered")
	}
	if !r.Has(CmdDaliDeviceSetting, typeVMBDALI) {
		t.Fatalf("expected the DALI device setting override to be registered")
	}
}

func TestRelayStatusPopulate(t *testing.T) {
	m := &RelayStatus{}
	if err := m.Populate(0xFB, 0x12, false, []byte{0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if m.Channel != 3 {
		t.Errorf("Channel = %d, want 3", m.Channel)
	}
	if !m.On() {
		t.Errorf("expected On() to be true")
	}
}

func TestPushButtonStatusBitmasks(t *testing.T) {
	m := &PushButtonStatus{}
	if err := m.Populate(0xF8, 0x01, false, []byte{0x01, 0x02, 0x00}); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if !reflect.DeepEqual(m.Closed, []int{1}) {
		t.Errorf("Closed = %v, want [1]", m.Closed)
	}
	if !reflect.DeepEqual(m.Opened, []int{2}) {
		t.Errorf("Opened = %v, want [2]", m.Opened)
	}
}

func TestCounterStatusRate(t *testing.T) {
	m := &CounterStatus{Pulses: 100, Delay: 36}
	got := m.Rate(1)
	want := float64(1000*3600*1) / float64(36*100)
	if got != want {
		t.Errorf("Rate() = %f, want %f", got, want)
	}
	if (&CounterStatus{Delay: 0xFFFF, Pulses: 10}).Rate(1) != 0 {
		t.Errorf("expected sentinel delay to yield rate 0")
	}
}

// S4 from spec.md: ModuleStatus2's selected-program field decodes to its name.
func TestModuleStatus2SelectedProgramName(t *testing.T) {
	m := &ModuleStatus2{}
	if err := m.Populate(0xFB, 0x01, false, []byte{0, 0, 0, 0, 2, 0}); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if m.SelectedProgram != 2 {
		t.Errorf("SelectedProgram = %d, want 2", m.SelectedProgram)
	}
	if got := m.ProgramName(); got != "winter" {
		t.Errorf("ProgramName() = %q, want %q", got, "winter")
	}
}

// S3 from spec.md: climate-mode round trip encodes the sleep timer per mode.
func TestSwitchToClimateModeEncoding(t *testing.T) {
	cases := []struct {
		mode string
		want []byte
	}{
		{"manual", []byte{CmdSwitchToComfort, 0xFF, 0xFF}},
		{"run", []byte{CmdSwitchToDay, 0x00, 0x00}},
		{"sleep", []byte{CmdSwitchToNight, 0x01, 0xF4}},
	}
	for _, c := range cases {
		got := NewSwitchToClimateMode(c.mode, 500).EncodeData()
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("NewSwitchToClimateMode(%q).EncodeData() = %x, want %x", c.mode, got, c.want)
		}
	}
}

func TestTempSensorStatusModeNames(t *testing.T) {
	m := &TempSensorStatus{}
	if err := m.Populate(0xFB, 0x01, false, []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF}); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if m.StatusName() != "manual" {
		t.Errorf("StatusName() = %q, want manual", m.StatusName())
	}
	if m.SleepTimer != 0xFFFF {
		t.Errorf("SleepTimer = %x, want 0xFFFF", m.SleepTimer)
	}
}

// S4 from spec.md: selecting "winter" encodes program byte 2 in SelectProgram.
func TestSelectProgramRoundTrip(t *testing.T) {
	m := NewSelectProgram("winter")
	if m.Program != 2 {
		t.Errorf("Program = %d, want 2", m.Program)
	}
	if got := m.EncodeData(); !reflect.DeepEqual(got, []byte{CmdSelectProgram, 0x02}) {
		t.Errorf("EncodeData() = %x", got)
	}
}

func TestDaliDeviceSettingDeviceType(t *testing.T) {
	m := &DaliDeviceSetting{}
	if err := m.Populate(0xFB, 0x01, false, []byte{1, DaliSubTypeDeviceType, byte(DaliLedModule)}); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if m.DeviceType != DaliLedModule {
		t.Errorf("DeviceType = %v, want LedModule", m.DeviceType)
	}
}

func TestDaliGroupMembership(t *testing.T) {
	m := &DaliDeviceSetting{}
	if err := m.Populate(0xFB, 0x01, false, []byte{1, DaliSubTypeGroupMembers, 0x01, 0x00}); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if !m.IsGroupMember(0) {
		t.Errorf("expected group 0 membership")
	}
	if m.IsGroupMember(1) {
		t.Errorf("expected group 1 to not be a member")
	}
}

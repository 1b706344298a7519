package controller

import (
	"testing"

	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/handler"
	"github.com/mpunie/govelbus/pkgs/messages"
	"github.com/mpunie/govelbus/pkgs/module"
	"github.com/mpunie/govelbus/pkgs/protodesc"
	"github.com/mpunie/govelbus/pkgs/registry"
)

type fakeSender struct {
	sent []frame.RawMessage
}

func (f *fakeSender) Send(msg frame.RawMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) last() frame.RawMessage {
	return f.sent[len(f.sent)-1]
}

// wired builds a Controller bypassing Connect(): a handler pre-populated
// with one relay module at address 0x10, fed by a fakeSender so the
// channel-operation helpers can be exercised without opening a transport.
func wired(t *testing.T) (*Controller, *fakeSender) {
	t.Helper()
	reg := registry.New()
	messages.Register(reg)

	desc := &protodesc.Description{ModuleTypes: map[byte]*protodesc.ModuleDescription{
		0x02: {
			Type: 0x02,
			Name: "VMB1RY",
			Channels: map[int]protodesc.ChannelDescriptor{
				1: {Type: "Relay", Name: "Relay 1", Editable: true},
			},
		},
	}}

	sender := &fakeSender{}
	h := handler.New(reg, desc, sender)
	m := module.New(0x10, 0x02, desc.ModuleTypes[0x02], sender)
	m.PrepareChannels()
	h.InsertModule(0x10, m)

	return &Controller{sender: sender, handler: h, desc: desc, reg: reg}, sender
}

func TestTurnRelayOnSendsSwitchRelayOn(t *testing.T) {
	c, sender := wired(t)
	if err := c.TurnRelayOn(0x10, 1); err != nil {
		t.Fatalf("TurnRelayOn() error = %v", err)
	}
	got := &messages.SwitchRelayOn{}
	if err := got.Populate(0, 0, false, sender.last().DataOnly()); err != nil {
		t.Fatalf("decode sent frame: %v", err)
	}
	if len(got.Channels) != 1 || got.Channels[0] != 1 {
		t.Errorf("Channels = %v, want [1]", got.Channels)
	}
}

func TestTurnRelayOnUnknownChannel(t *testing.T) {
	c, _ := wired(t)
	if err := c.TurnRelayOn(0x10, 9); err != ErrUnknownChannel {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
	if err := c.TurnRelayOn(0x99, 1); err != ErrUnknownChannel {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
}

func TestGetAllFiltersByCategory(t *testing.T) {
	c, _ := wired(t)
	switches := c.GetAll("switch")
	if len(switches) != 1 {
		t.Fatalf("got %d switch channels, want 1", len(switches))
	}
	if len(c.GetAll("cover")) != 0 {
		t.Errorf("expected no cover channels")
	}
}

func TestSendBeforeConnectReturnsErrNotConnected(t *testing.T) {
	c := New(&protodesc.Description{ModuleTypes: map[byte]*protodesc.ModuleDescription{}}, "")
	if err := c.Send(frame.RawMessage{}); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
	if err := c.SyncClock(); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestSetMemoTextPagesIntoFiveByteChunks(t *testing.T) {
	c, sender := wired(t)
	if err := c.SetMemoText(0x10, "hello world"); err != nil {
		t.Fatalf("SetMemoText() error = %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("got %d chunks, want 3", len(sender.sent))
	}
	first := &messages.MemoText{}
	if err := first.Populate(0, 0, false, sender.sent[0].DataOnly()); err != nil {
		t.Fatalf("decode first chunk: %v", err)
	}
	if first.Start != 0 {
		t.Errorf("first chunk Start = %d, want 0", first.Start)
	}
}

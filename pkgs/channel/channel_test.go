package channel

import "testing"

func TestNameBufferAssemblesThreeParts(t *testing.T) {
	var n NameBuffer
	if n.AddPart(1, "Kitc") {
		t.Fatalf("expected not complete after one part")
	}
	if n.AddPart(3, "oom") {
		t.Fatalf("expected not complete after two parts")
	}
	if !n.AddPart(2, "hen L") {
		t.Fatalf("expected complete after three parts")
	}
	if got := n.String(); got != "Kitchen Loom" {
		t.Errorf("String() = %q, want %q", got, "Kitchen Loom")
	}
}

func TestNameBufferAssemblesPositions(t *testing.T) {
	var n NameBuffer
	n.AddPosition(0, 'H', false)
	n.AddPosition(1, 'i', false)
	if n.Complete() {
		t.Fatalf("expected not complete before save")
	}
	if !n.AddPosition(2, '!', true) {
		t.Fatalf("expected complete on save")
	}
	if got := n.String(); got != "Hi!" {
		t.Errorf("String() = %q, want %q", got, "Hi!")
	}
}

func TestKindCategories(t *testing.T) {
	if cats := KindRelay.Categories(); len(cats) != 1 || cats[0] != "switch" {
		t.Errorf("KindRelay.Categories() = %v", cats)
	}
	if cats := KindThermostat.Categories(); cats[0] != "climate" {
		t.Errorf("KindThermostat.Categories() = %v", cats)
	}
}

func TestChannelApplyRelayNotifies(t *testing.T) {
	c := New(0x01, 1, KindRelay)
	notified := false
	c.OnUpdate(func(*Channel) { notified = true })
	c.ApplyRelay(true, false, false, false)
	if !c.On {
		t.Errorf("expected On")
	}
	if !notified {
		t.Errorf("expected OnUpdate callback to fire")
	}
}

// TestTemperatureReconciliation follows the reconciliation contract
// literally: a reading that merely restates the currently stored value at
// its own resolution is a no-op, and a reading exactly one LSb below that
// restatement stores the restated value minus the stored finer precision,
// rather than truncating to the coarser incoming resolution.
func TestTemperatureReconciliation(t *testing.T) {
	var ts TemperatureState
	ts.Current, ts.Precision, ts.set = 21.0, 1.0/16, true

	ts.Update(21.0, 0.5)
	if ts.Current != 21.0 {
		t.Fatalf("after restated reading: Current = %v, want 21.0", ts.Current)
	}
	if ts.Precision != 1.0/16 {
		t.Fatalf("after restated reading: Precision = %v, want 1/16 (unchanged)", ts.Precision)
	}

	ts.Update(20.5, 0.5)
	want := 20.9375
	if ts.Current != want {
		t.Fatalf("after one-LSb-below reading: Current = %v, want %v", ts.Current, want)
	}
}

func TestTemperatureReconciliationAcceptsUnrelatedReading(t *testing.T) {
	var ts TemperatureState
	ts.Update(18.0, 0.5)
	if ts.Current != 18.0 || ts.Precision != 0.5 {
		t.Fatalf("first reading should be stored verbatim, got %v/%v", ts.Current, ts.Precision)
	}
	ts.Update(25.0, 1.0)
	if ts.Current != 25.0 || ts.Precision != 1.0 {
		t.Fatalf("unrelated coarser reading should overwrite, got %v/%v", ts.Current, ts.Precision)
	}
}

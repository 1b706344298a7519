package registry

import "testing"

type fakeMessage struct{}

func (fakeMessage) Populate(priority, address byte, rtr bool, data []byte) error { return nil }
func (fakeMessage) EncodeData() []byte                                          { return nil }

func newFake() Message { return fakeMessage{} }

func TestGetPrefersOverride(t *testing.T) {
	r := New()
	r.RegisterDefault(0x01, newFake)
	r.RegisterOverride(0x01, 0x08, newFake)

	ctor, ok := r.Get(0x01, 0x08)
	if !ok || ctor == nil {
		t.Fatalf("expected an override hit")
	}
	ctor, ok = r.Get(0x01, 0x02)
	if !ok || ctor == nil {
		t.Fatalf("expected to fall back to default")
	}
	if _, ok := r.Get(0x99, 0x02); ok {
		t.Fatalf("expected no match for unregistered command")
	}
}

func TestDuplicateDefaultPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	r := New()
	r.RegisterDefault(0x01, newFake)
	r.RegisterDefault(0x01, newFake)
}

func TestDuplicateOverridePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate override registration")
		}
	}()
	r := New()
	r.RegisterOverride(0x01, 0x08, newFake)
	r.RegisterOverride(0x01, 0x08, newFake)
}

func TestHas(t *testing.T) {
	r := New()
	if r.Has(0x01, 0x00) {
		t.Fatalf("expected Has to be false before registration")
	}
	r.RegisterDefault(0x01, newFake)
	if !r.Has(0x01, 0x00) {
		t.Fatalf("expected Has to be true after registration")
	}
}

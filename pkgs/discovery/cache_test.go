package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mpunie/govelbus/pkgs/module"
	"github.com/mpunie/govelbus/pkgs/protodesc"
)

func testModuleDesc() *protodesc.ModuleDescription {
	return &protodesc.ModuleDescription{
		Type: 0x01,
		Name: "VMB4RY",
		Channels: map[int]protodesc.ChannelDescriptor{
			1: {Type: "Relay", Name: "Relay 1", Editable: true},
			2: {Type: "Relay", Name: "Relay 2", Editable: true},
		},
	}
}

func TestSaveCacheThenLoadCacheRoundTrips(t *testing.T) {
	dir := t.TempDir()
	m := module.New(5, 0x01, testModuleDesc(), nil)
	m.PrepareChannels()
	m.Name.SetComplete("Kitchen")
	m.Channel(1).Name.SetComplete("Ceiling Light")

	if err := saveCache(dir, m); err != nil {
		t.Fatalf("saveCache() error = %v", err)
	}

	cm, ok := loadCache(dir, 5)
	if !ok {
		t.Fatalf("loadCache() ok = false, want true")
	}
	if cm.Name != "Kitchen" {
		t.Errorf("Name = %q, want %q", cm.Name, "Kitchen")
	}
	if cm.Type != 0x01 {
		t.Errorf("Type = %#x, want %#x", cm.Type, 0x01)
	}
	if cm.Channels[1].Name != "Ceiling Light" {
		t.Errorf("Channels[1].Name = %q, want %q", cm.Channels[1].Name, "Ceiling Light")
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, ok := loadCache(dir, 99); ok {
		t.Fatalf("loadCache() ok = true for missing file, want false")
	}
}

func TestLoadCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(cachePath(dir, 7), []byte("not json"), 0o644); err != nil {
		t.Fatalf("setup write: %v", err)
	}
	if _, ok := loadCache(dir, 7); ok {
		t.Fatalf("loadCache() ok = true for corrupt file, want false")
	}
}

func TestLoadCacheVersionMismatchTriggersRescan(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"version": 99, "name": "Old", "type": 1, "channels": {}}`)
	if err := os.WriteFile(cachePath(dir, 3), raw, 0o644); err != nil {
		t.Fatalf("setup write: %v", err)
	}
	if _, ok := loadCache(dir, 3); ok {
		t.Fatalf("loadCache() ok = true for version mismatch, want false")
	}
}

func TestRehydrateAppliesNamesToFreshModule(t *testing.T) {
	m := module.New(5, 0x01, testModuleDesc(), nil)
	m.PrepareChannels()
	cm := &cachedModule{
		Version: cacheVersion,
		Name:    "Kitchen",
		Type:    0x01,
		Channels: map[int]cachedChannel{
			1: {Name: "Ceiling Light", Unit: ""},
			2: {Name: "Wall Socket", Unit: "W"},
		},
	}

	rehydrate(m, cm)

	if m.Name.String() != "Kitchen" {
		t.Errorf("module name = %q, want %q", m.Name.String(), "Kitchen")
	}
	if got := m.Channel(2).Unit; got != "W" {
		t.Errorf("channel 2 unit = %q, want %q", got, "W")
	}
}

func TestDefaultCacheDirUnderHome(t *testing.T) {
	dir := DefaultCacheDir()
	if filepath.Base(dir) != ".velbuscache" {
		t.Errorf("DefaultCacheDir() = %q, want suffix .velbuscache", dir)
	}
}

package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpunie/govelbus/pkgs/module"
)

// cacheVersion is bumped whenever the on-disk shape changes incompatibly; a
// mismatched version makes LoadCache treat the file as absent and the
// address gets a full rescan, per spec.md §4.G "cache format must be
// versioned enough that an incompatible version triggers a rescan".
const cacheVersion = 1

// cachedChannel mirrors spec.md §6's {name, type, Unit?} cache entry shape.
type cachedChannel struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Unit string `json:"Unit,omitempty"`
}

// cachedModule is the JSON document stored at one address's cache file.
// JSON, not the pickle some revisions used, per spec.md §9 "prefer JSON for
// forward compatibility".
type cachedModule struct {
	Version  int                   `json:"version"`
	Name     string                `json:"name"`
	Type     byte                  `json:"type"`
	Channels map[int]cachedChannel `json:"channels"`
}

// DefaultCacheDir returns ~/.velbuscache, per spec.md §6.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".velbuscache"
	}
	return filepath.Join(home, ".velbuscache")
}

func cachePath(dir string, address byte) string {
	return filepath.Join(dir, fmt.Sprintf("%d.json", address))
}

// loadCache reads and decodes the cache file for address. A missing,
// corrupt or version-mismatched file is reported as (nil, false) rather than
// an error: the caller falls back to a fresh Phase 1 scan of that address,
// per spec.md §4.G and §7 ("loader must tolerate missing/corrupt files by
// ignoring them").
func loadCache(dir string, address byte) (*cachedModule, bool) {
	raw, err := os.ReadFile(cachePath(dir, address))
	if err != nil {
		return nil, false
	}
	var cm cachedModule
	if err := json.Unmarshal(raw, &cm); err != nil {
		return nil, false
	}
	if cm.Version != cacheVersion {
		return nil, false
	}
	return &cm, true
}

// saveCache rewrites the cache entry for m. Its only caller is
// Scanner.SaveCache; a channel state change does not rewrite the entry.
func saveCache(dir string, m *module.Module) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("discovery: create cache dir %s: %w", dir, err)
	}

	cm := cachedModule{
		Version:  cacheVersion,
		Name:     m.Name.String(),
		Type:     m.Type,
		Channels: make(map[int]cachedChannel, len(m.Channels())),
	}
	for n, c := range m.Channels() {
		cm.Channels[n] = cachedChannel{Name: c.Name.String(), Type: c.Kind.String(), Unit: c.Unit}
	}

	raw, err := json.MarshalIndent(cm, "", "  ")
	if err != nil {
		return fmt.Errorf("discovery: marshal cache for address %d: %w", m.Address, err)
	}
	return os.WriteFile(cachePath(dir, m.Address), raw, 0o644)
}

// rehydrate applies a cache entry to a freshly-created module shell:
// restoring the learned name and channel names ahead of a refreshing
// ModuleStatusRequest, per spec.md §4.G's cache interaction.
func rehydrate(m *module.Module, cm *cachedModule) {
	m.Name.SetComplete(cm.Name)
	for n, cc := range cm.Channels {
		if c := m.Channel(n); c != nil {
			c.Name.SetComplete(cc.Name)
			c.Unit = cc.Unit
		}
	}
}

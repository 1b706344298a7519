package protodesc

import (
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

//go:embed protocol.json
var packaged embed.FS

// jsonChannel, jsonMemory and jsonRoot mirror the on-disk protocol.json
// layout. They exist only to decode into the richer ModuleDescription the
// rest of the library works with.
type jsonChannel struct {
	Type     string `json:"Type"`
	Name     string `json:"Name"`
	Editable bool   `json:"Editable"`
}

type jsonMatchEntry struct {
	Pattern string `json:"Pattern"`
	Channel int    `json:"Channel"`
	SubName string `json:"SubName"`
	Value   string `json:"Value"`
}

type jsonMemory struct {
	ModuleNamePosition *int             `json:"ModuleNamePosition"`
	Match              []jsonMatchEntry `json:"Match"`
}

type jsonModuleType struct {
	Name               string                 `json:"Name"`
	IsDALI             bool                   `json:"IsDALI"`
	Channels           map[string]jsonChannel `json:"Channels"`
	Memory             map[string]jsonMemory  `json:"Memory"`
	TemperatureChannel int                    `json:"TemperatureChannel"`
	ThermostatChannels map[string]int         `json:"ThermostatChannels"`
}

type jsonRoot struct {
	ModuleTypes       map[string]jsonModuleType `json:"ModuleTypes"`
	MessagesBroadCast []string                  `json:"MessagesBroadCast"`
}

// Load reads and decodes the packaged protocol description. It is offloaded
// onto a goroutine and the result delivered on the returned channel so a
// caller driving a single-goroutine event loop is never blocked on file I/O,
// per spec.md §4.D. The channel receives exactly one value and is then
// closed.
func Load() <-chan loadResult {
	out := make(chan loadResult, 1)
	go func() {
		defer close(out)
		desc, err := loadSync()
		out <- loadResult{Description: desc, Err: err}
	}()
	return out
}

type loadResult struct {
	Description *Description
	Err         error
}

func loadSync() (*Description, error) {
	raw, err := packaged.ReadFile("protocol.json")
	if err != nil {
		return nil, fmt.Errorf("protodesc: read packaged protocol.json: %w", err)
	}

	var root jsonRoot
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("protodesc: decode protocol.json: %w", err)
	}

	desc := &Description{
		ModuleTypes:       make(map[byte]*ModuleDescription, len(root.ModuleTypes)),
		MessagesBroadCast: make(map[byte]bool, len(root.MessagesBroadCast)),
	}

	for hexCmd := range root.MessagesBroadCast {
		b, err := hex.DecodeString(root.MessagesBroadCast[hexCmd])
		if err != nil || len(b) != 1 {
			logrus.WithField("value", root.MessagesBroadCast[hexCmd]).Warn("protodesc: ignoring malformed broadcast command byte")
			continue
		}
		desc.MessagesBroadCast[b[0]] = true
	}

	for hexType, jm := range root.ModuleTypes {
		typeBytes, err := hex.DecodeString(hexType)
		if err != nil || len(typeBytes) != 1 {
			logrus.WithField("value", hexType).Warn("protodesc: ignoring module type with malformed key")
			continue
		}

		md := &ModuleDescription{
			Type:               typeBytes[0],
			Name:               jm.Name,
			Channels:           make(map[int]ChannelDescriptor, len(jm.Channels)),
			Memory:             make(map[string]MemoryDirective, len(jm.Memory)),
			TemperatureChannel: jm.TemperatureChannel,
			HasTemperature:     jm.TemperatureChannel != 0,
			ThermostatChannels: jm.ThermostatChannels,
			IsDALI:             jm.IsDALI,
		}

		for chanKey, jc := range jm.Channels {
			n, err := parseChannelNumber(chanKey)
			if err != nil {
				logrus.WithFields(logrus.Fields{"module": jm.Name, "channel": chanKey}).Warn("protodesc: skipping channel with malformed key")
				continue
			}
			md.Channels[n] = ChannelDescriptor{Type: jc.Type, Name: jc.Name, Editable: jc.Editable}
		}

		for addr, jmem := range jm.Memory {
			directive := MemoryDirective{ModuleNamePosition: -1}
			if jmem.ModuleNamePosition != nil {
				directive.ModuleNamePosition = *jmem.ModuleNamePosition
				directive.IsModuleName = true
			}
			for _, m := range jmem.Match {
				directive.Match = append(directive.Match, MatchEntry{
					Pattern: m.Pattern,
					Channel: m.Channel,
					SubName: m.SubName,
					Value:   m.Value,
				})
			}
			md.Memory[addr] = directive
		}

		desc.ModuleTypes[typeBytes[0]] = md
	}

	return desc, nil
}

func parseChannelNumber(key string) (int, error) {
	var n int
	_, err := fmt.Sscanf(key, "%d", &n)
	return n, err
}

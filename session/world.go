package session

import (
	"fmt"

	"github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/cooldogedev/crossplay/mappings"
)

const (
	registryDimensionType = "minecraft:dimension_type"
	registryBiome         = "minecraft:worldgen/biome"
)

// dimensionType is the part of a Java dimension type the proxy needs to lay out chunk columns.
type dimensionType struct {
	name   string
	minY   int32
	height int32
}

// sections returns the amount of sections in a chunk column of the dimension type.
func (d dimensionType) sections() int {
	return int(d.height) >> 4
}

// vanillaDimensionTypes are used for dimension types a server does not describe, which happens when it
// relies on the client knowing the vanilla data pack.
var vanillaDimensionTypes = map[string]dimensionType{
	"minecraft:overworld":       {name: "minecraft:overworld", minY: -64, height: 384},
	"minecraft:overworld_caves": {name: "minecraft:overworld_caves", minY: -64, height: 384},
	"minecraft:the_nether":      {name: "minecraft:the_nether", minY: 0, height: 256},
	"minecraft:the_end":         {name: "minecraft:the_end", minY: 0, height: 256},
}

// world caches the state of the Java world the client is in.
type world struct {
	dimensionTypes []dimensionType
	biomes         []string

	dimensionType dimensionType
	dimensionName string
	dimension     mappings.Dimension

	gameMode   int32
	difficulty uint8
	timeOfDay  int64
	raining    bool
	hardcore   bool

	spawned      bool
	dead         bool
	viewDistance int32
	centerX      int32
	centerZ      int32
	spawn        protocol.BlockPos
}

func newWorld() *world {
	return &world{
		dimensionType: vanillaDimensionTypes["minecraft:overworld"],
		dimension:     mappings.BedrockDimension("minecraft:overworld"),
		difficulty:    2,
	}
}

// loadCodec loads the registries of the network NBT codec sent by 1.20.3 servers.
func (w *world) loadCodec(b []byte) error {
	v, err := protocol.DecodeNetworkNBT(b)
	if err != nil {
		return fmt.Errorf("decode registry codec: %w", err)
	}
	codec, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("registry codec is %T, not a compound", v)
	}
	for _, id := range []string{registryDimensionType, registryBiome} {
		registry, _ := codec[id].(map[string]any)
		values, _ := registry["value"].([]any)
		entries := make(map[int32]registryValue, len(values))
		for _, value := range values {
			entry, _ := value.(map[string]any)
			name, _ := entry["name"].(string)
			rid, _ := entry["id"].(int32)
			element, _ := entry["element"].(map[string]any)
			entries[rid] = registryValue{name: name, element: element}
		}
		w.setRegistry(id, entries)
	}
	return nil
}

// loadRegistry loads a registry sent by 1.20.5 servers, which send every registry in a packet of its own.
// The id of an entry is its index.
func (w *world) loadRegistry(id string, entries []javapacket.RegistryEntry) error {
	if id != registryDimensionType && id != registryBiome {
		return nil
	}
	values := make(map[int32]registryValue, len(entries))
	for i, entry := range entries {
		value := registryValue{name: protocol.QualifyIdentifier(entry.Name)}
		if entry.HasData {
			v, err := protocol.DecodeNetworkNBT(entry.Data)
			if err != nil {
				return fmt.Errorf("decode %v entry %v: %w", id, entry.Name, err)
			}
			value.element, _ = v.(map[string]any)
		}
		values[int32(i)] = value
	}
	w.setRegistry(id, values)
	return nil
}

type registryValue struct {
	name    string
	element map[string]any
}

func (w *world) setRegistry(id string, values map[int32]registryValue) {
	n := 0
	for rid := range values {
		n = max(n, int(rid)+1)
	}
	switch id {
	case registryDimensionType:
		w.dimensionTypes = make([]dimensionType, n)
		for rid, v := range values {
			d, ok := vanillaDimensionTypes[v.name]
			if !ok {
				d = vanillaDimensionTypes["minecraft:overworld"]
			}
			d.name = v.name
			if minY, ok := v.element["min_y"].(int32); ok {
				d.minY = minY
			}
			if height, ok := v.element["height"].(int32); ok {
				d.height = height
			}
			w.dimensionTypes[rid] = d
		}
	case registryBiome:
		w.biomes = make([]string, n)
		for rid, v := range values {
			w.biomes[rid] = v.name
		}
	}
}

// biome returns the name of a biome registry id.
func (w *world) biome(id uint32) string {
	if int(id) < len(w.biomes) {
		return w.biomes[id]
	}
	return ""
}

// resolveDimensionType returns the dimension type a player spawns in. 1.20.3 servers send the name of the
// type, later versions its registry id.
func (w *world) resolveDimensionType(spawn javapacket.SpawnInfo, version int32) dimensionType {
	name := spawn.DimensionType
	if version >= protocol.Version1_20_5 {
		if id := spawn.DimensionTypeID; id >= 0 && int(id) < len(w.dimensionTypes) {
			return w.dimensionTypes[id]
		}
		name = ""
	}
	for _, d := range w.dimensionTypes {
		if d.name == name {
			return d
		}
	}
	if d, ok := vanillaDimensionTypes[name]; ok {
		return d
	}
	return vanillaDimensionTypes["minecraft:overworld"]
}

// enter moves the world to the dimension of a spawn. It reports whether the Bedrock dimension shown to the
// client changed.
func (w *world) enter(spawn javapacket.SpawnInfo, version int32) bool {
	prev := w.dimension
	w.dimensionType = w.resolveDimensionType(spawn, version)
	w.dimensionName = spawn.DimensionName
	w.dimension = mappings.BedrockDimension(w.dimensionType.name)
	w.gameMode = bedrockGameMode(spawn.GameMode)
	return prev.ID != w.dimension.ID
}

// bedrockGameMode returns the Bedrock game type of a Java game mode.
func bedrockGameMode(javaMode uint8) int32 {
	switch javaMode {
	case 0:
		return gameTypeSurvival
	case 1:
		return gameTypeCreative
	case 2:
		return gameTypeAdventure
	case 3:
		return gameTypeSpectator
	}
	return gameTypeSurvival
}

// Bedrock game types.
const (
	gameTypeSurvival  int32 = 0
	gameTypeCreative  int32 = 1
	gameTypeAdventure int32 = 2
	gameTypeSpectator int32 = 6
)

package mappings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Options configure how a Set handles identifiers it has no mapping for.
type Options struct {
	// FallbackBlock is the Bedrock block shown in place of Java block states without a mapping.
	FallbackBlock string
	// FallbackItem is the Bedrock item shown in place of Java items without a mapping.
	FallbackItem string
}

// Set holds the identifier tables of one pair of Bedrock and Java protocol versions. A Set is immutable
// and may be shared by any number of sessions.
type Set struct {
	front, back int32

	blocks            []uint32
	blockMapped       []bool
	blocksRev         map[uint32]int32
	fallbackBlock     uint32
	javaFallbackBlock int32
	airBlock          uint32
	javaBlockBits     int

	items            map[int32]int32
	itemsRev         map[int32]int32
	itemEntries      []protocol.ItemEntry
	itemNames        map[int32]string
	stackSizes       map[int32]int32
	fallbackItem     int32
	javaFallbackItem int32
	shieldID         int32

	entities      []string
	javaEntityIDs map[string]int32

	sounds        map[string]string
	biomes        map[string]uint32
	fallbackBiome uint32
}

// Tables holds the Sets of every supported pair of protocol versions.
type Tables struct {
	sets map[[2]int32]*Set
}

// ResolveAll resolves a Set for every combination of the Bedrock and Java protocol versions passed.
func (d *Data) ResolveAll(fronts, backs []int32, opts Options) (*Tables, error) {
	t := &Tables{sets: make(map[[2]int32]*Set, len(fronts)*len(backs))}
	for _, front := range fronts {
		for _, back := range backs {
			s, err := d.Resolve(front, back, opts)
			if err != nil {
				return nil, fmt.Errorf("resolve mappings for bedrock %v and java %v: %w", front, back, err)
			}
			t.sets[[2]int32{front, back}] = s
		}
	}
	return t, nil
}

// Set returns the Set of a pair of protocol versions.
func (t *Tables) Set(front, back int32) (*Set, bool) {
	s, ok := t.sets[[2]int32{front, back}]
	return s, ok
}

// Resolve builds the Set for the Bedrock protocol front and the Java protocol back.
func (d *Data) Resolve(front, back int32, opts Options) (*Set, error) {
	s := &Set{
		front:         front,
		back:          back,
		blocksRev:     make(map[uint32]int32),
		items:         make(map[int32]int32),
		itemsRev:      make(map[int32]int32),
		itemNames:     make(map[int32]string),
		stackSizes:    make(map[int32]int32),
		javaEntityIDs: make(map[string]int32),
		sounds:        d.sounds.Sounds,
		biomes:        d.biomes.Biomes,
	}
	if err := s.resolveBlocks(d.blocks, opts.FallbackBlock); err != nil {
		return nil, err
	}
	if err := s.resolveItems(d.items, opts.FallbackItem); err != nil {
		return nil, err
	}
	if err := s.resolveEntities(d.entities); err != nil {
		return nil, err
	}
	fallbackBiome, ok := d.biomes.Biomes[d.biomes.Fallback]
	if !ok {
		return nil, fmt.Errorf("fallback biome %v has no bedrock id", d.biomes.Fallback)
	}
	s.fallbackBiome = fallbackBiome
	return s, nil
}

func (s *Set) resolveBlocks(f blockFile, fallback string) error {
	bits, ok := f.JavaBits[strconv.Itoa(int(s.back))]
	if !ok {
		return fmt.Errorf("no block state count for java protocol %v", s.back)
	}
	s.javaBlockBits = bits

	var maxID int32
	for _, e := range f.Blocks {
		if includes(e.Versions, s.back) {
			maxID = max(maxID, e.Java)
		}
	}
	s.blocks = make([]uint32, maxID+1)
	s.blockMapped = make([]bool, maxID+1)
	for _, e := range f.Blocks {
		if !includes(e.Versions, s.back) {
			continue
		}
		if e.Java < 0 {
			return fmt.Errorf("negative java block state %v", e.Java)
		}
		rid := e.Bedrock.RuntimeID()
		s.blocks[e.Java], s.blockMapped[e.Java] = rid, true
		if _, ok := s.blocksRev[rid]; !ok {
			s.blocksRev[rid] = e.Java
		}
	}

	if fallback == "" {
		fallback = f.Fallback
	}
	s.fallbackBlock = parseBlockState(fallback).RuntimeID()
	s.airBlock = BlockState{Name: "minecraft:air"}.RuntimeID()
	if java, ok := s.blocksRev[s.fallbackBlock]; ok {
		s.javaFallbackBlock = java
	}
	return nil
}

// parseBlockState parses a block state written as name[key=value,...], as in commands.
func parseBlockState(s string) BlockState {
	name, props, ok := strings.Cut(s, "[")
	state := BlockState{Name: qualify(name)}
	if !ok {
		return state
	}
	state.Properties = make(map[string]any)
	for _, kv := range strings.Split(strings.TrimSuffix(props, "]"), ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			state.Properties[k] = int32(n)
		} else if v == "true" || v == "false" {
			state.Properties[k] = v == "true"
		} else {
			state.Properties[k] = strings.Trim(v, `"`)
		}
	}
	return state
}

func qualify(name string) string {
	if name == "" || strings.Contains(name, ":") {
		return name
	}
	return "minecraft:" + name
}

func (s *Set) resolveItems(f itemFile, fallback string) error {
	names := make([]string, 0, len(f.Items))
	for _, e := range f.Items {
		if includes(e.Versions, s.back) && !slices.Contains(names, e.Bedrock) {
			names = append(names, e.Bedrock)
		}
	}
	// Air is always runtime id 0. Other items are numbered in the order they appear.
	runtimeIDs := make(map[string]int32, len(names))
	next := int32(1)
	for _, name := range names {
		if name == "minecraft:air" {
			runtimeIDs[name] = 0
			continue
		}
		runtimeIDs[name] = next
		s.itemEntries = append(s.itemEntries, protocol.ItemEntry{Name: name, RuntimeID: int16(next)})
		s.itemNames[next] = name
		next++
	}
	for _, e := range f.Items {
		if !includes(e.Versions, s.back) || e.Java == nil {
			continue
		}
		rid := runtimeIDs[e.Bedrock]
		s.items[*e.Java] = rid
		if e.Stack < 0 || e.Stack > 99 {
			return fmt.Errorf("item %v: invalid stack size %v", *e.Java, e.Stack)
		}
		if e.Stack != 0 {
			s.stackSizes[*e.Java] = e.Stack
		}
		if _, ok := s.itemsRev[rid]; !ok {
			s.itemsRev[rid] = *e.Java
		}
	}
	if fallback == "" {
		fallback = f.Fallback
	}
	rid, ok := runtimeIDs[qualify(fallback)]
	if !ok {
		return fmt.Errorf("fallback item %v is not a known item", fallback)
	}
	s.fallbackItem = rid
	s.javaFallbackItem = s.itemsRev[rid]
	s.shieldID = runtimeIDs["minecraft:shield"]
	return nil
}

func (s *Set) resolveEntities(f entityFile) error {
	registry, ok := f.Registries[strconv.Itoa(int(s.back))]
	if !ok {
		return fmt.Errorf("no entity registry for java protocol %v", s.back)
	}
	s.entities = make([]string, len(registry))
	for id, name := range registry {
		s.javaEntityIDs[name] = int32(id)
		if slices.Contains(f.Unsupported, name) {
			continue
		}
		if bedrock, ok := f.Bedrock[name]; ok {
			s.entities[id] = bedrock
			continue
		}
		s.entities[id] = name
	}
	return nil
}

// Front returns the Bedrock protocol version of the Set.
func (s *Set) Front() int32 {
	return s.front
}

// Back returns the Java protocol version of the Set.
func (s *Set) Back() int32 {
	return s.back
}

// BedrockBlock returns the Bedrock runtime id of a Java block state.
func (s *Set) BedrockBlock(java int32) (uint32, bool) {
	if java < 0 || int(java) >= len(s.blocks) || !s.blockMapped[java] {
		return 0, false
	}
	return s.blocks[java], true
}

// JavaBlock returns the Java block state of a Bedrock runtime id.
func (s *Set) JavaBlock(rid uint32) (int32, bool) {
	java, ok := s.blocksRev[rid]
	return java, ok
}

// FallbackBlock returns the Bedrock runtime id shown for Java block states without a mapping.
func (s *Set) FallbackBlock() uint32 {
	return s.fallbackBlock
}

// JavaFallbackBlock returns the Java block state used for Bedrock blocks without a mapping.
func (s *Set) JavaFallbackBlock() int32 {
	return s.javaFallbackBlock
}

// AirBlock returns the Bedrock runtime id of air.
func (s *Set) AirBlock() uint32 {
	return s.airBlock
}

// JavaBlockBits returns the amount of bits needed to hold any Java block state id.
func (s *Set) JavaBlockBits() int {
	return s.javaBlockBits
}

// BedrockItem returns the Bedrock runtime id of a Java item.
func (s *Set) BedrockItem(java int32) (int32, bool) {
	rid, ok := s.items[java]
	return rid, ok
}

// JavaItem returns the Java item id of a Bedrock runtime id.
func (s *Set) JavaItem(rid int32) (int32, bool) {
	java, ok := s.itemsRev[rid]
	return java, ok
}

// MaxStack returns the max stack size of a Java item.
func (s *Set) MaxStack(java int32) int32 {
	if n, ok := s.stackSizes[java]; ok {
		return n
	}
	return 64
}

// FallbackItem returns the Bedrock runtime id shown for Java items without a mapping.
func (s *Set) FallbackItem() int32 {
	return s.fallbackItem
}

// JavaFallbackItem returns the Java item used for Bedrock items without a mapping.
func (s *Set) JavaFallbackItem() int32 {
	return s.javaFallbackItem
}

// ItemName returns the Bedrock name of an item runtime id.
func (s *Set) ItemName(rid int32) string {
	if rid == 0 {
		return "minecraft:air"
	}
	return s.itemNames[rid]
}

// ItemEntries returns the items to send in the item registry of the client.
func (s *Set) ItemEntries() []protocol.ItemEntry {
	return s.itemEntries
}

// ShieldID returns the runtime id of the shield, which has a different item layout in Bedrock packets.
func (s *Set) ShieldID() int32 {
	return s.shieldID
}

// BedrockEntity returns the Bedrock identifier of a Java entity type, or false if Bedrock has no equivalent.
func (s *Set) BedrockEntity(javaType int32) (string, bool) {
	if javaType < 0 || int(javaType) >= len(s.entities) || s.entities[javaType] == "" {
		return "", false
	}
	return s.entities[javaType], true
}

// JavaEntityType returns the Java entity type id of an entity name.
func (s *Set) JavaEntityType(name string) (int32, bool) {
	id, ok := s.javaEntityIDs[name]
	return id, ok
}

// BedrockSound returns the Bedrock sound name of a Java sound event.
func (s *Set) BedrockSound(javaName string) (string, bool) {
	name, ok := s.sounds[qualify(javaName)]
	return name, ok
}

// BedrockBiome returns the Bedrock biome id of a Java biome, falling back to the configured default.
func (s *Set) BedrockBiome(javaName string) uint32 {
	if id, ok := s.biomes[javaName]; ok {
		return id
	}
	return s.fallbackBiome
}

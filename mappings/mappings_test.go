package mappings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

func resolve(t *testing.T, back int32) *Set {
	t.Helper()
	d, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := d.Resolve(protocol.CurrentProtocol, back, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return s
}

func TestBlocks(t *testing.T) {
	s := resolve(t, 765)
	stone := BlockState{Name: "minecraft:stone"}.RuntimeID()

	if rid, ok := s.BedrockBlock(0); !ok || rid != s.AirBlock() {
		t.Fatalf("java air maps to %v (%v), want %v", rid, ok, s.AirBlock())
	}
	if rid, ok := s.BedrockBlock(1); !ok || rid != stone {
		t.Fatalf("java stone maps to %v (%v), want %v", rid, ok, stone)
	}
	if java, ok := s.JavaBlock(stone); !ok || java != 1 {
		t.Fatalf("bedrock stone maps to %v (%v), want 1", java, ok)
	}
	if _, ok := s.BedrockBlock(20000); ok {
		t.Fatal("unexpected mapping for unknown block state")
	}
	if _, ok := s.BedrockBlock(-1); ok {
		t.Fatal("unexpected mapping for negative block state")
	}
	if s.FallbackBlock() != stone || s.JavaFallbackBlock() != 1 {
		t.Fatalf("fallback = %v/%v, want stone", s.FallbackBlock(), s.JavaFallbackBlock())
	}
	if s.JavaBlockBits() != 15 {
		t.Fatalf("java block bits = %v, want 15", s.JavaBlockBits())
	}

	// Both snowy and non-snowy grass map to the same Bedrock block; the reverse mapping picks the first.
	grass8, _ := s.BedrockBlock(8)
	grass9, _ := s.BedrockBlock(9)
	if grass8 != grass9 {
		t.Fatal("expected both grass states to map to the same block")
	}
	if java, _ := s.JavaBlock(grass8); java != 8 {
		t.Fatalf("reverse grass mapping = %v, want 8", java)
	}

	water := parseBlockState("minecraft:water[liquid_depth=3]").RuntimeID()
	if rid, _ := s.BedrockBlock(83); rid != water {
		t.Fatalf("java water level 3 maps to %v, want %v", rid, water)
	}
}

func TestFallbackBlockOption(t *testing.T) {
	d, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.Resolve(protocol.CurrentProtocol, 766, Options{FallbackBlock: "bedrock[infiniburn_bit=false]"})
	if err != nil {
		t.Fatal(err)
	}
	if want, _ := s.BedrockBlock(79); s.FallbackBlock() != want || s.JavaFallbackBlock() != 79 {
		t.Fatalf("fallback = %v/%v, want bedrock", s.FallbackBlock(), s.JavaFallbackBlock())
	}
}

func TestRuntimeID(t *testing.T) {
	if id := (BlockState{Name: "minecraft:unknown"}).RuntimeID(); id != UnknownRuntimeID {
		t.Fatalf("unknown = %#x", id)
	}
	a := BlockState{Name: "minecraft:oak_log", Properties: map[string]any{"pillar_axis": "y"}}.RuntimeID()
	b := BlockState{Name: "minecraft:oak_log", Properties: map[string]any{"pillar_axis": "x"}}.RuntimeID()
	if a == b {
		t.Fatal("different states must hash differently")
	}
	c := BlockState{Name: "minecraft:sapling", Properties: map[string]any{"age_bit": true, "stage": int32(1)}}.RuntimeID()
	d := BlockState{Name: "minecraft:sapling", Properties: map[string]any{"stage": float64(1), "age_bit": uint8(1)}}.RuntimeID()
	if c != d {
		t.Fatal("equivalent states must hash the same regardless of property order or type")
	}
}

func TestItems(t *testing.T) {
	s := resolve(t, 766)
	if rid, ok := s.BedrockItem(0); !ok || rid != 0 {
		t.Fatalf("air = %v (%v)", rid, ok)
	}
	rid, ok := s.BedrockItem(1)
	if !ok || s.ItemName(rid) != "minecraft:stone" {
		t.Fatalf("stone = %v (%v)", rid, ok)
	}
	if java, ok := s.JavaItem(rid); !ok || java != 1 {
		t.Fatalf("reverse stone = %v (%v)", java, ok)
	}
	if s.ShieldID() == 0 {
		t.Fatal("expected a shield runtime id")
	}
	for _, e := range s.ItemEntries() {
		if e.Name == "minecraft:air" || e.RuntimeID == 0 {
			t.Fatalf("air must not be in the item registry: %+v", e)
		}
	}
	if s.FallbackItem() != rid || s.JavaFallbackItem() != 1 {
		t.Fatalf("fallback item = %v/%v", s.FallbackItem(), s.JavaFallbackItem())
	}
}

func TestEntities(t *testing.T) {
	tests := []struct {
		version int32
		id      int32
		want    string
		ok      bool
	}{
		{765, 124, "minecraft:player", true},
		{766, 128, "minecraft:player", true},
		{766, 58, "minecraft:item", true},
		{765, 35, "minecraft:xp_orb", true},
		{765, 8, "", false},
		{765, 9999, "", false},
	}
	for _, tt := range tests {
		s := resolve(t, tt.version)
		got, ok := s.BedrockEntity(tt.id)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BedrockEntity(%v) on %v = %q (%v), want %q (%v)", tt.id, tt.version, got, ok, tt.want, tt.ok)
		}
	}
	if id, ok := resolve(t, 766).JavaEntityType("minecraft:experience_orb"); !ok || id != 38 {
		t.Fatalf("experience orb = %v (%v), want 38", id, ok)
	}
}

func TestBiomesAndSounds(t *testing.T) {
	s := resolve(t, 765)
	if id := s.BedrockBiome("minecraft:desert"); id != 2 {
		t.Fatalf("desert = %v, want 2", id)
	}
	if id := s.BedrockBiome("custom:biome"); id != 1 {
		t.Fatalf("unknown biome = %v, want plains", id)
	}
	if name, ok := s.BedrockSound("entity.experience_orb.pickup"); !ok || name != "random.orb" {
		t.Fatalf("sound = %q (%v)", name, ok)
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sounds.json"), []byte(`{"sounds":{"minecraft:custom.sound":"custom.sound"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.Resolve(protocol.CurrentProtocol, 765, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if name, ok := s.BedrockSound("minecraft:custom.sound"); !ok || name != "custom.sound" {
		t.Fatalf("overridden sound = %q (%v)", name, ok)
	}
	if _, ok := s.BedrockSound("minecraft:entity.item.pickup"); ok {
		t.Fatal("built-in sounds must be replaced by the override")
	}
	if _, err := d.Resolve(protocol.CurrentProtocol, 47, Options{}); err == nil {
		t.Fatal("expected error for unknown java protocol")
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name      string
		id        int32
		subChunks int
		min       int
	}{
		{"minecraft:overworld", DimensionOverworld, 24, -4},
		{"minecraft:the_nether", DimensionNether, 8, 0},
		{"minecraft:the_end", DimensionEnd, 16, 0},
		{"custom:dimension", DimensionOverworld, 24, -4},
	}
	for _, tt := range tests {
		d := BedrockDimension(tt.name)
		if d.ID != tt.id || d.SubChunks() != tt.subChunks || d.MinSubChunk() != tt.min {
			t.Errorf("%v: %+v, %v sub chunks from %v", tt.name, d, d.SubChunks(), d.MinSubChunk())
		}
	}
}

func TestItemStackSizes(t *testing.T) {
	const items = `{"fallback":"minecraft:stone","items":[
		{"java":0,"bedrock":"minecraft:air"},
		{"java":1,"bedrock":"minecraft:stone"},
		{"java":2,"bedrock":"minecraft:ender_pearl","stack":16},
		{"java":3,"bedrock":"minecraft:diamond_sword","stack":1}
	]}`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "items.json"), []byte(items), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.Resolve(protocol.CurrentProtocol, 766, Options{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		java int32
		want int32
	}{
		{1, 64},
		{2, 16},
		{3, 1},
		{500, 64},
	}
	for _, tt := range tests {
		if n := s.MaxStack(tt.java); n != tt.want {
			t.Errorf("max stack of item %v = %v, want %v", tt.java, n, tt.want)
		}
	}
}

func TestItemStackSizeInvalid(t *testing.T) {
	dir := t.TempDir()
	items := `{"fallback":"minecraft:stone","items":[{"java":1,"bedrock":"minecraft:stone","stack":100}]}`
	if err := os.WriteFile(filepath.Join(dir, "items.json"), []byte(items), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Resolve(protocol.CurrentProtocol, 766, Options{}); err == nil {
		t.Fatal("expected an error for a stack size above 99")
	}
}

package session

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/cooldogedev/crossplay/mappings"
	"github.com/cooldogedev/crossplay/palette"
)

type chunkPos struct {
	x, z int32
}

// chunkCache holds the Java chunk columns loaded by the client, so that blocks can be looked up and
// changed after the column was sent.
type chunkCache struct {
	columns map[chunkPos][]palette.JavaSection
	minY    int32
}

func newChunkCache() *chunkCache {
	return &chunkCache{columns: make(map[chunkPos][]palette.JavaSection)}
}

func (c *chunkCache) store(pos chunkPos, col []palette.JavaSection, minY int32) {
	c.columns[pos] = col
	c.minY = minY
}

func (c *chunkCache) remove(pos chunkPos) {
	delete(c.columns, pos)
}

func (c *chunkCache) clear() {
	clear(c.columns)
}

func (c *chunkCache) len() int {
	return len(c.columns)
}

// locate returns the section holding a block and the index of the block in it.
func (c *chunkCache) locate(pos protocol.BlockPos) (*palette.JavaSection, int, bool) {
	col, ok := c.columns[chunkPos{x: pos.X() >> 4, z: pos.Z() >> 4}]
	if !ok {
		return nil, 0, false
	}
	i := int((pos.Y() - c.minY) >> 4)
	if i < 0 || i >= len(col) {
		return nil, 0, false
	}
	return &col[i], int(pos.Y()&15)<<8 | int(pos.Z()&15)<<4 | int(pos.X()&15), true
}

// block returns the Java block state at a position.
func (c *chunkCache) block(pos protocol.BlockPos, f palette.Format) (int32, bool) {
	sec, i, ok := c.locate(pos)
	if !ok {
		return 0, false
	}
	values, err := sec.Blocks.Values(f)
	if err != nil {
		return 0, false
	}
	return int32(values[i]), true
}

// setBlock changes the Java block state at a position. Blocks in columns not loaded are ignored.
func (c *chunkCache) setBlock(pos protocol.BlockPos, state int32, f palette.Format) {
	sec, i, ok := c.locate(pos)
	if !ok {
		return
	}
	values, err := sec.Blocks.Values(f)
	if err != nil || values[i] == uint32(state) {
		return
	}
	values[i] = uint32(state)
	if s, err := palette.Pack(f, values); err == nil {
		sec.Blocks = s
	}
}

// biomeBits returns the amount of bits needed to hold any id of a biome registry of n entries.
func biomeBits(n int) int {
	if n == 0 {
		// The vanilla registry has 64 biomes.
		return 6
	}
	return bits.Len(uint(max(n-1, 1)))
}

// columnEncoder writes Java chunk columns as the payload of Bedrock level chunks.
type columnEncoder struct {
	set       *mappings.Set
	world     *world
	blocks    palette.Format
	biomes    palette.Format
	air       palette.Section
	fallback  uint32
	javaMinY  int32
	dimension mappings.Dimension
}

func (s *Session) columnEncoder() columnEncoder {
	return columnEncoder{
		set:       s.set,
		world:     s.world,
		blocks:    palette.JavaBlocks(s.set.JavaBlockBits()),
		biomes:    palette.JavaBiomes(biomeBits(len(s.world.biomes))),
		air:       palette.Uniform(s.set.AirBlock()),
		fallback:  s.set.BedrockBiome(""),
		javaMinY:  s.world.dimensionType.minY,
		dimension: s.world.dimension,
	}
}

func (e columnEncoder) block(v uint32) (uint32, bool) {
	return e.set.BedrockBlock(int32(v))
}

func (e columnEncoder) biome(v uint32) (uint32, bool) {
	name := e.world.biome(v)
	if name == "" {
		return 0, false
	}
	return e.set.BedrockBiome(name), true
}

// encode returns the payload of a level chunk holding the column passed, and the amount of sub-chunks in
// it. Parts of the Bedrock dimension the column does not cover are filled with air. A nil column encodes an
// empty chunk.
func (e columnEncoder) encode(col []palette.JavaSection) ([]byte, uint32, error) {
	var (
		buf     bytes.Buffer
		count   = e.dimension.SubChunks()
		lowest  = e.dimension.MinSubChunk()
		offset  = int(e.javaMinY >> 4)
		biomes  = make([]palette.Section, count)
		highest = 0
	)
	for i := range count {
		y := lowest + i
		j := y - offset
		if j < 0 || j >= len(col) {
			biomes[i] = palette.Uniform(e.fallback)
			continue
		}
		sec := col[j]
		b, err := palette.Translate(sec.Biomes, e.biomes, palette.BedrockBiomes, e.biome, e.fallback)
		if err != nil {
			return nil, 0, fmt.Errorf("section %v: biomes: %w", j, err)
		}
		biomes[i] = b
		if sec.BlockCount > 0 {
			highest = i + 1
		}
	}
	for i := range highest {
		y := lowest + i
		layer := e.air
		if j := y - offset; j >= 0 && j < len(col) && col[j].BlockCount > 0 {
			l, err := palette.Translate(col[j].Blocks, e.blocks, palette.BedrockBlocks, e.block, e.set.FallbackBlock())
			if err != nil {
				return nil, 0, fmt.Errorf("section %v: blocks: %w", j, err)
			}
			layer = l
		}
		palette.WriteSubChunk(&buf, int8(y), layer)
	}
	palette.WriteBiomes(&buf, biomes)
	// Border blocks.
	buf.WriteByte(0)
	return buf.Bytes(), uint32(highest), nil
}

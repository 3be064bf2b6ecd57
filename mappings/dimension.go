package mappings

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Bedrock dimension ids.
const (
	DimensionOverworld int32 = iota
	DimensionNether
	DimensionEnd
)

// Dimension is a Bedrock dimension with the range of block heights clients of that dimension render.
type Dimension struct {
	ID    int32
	Range cube.Range
}

// SubChunks returns the amount of 16 block high sub chunks in the dimension.
func (d Dimension) SubChunks() int {
	return (d.Range.Height() + 1) >> 4
}

// MinSubChunk returns the index of the lowest sub chunk of the dimension.
func (d Dimension) MinSubChunk() int {
	return d.Range.Min() >> 4
}

var dimensions = map[string]Dimension{
	"minecraft:overworld":       {ID: DimensionOverworld, Range: cube.Range{-64, 319}},
	"minecraft:overworld_caves": {ID: DimensionOverworld, Range: cube.Range{-64, 319}},
	"minecraft:the_nether":      {ID: DimensionNether, Range: cube.Range{0, 127}},
	"minecraft:the_end":         {ID: DimensionEnd, Range: cube.Range{0, 255}},
}

// BedrockDimension returns the Bedrock dimension of a Java dimension type. Unknown dimension types, such as
// the ones added by datapacks, are shown as the overworld.
func BedrockDimension(javaDimensionType string) Dimension {
	if d, ok := dimensions[javaDimensionType]; ok {
		return d
	}
	return dimensions["minecraft:overworld"]
}

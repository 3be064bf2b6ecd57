// Package palette converts the paletted block and biome storages of chunk sections between the Java and
// Bedrock packing rules. All functions in the package are pure and safe for concurrent use.
package palette

import (
	"math/bits"
)

// Edition is the game edition whose packing rules a storage follows.
type Edition uint8

const (
	// Java storages pack indices into 64-bit words in y, z, x order.
	Java Edition = iota
	// Bedrock storages pack indices into 32-bit words in x, z, y order.
	Bedrock
)

// Kind is the kind of values held by a storage.
type Kind uint8

const (
	Blocks Kind = iota
	Biomes
)

// Format describes the packing of a storage.
type Format struct {
	Edition Edition
	Kind    Kind
	// GlobalBits is the amount of bits used by Java storages that hold values directly instead of through
	// a palette. It is ignored for Bedrock storages.
	GlobalBits int
}

// JavaBlocks returns the format of Java block storages with the global bits passed.
func JavaBlocks(globalBits int) Format {
	return Format{Edition: Java, Kind: Blocks, GlobalBits: globalBits}
}

// JavaBiomes returns the format of Java biome storages with the global bits passed.
func JavaBiomes(globalBits int) Format {
	return Format{Edition: Java, Kind: Biomes, GlobalBits: globalBits}
}

// BedrockBlocks is the format of Bedrock block storages.
var BedrockBlocks = Format{Edition: Bedrock, Kind: Blocks}

// BedrockBiomes is the format of Bedrock biome storages.
var BedrockBiomes = Format{Edition: Bedrock, Kind: Biomes}

// Size returns the amount of values in a storage of the format. Java biomes are stored per 4x4x4 cell,
// everything else per block.
func (f Format) Size() int {
	if f.Edition == Java && f.Kind == Biomes {
		return 64
	}
	return 4096
}

// wordBits returns the size of a storage word in bits.
func (f Format) wordBits() int {
	if f.Edition == Java {
		return 64
	}
	return 32
}

// Bits returns the amount of bits per index a storage with a palette of n values has, and whether the
// storage holds its values directly instead of through a palette.
func (f Format) Bits(n int) (b int, direct bool) {
	if n <= 1 {
		return 0, false
	}
	need := bits.Len(uint(n - 1))
	if f.Edition == Bedrock {
		switch {
		case need <= 6:
			return need, false
		case need <= 8:
			return 8, false
		default:
			return 16, false
		}
	}
	if f.Kind == Blocks {
		switch {
		case need <= 4:
			return 4, false
		case need <= 8:
			return need, false
		}
		return f.GlobalBits, true
	}
	if need <= 3 {
		return need, false
	}
	return f.GlobalBits, true
}

// validBits reports whether b is a valid amount of bits per index for the format.
func (f Format) validBits(b int, direct bool) bool {
	if f.Edition == Bedrock {
		switch b {
		case 0, 1, 2, 3, 4, 5, 6, 8, 16:
			return !direct
		}
		return false
	}
	if direct {
		return b == f.GlobalBits && b > 0
	}
	if f.Kind == Blocks {
		return b == 0 || (b >= 4 && b <= 8)
	}
	return b >= 0 && b <= 3
}

// wordCount returns the amount of words needed to store the values of the format with b bits per index.
func (f Format) wordCount(b int) int {
	if b == 0 {
		return 0
	}
	perWord := f.wordBits() / b
	return (f.Size() + perWord - 1) / perWord
}

// Position tables. swapXY converts between the y, z, x order of Java and the x, z, y order of Bedrock,
// and is its own inverse. The biome tables map every position of the target storage to the position in
// the source storage it takes its value from.
var (
	identity       [4096]uint16
	swapXY         [4096]uint16
	cellsToBlocks  [4096]uint16
	blocksToCells  [64]uint16
	identityBiomes [64]uint16
)

func init() {
	for i := range identity {
		identity[i] = uint16(i)
		x, z, y := i>>8, (i>>4)&15, i&15
		swapXY[i] = uint16(y<<8 | z<<4 | x)
		// Bedrock biome storages are per block, Java biome storages per 4x4x4 cell.
		cellsToBlocks[i] = uint16((y>>2)<<4 | (z>>2)<<2 | x>>2)
	}
	for i := range blocksToCells {
		identityBiomes[i] = uint16(i)
		y, z, x := i>>4, (i>>2)&3, i&3
		blocksToCells[i] = uint16((x*4)<<8 | (z*4)<<4 | y*4)
	}
}

// positions returns the table mapping every position of a storage in format to onto a position of a
// storage in format from.
func positions(from, to Format) []uint16 {
	switch {
	case from.Edition == to.Edition && from.Size() == 64:
		return identityBiomes[:]
	case from.Edition == to.Edition:
		return identity[:]
	case from.Kind == Biomes && from.Edition == Java:
		return cellsToBlocks[:]
	case from.Kind == Biomes:
		return blocksToCells[:]
	default:
		return swapXY[:]
	}
}

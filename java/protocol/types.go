package protocol

import (
	"fmt"
	"math"
)

// BlockPos is the position of a block in the world. It is encoded as a single packed 64-bit integer with
// 26 bits for x, 26 bits for z and 12 bits for y.
type BlockPos [3]int32

// X ...
func (p BlockPos) X() int32 { return p[0] }

// Y ...
func (p BlockPos) Y() int32 { return p[1] }

// Z ...
func (p BlockPos) Z() int32 { return p[2] }

// Pack packs the position into its wire representation.
func (p BlockPos) Pack() int64 {
	return (int64(p[0])&0x3FFFFFF)<<38 | (int64(p[2])&0x3FFFFFF)<<12 | int64(p[1])&0xFFF
}

// UnpackBlockPos unpacks a wire representation of a block position.
func UnpackBlockPos(v int64) BlockPos {
	return BlockPos{int32(v >> 38), int32(v << 52 >> 52), int32(v << 26 >> 38)}
}

// String ...
func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p[0], p[1], p[2])
}

// SectionPos is the position of a 16x16x16 chunk section, encoded with 22 bits for x and z and 20 bits
// for y.
type SectionPos [3]int32

// Pack packs the section position into its wire representation.
func (p SectionPos) Pack() int64 {
	return (int64(p[0])&0x3FFFFF)<<42 | (int64(p[2])&0x3FFFFF)<<20 | int64(p[1])&0xFFFFF
}

// UnpackSectionPos unpacks a wire representation of a section position.
func UnpackSectionPos(v int64) SectionPos {
	return SectionPos{int32(v >> 42), int32(v << 44 >> 44), int32(v << 22 >> 42)}
}

// BitSet is a variable length set of bits, sent as a VarInt length followed by that many longs.
type BitSet []int64

// Get reports whether bit i is set.
func (b BitSet) Get(i int) bool {
	if i/64 >= len(b) {
		return false
	}
	return b[i/64]&(1<<(i%64)) != 0
}

// Set returns the bit set with bit i set, growing it if needed.
func (b BitSet) Set(i int) BitSet {
	for i/64 >= len(b) {
		b = append(b, 0)
	}
	b[i/64] |= 1 << (i % 64)
	return b
}

// AngleToDegrees converts a protocol angle, which is a step of 1/256 of a full turn, to degrees.
func AngleToDegrees(a uint8) float32 {
	return float32(a) * 360 / 256
}

// DegreesToAngle converts degrees to a protocol angle.
func DegreesToAngle(d float32) uint8 {
	return uint8(int32(math.Floor(float64(d)*256/360)) & 0xFF)
}

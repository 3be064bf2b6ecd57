// Package protocol implements the primitive wire types of the Java Edition protocol: VarInts, strings,
// block positions, angles, bit sets, network NBT and item slots. Packets in the packet sub-package
// describe their layout once through the IO interface, which is implemented by both a Reader and a
// Writer, so that every packet has a single Marshal method for both directions.
package protocol

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// IO represents a packet IO direction. Implementations of this interface are Reader and Writer. Reader
// reads data from the input stream into the pointers passed, whereas Writer writes the values the
// pointers point to to the output stream.
type IO interface {
	Bool(x *bool)
	Uint8(x *uint8)
	Int8(x *int8)
	Int16(x *int16)
	Uint16(x *uint16)
	Int32(x *int32)
	Int64(x *int64)
	Float32(x *float32)
	Float64(x *float64)
	Varint32(x *int32)
	Varint64(x *int64)
	String(x *string)
	Identifier(x *string)
	UUID(x *uuid.UUID)
	Position(x *BlockPos)
	Angle(x *float32)
	Vec3(x *mgl64.Vec3)
	ByteSlice(x *[]byte)
	Bytes(x *[]byte)
	FixedBytes(x []byte)
	BitSet(x *BitSet)
	NBT(x *[]byte)
	OptionalNBT(x *[]byte)
	Slot(x *Slot)

	// Version returns the protocol version the IO is reading or writing for. Packets whose layout
	// differs between versions branch on it.
	Version() int32
	// InvalidValue reports an invalid value found in the packet.
	InvalidValue(value any, forField, reason string)
}

// Marshaler is implemented by every type that may be written to or read from an IO.
type Marshaler interface {
	Marshal(io IO)
}

// Slice reads or writes a VarInt length prefixed slice of Marshaler values.
func Slice[T any, S ~*[]T, M interface {
	*T
	Marshaler
}](io IO, x S) {
	count := int32(len(*x))
	io.Varint32(&count)
	if count < 0 || count > maxSliceLength {
		io.InvalidValue(count, "slice length", "out of bounds")
	}
	if _, ok := io.(*Reader); ok {
		*x = make([]T, count)
	}
	for i := int32(0); i < count; i++ {
		M(&(*x)[i]).Marshal(io)
	}
}

// FuncSlice reads or writes a VarInt length prefixed slice using the function passed for every element.
func FuncSlice[T any](io IO, x *[]T, f func(*T)) {
	count := int32(len(*x))
	io.Varint32(&count)
	if count < 0 || count > maxSliceLength {
		io.InvalidValue(count, "slice length", "out of bounds")
	}
	if _, ok := io.(*Reader); ok {
		*x = make([]T, count)
	}
	for i := int32(0); i < count; i++ {
		f(&(*x)[i])
	}
}

// Optional reads or writes a boolean followed by the value if the boolean is true.
func Optional[T any](io IO, set *bool, x *T, f func(*T)) {
	io.Bool(set)
	if *set {
		f(x)
	}
}

const maxSliceLength = 1 << 20

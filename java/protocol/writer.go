package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Tnze/go-mc/nbt"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Writer implements writing methods for data types from Java Edition packets.
type Writer struct {
	w       *bytes.Buffer
	version int32
	b       [binary.MaxVarintLen64]byte
}

// NewWriter creates a new Writer writing to the buffer passed for the protocol version passed.
func NewWriter(w *bytes.Buffer, version int32) *Writer {
	return &Writer{w: w, version: version}
}

// Version ...
func (w *Writer) Version() int32 {
	return w.version
}

// Bool ...
func (w *Writer) Bool(x *bool) {
	if *x {
		w.w.WriteByte(1)
		return
	}
	w.w.WriteByte(0)
}

// Uint8 ...
func (w *Writer) Uint8(x *uint8) {
	w.w.WriteByte(*x)
}

// Int8 ...
func (w *Writer) Int8(x *int8) {
	w.w.WriteByte(byte(*x))
}

// Int16 ...
func (w *Writer) Int16(x *int16) {
	w.w.Write(binary.BigEndian.AppendUint16(w.b[:0], uint16(*x)))
}

// Uint16 ...
func (w *Writer) Uint16(x *uint16) {
	w.w.Write(binary.BigEndian.AppendUint16(w.b[:0], *x))
}

// Int32 ...
func (w *Writer) Int32(x *int32) {
	w.w.Write(binary.BigEndian.AppendUint32(w.b[:0], uint32(*x)))
}

// Int64 ...
func (w *Writer) Int64(x *int64) {
	w.w.Write(binary.BigEndian.AppendUint64(w.b[:0], uint64(*x)))
}

// Float32 ...
func (w *Writer) Float32(x *float32) {
	w.w.Write(binary.BigEndian.AppendUint32(w.b[:0], math.Float32bits(*x)))
}

// Float64 ...
func (w *Writer) Float64(x *float64) {
	w.w.Write(binary.BigEndian.AppendUint64(w.b[:0], math.Float64bits(*x)))
}

// Varint32 ...
func (w *Writer) Varint32(x *int32) {
	w.w.Write(AppendVarInt(w.b[:0], *x))
}

// Varint64 ...
func (w *Writer) Varint64(x *int64) {
	u := uint64(*x)
	b := w.b[:0]
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	w.w.Write(append(b, byte(u)))
}

// String ...
func (w *Writer) String(x *string) {
	l := int32(len(*x))
	w.Varint32(&l)
	w.w.WriteString(*x)
}

// Identifier ...
func (w *Writer) Identifier(x *string) {
	w.String(x)
}

// UUID ...
func (w *Writer) UUID(x *uuid.UUID) {
	w.w.Write(x[:])
}

// Position ...
func (w *Writer) Position(x *BlockPos) {
	v := x.Pack()
	w.Int64(&v)
}

// Angle ...
func (w *Writer) Angle(x *float32) {
	w.w.WriteByte(DegreesToAngle(*x))
}

// Vec3 ...
func (w *Writer) Vec3(x *mgl64.Vec3) {
	w.Float64(&x[0])
	w.Float64(&x[1])
	w.Float64(&x[2])
}

// ByteSlice ...
func (w *Writer) ByteSlice(x *[]byte) {
	l := int32(len(*x))
	w.Varint32(&l)
	w.w.Write(*x)
}

// Bytes ...
func (w *Writer) Bytes(x *[]byte) {
	w.w.Write(*x)
}

// FixedBytes ...
func (w *Writer) FixedBytes(x []byte) {
	w.w.Write(x)
}

// BitSet ...
func (w *Writer) BitSet(x *BitSet) {
	l := int32(len(*x))
	w.Varint32(&l)
	for i := range *x {
		w.Int64(&(*x)[i])
	}
}

// NBT writes raw network NBT. An empty slice is written as an empty compound.
func (w *Writer) NBT(x *[]byte) {
	if len(*x) == 0 {
		w.w.Write([]byte{nbt.TagCompound, nbt.TagEnd})
		return
	}
	w.w.Write(*x)
}

// OptionalNBT writes raw network NBT, or TAG_End if x is empty.
func (w *Writer) OptionalNBT(x *[]byte) {
	if len(*x) == 0 {
		w.w.WriteByte(nbt.TagEnd)
		return
	}
	w.w.Write(*x)
}

// Slot ...
func (w *Writer) Slot(x *Slot) {
	x.Marshal(w)
}

// InvalidValue ...
func (w *Writer) InvalidValue(value any, forField, reason string) {
	panic(fmt.Errorf("invalid value '%v' for %v: %v", value, forField, reason))
}

// AppendVarInt appends the VarInt encoding of x to b.
func AppendVarInt(b []byte, x int32) []byte {
	u := uint32(x)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

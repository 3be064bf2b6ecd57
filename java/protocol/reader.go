package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/Tnze/go-mc/nbt"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Reader implements reading operations for reading types from Java Edition packets. Each Reader method
// panics with an error wrapped in a ReadError if the data is invalid; callers are expected to recover
// using Recover.
type Reader struct {
	r       *bytes.Reader
	version int32
}

// NewReader creates a new Reader reading from the byte slice passed for the protocol version passed.
func NewReader(b []byte, version int32) *Reader {
	return &Reader{r: bytes.NewReader(b), version: version}
}

// Version ...
func (r *Reader) Version() int32 {
	return r.version
}

// Len returns the amount of unread bytes.
func (r *Reader) Len() int {
	return r.r.Len()
}

// ReadError is the value a Reader panics with.
type ReadError struct {
	Err error
}

// Error ...
func (e ReadError) Error() string { return e.Err.Error() }

// Unwrap ...
func (e ReadError) Unwrap() error { return e.Err }

// Recover recovers a panic raised by a Reader and stores it in err. Panics of other kinds are wrapped
// too, so that a malformed packet can never crash the caller.
func Recover(err *error) {
	if r := recover(); r != nil {
		switch v := r.(type) {
		case ReadError:
			*err = v.Err
		case error:
			*err = v
		default:
			*err = fmt.Errorf("%v", v)
		}
	}
}

func (r *Reader) panic(err error) {
	panic(ReadError{Err: err})
}

func (r *Reader) panicf(format string, a ...any) {
	r.panic(fmt.Errorf(format, a...))
}

func (r *Reader) read(b []byte) {
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.panic(err)
	}
}

// Bool ...
func (r *Reader) Bool(x *bool) {
	b, err := r.r.ReadByte()
	if err != nil {
		r.panic(err)
	}
	*x = b != 0
}

// Uint8 ...
func (r *Reader) Uint8(x *uint8) {
	b, err := r.r.ReadByte()
	if err != nil {
		r.panic(err)
	}
	*x = b
}

// Int8 ...
func (r *Reader) Int8(x *int8) {
	var b uint8
	r.Uint8(&b)
	*x = int8(b)
}

// Int16 ...
func (r *Reader) Int16(x *int16) {
	var b [2]byte
	r.read(b[:])
	*x = int16(binary.BigEndian.Uint16(b[:]))
}

// Uint16 ...
func (r *Reader) Uint16(x *uint16) {
	var b [2]byte
	r.read(b[:])
	*x = binary.BigEndian.Uint16(b[:])
}

// Int32 ...
func (r *Reader) Int32(x *int32) {
	var b [4]byte
	r.read(b[:])
	*x = int32(binary.BigEndian.Uint32(b[:]))
}

// Int64 ...
func (r *Reader) Int64(x *int64) {
	var b [8]byte
	r.read(b[:])
	*x = int64(binary.BigEndian.Uint64(b[:]))
}

// Float32 ...
func (r *Reader) Float32(x *float32) {
	var b [4]byte
	r.read(b[:])
	*x = math.Float32frombits(binary.BigEndian.Uint32(b[:]))
}

// Float64 ...
func (r *Reader) Float64(x *float64) {
	var b [8]byte
	r.read(b[:])
	*x = math.Float64frombits(binary.BigEndian.Uint64(b[:]))
}

// Varint32 ...
func (r *Reader) Varint32(x *int32) {
	var v uint32
	for i := uint(0); i < 35; i += 7 {
		b, err := r.r.ReadByte()
		if err != nil {
			r.panic(err)
		}
		v |= uint32(b&0x7f) << i
		if b&0x80 == 0 {
			*x = int32(v)
			return
		}
	}
	r.panic(errVarIntOverflow)
}

// Varint64 ...
func (r *Reader) Varint64(x *int64) {
	var v uint64
	for i := uint(0); i < 70; i += 7 {
		b, err := r.r.ReadByte()
		if err != nil {
			r.panic(err)
		}
		v |= uint64(b&0x7f) << i
		if b&0x80 == 0 {
			*x = int64(v)
			return
		}
	}
	r.panic(errVarLongOverflow)
}

// String ...
func (r *Reader) String(x *string) {
	var length int32
	r.Varint32(&length)
	if length < 0 || length > maxStringLength*4 || int(length) > r.r.Len() {
		r.panicf("string length %v out of bounds", length)
	}
	b := make([]byte, length)
	r.read(b)
	if !utf8.Valid(b) {
		r.panic(errors.New("string is not valid UTF-8"))
	}
	*x = string(b)
}

// Identifier reads a namespaced identifier, adding the minecraft namespace if it is missing.
func (r *Reader) Identifier(x *string) {
	r.String(x)
	*x = QualifyIdentifier(*x)
}

// UUID ...
func (r *Reader) UUID(x *uuid.UUID) {
	r.read(x[:])
}

// Position ...
func (r *Reader) Position(x *BlockPos) {
	var v int64
	r.Int64(&v)
	*x = UnpackBlockPos(v)
}

// Angle ...
func (r *Reader) Angle(x *float32) {
	var b uint8
	r.Uint8(&b)
	*x = AngleToDegrees(b)
}

// Vec3 ...
func (r *Reader) Vec3(x *mgl64.Vec3) {
	r.Float64(&x[0])
	r.Float64(&x[1])
	r.Float64(&x[2])
}

// ByteSlice reads a VarInt length prefixed byte slice.
func (r *Reader) ByteSlice(x *[]byte) {
	var length int32
	r.Varint32(&length)
	if length < 0 || int(length) > r.r.Len() {
		r.panicf("byte slice length %v out of bounds", length)
	}
	*x = make([]byte, length)
	r.read(*x)
}

// Bytes reads all remaining bytes.
func (r *Reader) Bytes(x *[]byte) {
	*x = make([]byte, r.r.Len())
	r.read(*x)
}

// FixedBytes reads exactly len(x) bytes.
func (r *Reader) FixedBytes(x []byte) {
	r.read(x)
}

// BitSet ...
func (r *Reader) BitSet(x *BitSet) {
	var length int32
	r.Varint32(&length)
	if length < 0 || int(length)*8 > r.r.Len() {
		r.panicf("bit set length %v out of bounds", length)
	}
	*x = make(BitSet, length)
	for i := range *x {
		r.Int64(&(*x)[i])
	}
}

// NBT reads a network NBT tag (a tag without a root name) and stores its raw bytes, tag type included.
func (r *Reader) NBT(x *[]byte) {
	m, err := readNetworkNBT(r.r)
	if err != nil {
		r.panic(fmt.Errorf("read nbt: %w", err))
	}
	*x = append([]byte{m.Type}, m.Data...)
}

// OptionalNBT reads a network NBT tag that may be TAG_End, in which case x is set to nil.
func (r *Reader) OptionalNBT(x *[]byte) {
	b, err := r.r.ReadByte()
	if err != nil {
		r.panic(err)
	}
	if b == nbt.TagEnd {
		*x = nil
		return
	}
	_ = r.r.UnreadByte()
	r.NBT(x)
}

// Slot ...
func (r *Reader) Slot(x *Slot) {
	x.Marshal(r)
}

// InvalidValue ...
func (r *Reader) InvalidValue(value any, forField, reason string) {
	r.panicf("invalid value '%v' for %v: %v", value, forField, reason)
}

var (
	errVarIntOverflow  = errors.New("varint overflows integer")
	errVarLongOverflow = errors.New("varlong overflows integer")
)

const maxStringLength = 32767

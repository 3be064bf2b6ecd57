package protocol

import (
	"bytes"
	"io"
	"strings"

	"github.com/Tnze/go-mc/nbt"
)

// SkipNetworkNBT reads past one network NBT tag: a tag type followed by an unnamed payload. Since 1.20.2
// the root of every NBT value sent over the network has no name. A lone TAG_End is accepted.
func SkipNetworkNBT(r interface {
	io.Reader
	io.ByteReader
}) error {
	_, err := readNetworkNBT(r)
	return err
}

// readNetworkNBT reads one network NBT tag from r and returns it as a RawMessage. A lone TAG_End yields a
// RawMessage of type TAG_End with no data.
func readNetworkNBT(r nbt.DecoderReader) (nbt.RawMessage, error) {
	var m nbt.RawMessage
	t, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	if t == nbt.TagEnd {
		return m, nil
	}
	return m, m.UnmarshalNBT(t, r)
}

// DecodeNetworkNBT decodes a network NBT value into Go values: compounds become map[string]any, lists
// become []any, strings become string and numbers keep their NBT width.
func DecodeNetworkNBT(b []byte) (any, error) {
	if len(b) == 0 || b[0] == nbt.TagEnd {
		return nil, nil
	}
	dec := nbt.NewDecoder(bytes.NewReader(b))
	dec.NetworkFormat(true)

	var v any
	if _, err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeNetworkNBT encodes a Go value produced by DecodeNetworkNBT (or built from the same types) as
// network NBT.
func EncodeNetworkNBT(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := nbt.NewEncoder(buf)
	enc.NetworkFormat(true)
	if err := enc.Encode(v, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// QualifyIdentifier adds the minecraft namespace to an identifier that has none.
func QualifyIdentifier(s string) string {
	if s == "" || strings.ContainsRune(s, ':') {
		return s
	}
	return "minecraft:" + s
}

package mappings

import (
	"bytes"
	"encoding/binary"
	"hash/fnv"
	"math"
	"slices"
)

// UnknownRuntimeID is the network id of minecraft:unknown when block network ids are hashed.
const UnknownRuntimeID = 0xfffffffe

// BlockState is a Bedrock block state.
type BlockState struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"states,omitempty"`
}

// RuntimeID returns the network id of the block state for clients that are told to use hashed block
// network ids: the FNV-1a hash of the state encoded as little endian NBT with its properties sorted by name.
func (s BlockState) RuntimeID() uint32 {
	if s.Name == "minecraft:unknown" {
		return UnknownRuntimeID
	}
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	buf.WriteByte(tagCompound)
	writeNBTString(buf, "")

	buf.WriteByte(tagString)
	writeNBTString(buf, "name")
	writeNBTString(buf, s.Name)

	buf.WriteByte(tagCompound)
	writeNBTString(buf, "states")
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		switch v := s.Properties[k].(type) {
		case bool:
			buf.WriteByte(tagByte)
			writeNBTString(buf, k)
			if v {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		case uint8:
			buf.WriteByte(tagByte)
			writeNBTString(buf, k)
			buf.WriteByte(v)
		case int32:
			writeNBTInt(buf, k, v)
		case int:
			writeNBTInt(buf, k, int32(v))
		case float64:
			// Numbers decoded from JSON.
			if v == math.Trunc(v) {
				writeNBTInt(buf, k, int32(v))
			}
		case string:
			buf.WriteByte(tagString)
			writeNBTString(buf, k)
			writeNBTString(buf, v)
		}
	}
	buf.WriteByte(tagEnd)
	buf.WriteByte(tagEnd)

	h := fnv.New32a()
	_, _ = h.Write(buf.Bytes())
	return h.Sum32()
}

const (
	tagEnd      = 0
	tagByte     = 1
	tagInt      = 3
	tagString   = 8
	tagCompound = 10
)

func writeNBTString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.LittleEndian, int16(len(s)))
	buf.WriteString(s)
}

func writeNBTInt(buf *bytes.Buffer, name string, v int32) {
	buf.WriteByte(tagInt)
	writeNBTString(buf, name)
	_ = binary.Write(buf, binary.LittleEndian, v)
}

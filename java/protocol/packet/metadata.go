package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/google/uuid"
)

// MetadataKind is the stable kind of an entity metadata value. The wire id of a kind depends on the
// protocol version.
type MetadataKind uint8

const (
	MetadataByte MetadataKind = iota
	MetadataVarInt
	MetadataVarLong
	MetadataFloat
	MetadataString
	MetadataText
	MetadataOptionalText
	MetadataSlot
	MetadataBool
	MetadataRotations
	MetadataPosition
	MetadataOptionalPosition
	MetadataDirection
	MetadataOptionalUUID
	MetadataBlockState
	MetadataOptionalBlockState
	MetadataNBT
	MetadataParticle
	MetadataParticles
	MetadataVillagerData
	MetadataOptionalVarInt
	MetadataPose
	MetadataCatVariant
	MetadataWolfVariant
	MetadataFrogVariant
	MetadataOptionalGlobalPosition
	MetadataPaintingVariant
	MetadataSnifferState
	MetadataArmadilloState
	MetadataVector3
	MetadataQuaternion
)

// metadataKinds1_20_3 and metadataKinds1_20_5 are indexed by the wire id of a metadata value type.
var (
	metadataKinds1_20_3 = []MetadataKind{
		MetadataByte, MetadataVarInt, MetadataVarLong, MetadataFloat, MetadataString, MetadataText,
		MetadataOptionalText, MetadataSlot, MetadataBool, MetadataRotations, MetadataPosition,
		MetadataOptionalPosition, MetadataDirection, MetadataOptionalUUID, MetadataBlockState,
		MetadataOptionalBlockState, MetadataNBT, MetadataParticle, MetadataVillagerData,
		MetadataOptionalVarInt, MetadataPose, MetadataCatVariant, MetadataFrogVariant,
		MetadataOptionalGlobalPosition, MetadataPaintingVariant, MetadataSnifferState, MetadataVector3,
		MetadataQuaternion,
	}
	metadataKinds1_20_5 = []MetadataKind{
		MetadataByte, MetadataVarInt, MetadataVarLong, MetadataFloat, MetadataString, MetadataText,
		MetadataOptionalText, MetadataSlot, MetadataBool, MetadataRotations, MetadataPosition,
		MetadataOptionalPosition, MetadataDirection, MetadataOptionalUUID, MetadataBlockState,
		MetadataOptionalBlockState, MetadataNBT, MetadataParticle, MetadataParticles, MetadataVillagerData,
		MetadataOptionalVarInt, MetadataPose, MetadataCatVariant, MetadataWolfVariant, MetadataFrogVariant,
		MetadataOptionalGlobalPosition, MetadataPaintingVariant, MetadataSnifferState,
		MetadataArmadilloState, MetadataVector3, MetadataQuaternion,
	}
)

func metadataKinds(version int32) []MetadataKind {
	if version >= protocol.Version1_20_5 {
		return metadataKinds1_20_5
	}
	return metadataKinds1_20_3
}

// Indices of metadata shared by every entity, and the item of an item entity.
const (
	MetadataIndexFlags      uint8 = 0
	MetadataIndexCustomName uint8 = 2
	MetadataIndexNameShown  uint8 = 3
	MetadataIndexItem       uint8 = 8
)

// Bits of the shared flags byte at MetadataIndexFlags.
const (
	EntityFlagOnFire    = 0x01
	EntityFlagCrouching = 0x02
	EntityFlagSprinting = 0x08
	EntityFlagSwimming  = 0x10
	EntityFlagInvisible = 0x20
	EntityFlagGlowing   = 0x40
	EntityFlagGliding   = 0x80
)

// GlobalPosition is a block position in a dimension.
type GlobalPosition struct {
	Dimension string
	Position  protocol.BlockPos
}

// EntityMetadata is a single entry of SetEntityMetadata. Value holds a Go value matching Kind: int8 for
// bytes, int32 for every VarInt kind, []byte for text components and NBT (nil if an optional one is
// absent), protocol.Slot, pointers for the other optional kinds and fixed arrays for vectors. Particles
// are not decoded and have a nil Value.
type EntityMetadata struct {
	Index uint8
	Kind  MetadataKind
	Value any
}

// SetEntityMetadata updates the metadata of an entity. Decoding stops at the first particle value, whose
// layout depends on the particle type; Rest then holds every byte after its type id, the terminator
// included.
type SetEntityMetadata struct {
	EntityID int32
	Metadata []EntityMetadata
	Rest     []byte
}

func (*SetEntityMetadata) ID() uint32 { return IDSetEntityMetadata }

func (pk *SetEntityMetadata) Marshal(io protocol.IO) {
	const terminator = 0xFF
	io.Varint32(&pk.EntityID)
	kinds := metadataKinds(io.Version())
	if _, ok := io.(*protocol.Reader); ok {
		pk.Metadata, pk.Rest = pk.Metadata[:0], nil
		for {
			var m EntityMetadata
			io.Uint8(&m.Index)
			if m.Index == terminator {
				return
			}
			var t int32
			io.Varint32(&t)
			if t < 0 || int(t) >= len(kinds) {
				io.InvalidValue(t, "metadata type", "unknown type")
			}
			m.Kind = kinds[t]
			pk.Metadata = append(pk.Metadata, m)
			if !pk.Metadata[len(pk.Metadata)-1].marshalValue(io) {
				io.Bytes(&pk.Rest)
				return
			}
			if len(pk.Metadata) > 256 {
				io.InvalidValue(len(pk.Metadata), "metadata count", "too many entries")
			}
		}
	}
	for i := range pk.Metadata {
		m := &pk.Metadata[i]
		t := int32(-1)
		for id, k := range kinds {
			if k == m.Kind {
				t = int32(id)
				break
			}
		}
		if t == -1 {
			io.InvalidValue(m.Kind, "metadata kind", "not present in this protocol version")
		}
		io.Uint8(&m.Index)
		io.Varint32(&t)
		if !m.marshalValue(io) {
			io.Bytes(&pk.Rest)
			return
		}
	}
	terminate := uint8(terminator)
	io.Uint8(&terminate)
}

// marshalValue encodes or decodes the value of the entry. It returns false for kinds that are not
// decoded.
func (m *EntityMetadata) marshalValue(io protocol.IO) bool {
	switch m.Kind {
	case MetadataByte:
		v, _ := m.Value.(int8)
		io.Int8(&v)
		m.Value = v
	case MetadataVarInt, MetadataDirection, MetadataBlockState, MetadataOptionalBlockState, MetadataOptionalVarInt,
		MetadataPose, MetadataCatVariant, MetadataWolfVariant, MetadataFrogVariant, MetadataPaintingVariant,
		MetadataSnifferState, MetadataArmadilloState:
		v, _ := m.Value.(int32)
		io.Varint32(&v)
		m.Value = v
	case MetadataVarLong:
		v, _ := m.Value.(int64)
		io.Varint64(&v)
		m.Value = v
	case MetadataFloat:
		v, _ := m.Value.(float32)
		io.Float32(&v)
		m.Value = v
	case MetadataString:
		v, _ := m.Value.(string)
		io.String(&v)
		m.Value = v
	case MetadataText, MetadataNBT:
		v, _ := m.Value.([]byte)
		io.NBT(&v)
		m.Value = v
	case MetadataOptionalText:
		v, _ := m.Value.([]byte)
		present := len(v) > 0
		io.Bool(&present)
		if present {
			io.NBT(&v)
		} else {
			v = nil
		}
		m.Value = v
	case MetadataSlot:
		v, _ := m.Value.(protocol.Slot)
		io.Slot(&v)
		m.Value = v
	case MetadataBool:
		v, _ := m.Value.(bool)
		io.Bool(&v)
		m.Value = v
	case MetadataRotations, MetadataVector3:
		v, _ := m.Value.([3]float32)
		for i := range v {
			io.Float32(&v[i])
		}
		m.Value = v
	case MetadataQuaternion:
		v, _ := m.Value.([4]float32)
		for i := range v {
			io.Float32(&v[i])
		}
		m.Value = v
	case MetadataPosition:
		v, _ := m.Value.(protocol.BlockPos)
		io.Position(&v)
		m.Value = v
	case MetadataOptionalPosition:
		v, _ := m.Value.(*protocol.BlockPos)
		present := v != nil
		io.Bool(&present)
		if present {
			if v == nil {
				v = new(protocol.BlockPos)
			}
			io.Position(v)
		}
		m.Value = v
	case MetadataOptionalUUID:
		v, _ := m.Value.(*uuid.UUID)
		present := v != nil
		io.Bool(&present)
		if present {
			if v == nil {
				v = new(uuid.UUID)
			}
			io.UUID(v)
		}
		m.Value = v
	case MetadataVillagerData:
		v, _ := m.Value.([3]int32)
		for i := range v {
			io.Varint32(&v[i])
		}
		m.Value = v
	case MetadataOptionalGlobalPosition:
		v, _ := m.Value.(*GlobalPosition)
		present := v != nil
		io.Bool(&present)
		if present {
			if v == nil {
				v = new(GlobalPosition)
			}
			io.Identifier(&v.Dimension)
			io.Position(&v.Position)
		}
		m.Value = v
	default:
		return false
	}
	return true
}

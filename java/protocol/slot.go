package protocol

import "bytes"

// Slot is an item stack as found in inventories and entity equipment. Its layout changed in 1.20.5: older
// versions carry an optional NBT tag, newer versions carry a patch of item components.
type Slot struct {
	// ItemID is the item registry id of the item. It is only meaningful if Count is non-zero.
	ItemID int32
	// Count is the amount of items in the stack. A Count of zero is an empty slot.
	Count int32
	// NBT holds the raw network NBT of the stack on versions before 1.20.5.
	NBT []byte
	// Components holds the raw component patch of the stack on 1.20.5 and later, including the counts of
	// added and removed components.
	Components []byte
}

// Empty reports whether the slot holds no item.
func (s Slot) Empty() bool {
	return s.Count <= 0
}

// Marshal ...
func (s *Slot) Marshal(io IO) {
	if io.Version() >= Version1_20_5 {
		s.marshalComponents(io)
		return
	}
	present := s.Count > 0
	io.Bool(&present)
	if !present {
		*s = Slot{}
		return
	}
	count := int8(s.Count)
	io.Varint32(&s.ItemID)
	io.Int8(&count)
	s.Count = int32(count)
	io.OptionalNBT(&s.NBT)
}

func (s *Slot) marshalComponents(io IO) {
	io.Varint32(&s.Count)
	if s.Count <= 0 {
		*s = Slot{}
		return
	}
	io.Varint32(&s.ItemID)
	r, ok := io.(*Reader)
	if !ok {
		if len(s.Components) == 0 {
			// Zero components added and zero removed.
			io.FixedBytes([]byte{0, 0})
			return
		}
		io.FixedBytes(s.Components)
		return
	}
	start := r.r.Size() - int64(r.r.Len())
	var added, removed int32
	r.Varint32(&added)
	r.Varint32(&removed)
	for i := int32(0); i < added; i++ {
		var t int32
		r.Varint32(&t)
		skipComponent(r, t)
	}
	for i := int32(0); i < removed; i++ {
		var t int32
		r.Varint32(&t)
	}
	end := r.r.Size() - int64(r.r.Len())
	s.Components = make([]byte, end-start)
	_, _ = r.r.ReadAt(s.Components, start)
}

// skipComponent reads past the data of a single item component. Only components with a simple layout are
// understood; stacks carrying any other component fail to decode.
func skipComponent(r *Reader, t int32) {
	var (
		v   int32
		b   bool
		nbt []byte
	)
	switch t {
	case 0, 5, 6, 19, 27:
		r.NBT(&nbt)
	case 1, 2, 3, 8, 13, 16, 26, 28:
		r.Varint32(&v)
	case 4, 18:
		r.Bool(&b)
	case 7:
		var n int32
		r.Varint32(&n)
		for i := int32(0); i < n; i++ {
			r.NBT(&nbt)
		}
	case 9, 23:
		var n int32
		r.Varint32(&n)
		for i := int32(0); i < n; i++ {
			r.Varint32(&v)
			r.Varint32(&v)
		}
		r.Bool(&b)
	case 14, 15, 17, 21:
	case 24:
		r.Int32(&v)
		r.Bool(&b)
	case 25:
		r.Int32(&v)
	default:
		r.InvalidValue(t, "item component", "unsupported component type")
	}
}

// Equal reports whether two slots hold the same stack.
func (s Slot) Equal(o Slot) bool {
	if s.Empty() || o.Empty() {
		return s.Empty() == o.Empty()
	}
	return s.ItemID == o.ItemID && s.Count == o.Count && bytes.Equal(s.NBT, o.NBT) && bytes.Equal(s.Components, o.Components)
}

// SameItem reports whether two non-empty slots hold the same kind of item and may therefore stack.
func (s Slot) SameItem(o Slot) bool {
	return !s.Empty() && !o.Empty() && s.ItemID == o.ItemID && bytes.Equal(s.NBT, o.NBT) && bytes.Equal(s.Components, o.Components)
}

// WithCount returns a copy of the slot with the count passed, or an empty slot if count is zero or less.
func (s Slot) WithCount(count int32) Slot {
	if count <= 0 {
		return Slot{}
	}
	s.Count = count
	return s
}

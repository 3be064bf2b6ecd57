package palette

import (
	"sync"
)

// Mapper resolves a value of the source storage to the equivalent value of the target storage.
type Mapper func(v uint32) (uint32, bool)

var (
	scratchPool = sync.Pool{New: func() any { return new([4096]uint32) }}
	lookupPool  = sync.Pool{New: func() any { return make(map[uint32]uint32, 64) }}
)

func getScratch() *[4096]uint32 {
	return scratchPool.Get().(*[4096]uint32)
}

func putScratch(s *[4096]uint32) {
	scratchPool.Put(s)
}

// Translate converts a section of format from into a section of format to. Every value is resolved through
// m; values m has no mapping for are replaced with fallback. The palette of the section returned holds the
// resolved values in the order of the source palette, without duplicates, so that sections whose values
// map one to one translate back into the exact same storage.
func Translate(src Section, from, to Format, m Mapper, fallback uint32) (Section, error) {
	if err := src.validate(from); err != nil {
		return Section{}, err
	}
	values := getScratch()
	defer putScratch(values)
	unpackWords(from, src.Bits, src.Words, values[:from.Size()])

	remap := getScratch()
	defer putScratch(remap)
	lookup := lookupPool.Get().(map[uint32]uint32)
	defer func() {
		clear(lookup)
		lookupPool.Put(lookup)
	}()

	resolve := func(v uint32) uint32 {
		t, ok := m(v)
		if !ok {
			return fallback
		}
		return t
	}
	var palette []uint32
	insert := func(t uint32) uint32 {
		idx, ok := lookup[t]
		if !ok {
			idx = uint32(len(palette))
			lookup[t] = idx
			palette = append(palette, t)
		}
		return idx
	}

	pos := positions(from, to)
	if src.Direct {
		// Values are global ids: resolve them in the order they appear in the target storage and replace
		// them with their target palette index in place.
		seen := make(map[uint32]uint32)
		for _, s := range pos {
			v := values[s]
			if _, ok := seen[v]; !ok {
				seen[v] = insert(resolve(v))
			}
		}
		for i, v := range values[:from.Size()] {
			values[i] = seen[v]
		}
		for i := range palette {
			remap[i] = uint32(i)
		}
	} else {
		palette = make([]uint32, 0, len(src.Palette))
		for i, v := range src.Palette {
			remap[i] = insert(resolve(v))
		}
	}

	b, direct := to.Bits(len(palette))
	dst := Section{Palette: palette, Bits: b, Direct: direct, Words: make([]uint64, to.wordCount(b))}
	if b == 0 {
		return dst, nil
	}
	perWord := to.wordBits() / b
	for t, s := range pos {
		v := remap[values[s]]
		if direct {
			v = palette[v]
		}
		dst.Words[t/perWord] |= uint64(v) << ((t % perWord) * b)
	}
	if direct {
		dst.Palette = nil
	}
	return dst, nil
}

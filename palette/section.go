package palette

import (
	"fmt"
)

// Section is a paletted storage of block states or biomes. Every index packed into Words is an offset into
// Palette, unless Direct is set, in which case the packed values are the values themselves.
type Section struct {
	Palette []uint32
	Direct  bool
	Bits    int
	// Words holds the packed indices, one storage word per element. Bedrock words only use the low 32 bits.
	Words []uint64
}

// Uniform returns a section holding the single value passed in every position.
func Uniform(v uint32) Section {
	return Section{Palette: []uint32{v}}
}

// Pack packs values, which are laid out in the position order of the format, into a section. The palette
// holds the values in the order they are first seen.
func Pack(f Format, values []uint32) (Section, error) {
	if len(values) != f.Size() {
		return Section{}, fmt.Errorf("pack %v values into storage of %v", len(values), f.Size())
	}
	indices := getScratch()
	defer putScratch(indices)

	var palette []uint32
	lookup := make(map[uint32]uint32)
	for i, v := range values {
		idx, ok := lookup[v]
		if !ok {
			idx = uint32(len(palette))
			lookup[v] = idx
			palette = append(palette, v)
		}
		indices[i] = idx
	}
	b, direct := f.Bits(len(palette))
	s := Section{Palette: palette, Bits: b, Direct: direct}
	if direct {
		s.Palette = nil
		copy(indices[:len(values)], values)
	}
	s.Words = packWords(f, b, indices[:len(values)])
	return s, nil
}

// Values unpacks the section into the value of every position, in the position order of the format.
func (s Section) Values(f Format) ([]uint32, error) {
	if err := s.validate(f); err != nil {
		return nil, err
	}
	out := make([]uint32, f.Size())
	unpackWords(f, s.Bits, s.Words, out)
	if s.Direct {
		return out, nil
	}
	for i, idx := range out {
		out[i] = s.Palette[idx]
	}
	return out, nil
}

// validate checks that the section is well formed for the format: its bits match the packing rules and
// every packed index is an offset into its palette.
func (s Section) validate(f Format) error {
	if !f.validBits(s.Bits, s.Direct) {
		return fmt.Errorf("invalid storage: %v bits per index (direct: %v)", s.Bits, s.Direct)
	}
	if !s.Direct && len(s.Palette) == 0 {
		return fmt.Errorf("invalid storage: empty palette")
	}
	if n := f.wordCount(s.Bits); len(s.Words) < n {
		return fmt.Errorf("invalid storage: %v words for %v bits per index, need %v", len(s.Words), s.Bits, n)
	}
	if s.Direct || s.Bits == 0 {
		return nil
	}
	if len(s.Palette) >= 1<<s.Bits {
		// Every index that fits in the bits is a valid offset.
		return nil
	}
	indices := getScratch()
	defer putScratch(indices)
	unpackWords(f, s.Bits, s.Words, indices[:f.Size()])
	for i, idx := range indices[:f.Size()] {
		if int(idx) >= len(s.Palette) {
			return fmt.Errorf("invalid storage: index %v at %v out of palette of %v", idx, i, len(s.Palette))
		}
	}
	return nil
}

// packWords packs the indices passed into storage words of the format. No index spans two words.
func packWords(f Format, b int, indices []uint32) []uint64 {
	words := make([]uint64, f.wordCount(b))
	if b == 0 {
		return words
	}
	perWord := f.wordBits() / b
	for i, idx := range indices {
		words[i/perWord] |= uint64(idx) << ((i % perWord) * b)
	}
	return words
}

// unpackWords unpacks len(out) indices of b bits from the storage words passed.
func unpackWords(f Format, b int, words []uint64, out []uint32) {
	if b == 0 {
		clear(out)
		return
	}
	perWord := f.wordBits() / b
	mask := uint64(1)<<b - 1
	for i := range out {
		out[i] = uint32(words[i/perWord] >> ((i % perWord) * b) & mask)
	}
}

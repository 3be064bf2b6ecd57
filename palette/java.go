package palette

import (
	"bytes"
	"fmt"

	"github.com/cooldogedev/crossplay/java/protocol"
)

// JavaSection is a single section of a Java chunk column.
type JavaSection struct {
	// BlockCount is the amount of non-air blocks in the section.
	BlockCount int16
	Blocks     Section
	Biomes     Section
}

// ReadJavaColumn decodes the section data of a Java chunk column. Exactly sections sections are read.
func ReadJavaColumn(data []byte, version int32, sections int, blocks, biomes Format) (col []JavaSection, err error) {
	defer protocol.Recover(&err)

	r := protocol.NewReader(data, version)
	col = make([]JavaSection, sections)
	for i := range col {
		r.Int16(&col[i].BlockCount)
		col[i].Blocks = readJavaStorage(r, blocks)
		col[i].Biomes = readJavaStorage(r, biomes)
		if err := col[i].Blocks.validate(blocks); err != nil {
			return nil, fmt.Errorf("section %v: blocks: %w", i, err)
		}
		if err := col[i].Biomes.validate(biomes); err != nil {
			return nil, fmt.Errorf("section %v: biomes: %w", i, err)
		}
	}
	return col, nil
}

func readJavaStorage(r *protocol.Reader, f Format) Section {
	var b uint8
	r.Uint8(&b)

	s := Section{Bits: int(b)}
	switch {
	case b == 0:
		var v int32
		r.Varint32(&v)
		s.Palette = []uint32{uint32(v)}
	case (f.Kind == Blocks && b > 8) || (f.Kind == Biomes && b > 3):
		s.Direct = true
	default:
		var n int32
		r.Varint32(&n)
		if n <= 0 || n > 1<<b {
			r.InvalidValue(n, "palette length", fmt.Sprintf("must be in range 1-%v", 1<<b))
		}
		s.Palette = make([]uint32, n)
		for i := range s.Palette {
			var v int32
			r.Varint32(&v)
			s.Palette[i] = uint32(v)
		}
	}
	var n int32
	r.Varint32(&n)
	if n < 0 || int(n) > f.Size() {
		r.InvalidValue(n, "data array length", "too long")
	}
	s.Words = make([]uint64, n)
	for i := range s.Words {
		var v int64
		r.Int64(&v)
		s.Words[i] = uint64(v)
	}
	return s
}

// WriteJavaColumn encodes the sections passed into the section data of a Java chunk column.
func WriteJavaColumn(col []JavaSection, version int32) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(col)*64))
	w := protocol.NewWriter(buf, version)
	for _, sec := range col {
		w.Int16(&sec.BlockCount)
		writeJavaStorage(w, sec.Blocks)
		writeJavaStorage(w, sec.Biomes)
	}
	return buf.Bytes()
}

func writeJavaStorage(w *protocol.Writer, s Section) {
	b := uint8(s.Bits)
	w.Uint8(&b)
	switch {
	case b == 0:
		v := int32(s.Palette[0])
		w.Varint32(&v)
	case !s.Direct:
		n := int32(len(s.Palette))
		w.Varint32(&n)
		for _, v := range s.Palette {
			v := int32(v)
			w.Varint32(&v)
		}
	}
	n := int32(len(s.Words))
	w.Varint32(&n)
	for _, word := range s.Words {
		v := int64(word)
		w.Int64(&v)
	}
}

// CountBlocks returns the amount of values in a Java block section that are not air.
func CountBlocks(s Section, f Format, air uint32) int16 {
	values, err := s.Values(f)
	if err != nil {
		return 0
	}
	var n int16
	for _, v := range values {
		if v != air {
			n++
		}
	}
	return n
}

package palette

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	// SubChunkVersion is the version of the sub-chunk encoding with a y index, used for all sub-chunks sent.
	SubChunkVersion = 9
	// sameAsPrevious is the storage header of a biome storage that repeats the storage before it.
	sameAsPrevious = 0xff
)

// WriteSubChunk writes a sub-chunk of network encoding with the block layers passed to buf.
func WriteSubChunk(buf *bytes.Buffer, index int8, layers ...Section) {
	w := protocol.NewWriter(buf, 0)
	version, count, y := uint8(SubChunkVersion), uint8(len(layers)), uint8(index)
	w.Uint8(&version)
	w.Uint8(&count)
	w.Uint8(&y)
	for _, layer := range layers {
		writeBedrockStorage(w, layer)
	}
}

// ReadSubChunk reads a sub-chunk of network encoding from buf.
func ReadSubChunk(buf *bytes.Buffer) (index int8, layers []Section, err error) {
	defer recoverRead(&err)

	r := protocol.NewReader(buf, 0, false)
	var version, count, y uint8
	r.Uint8(&version)
	if version != SubChunkVersion {
		return 0, nil, fmt.Errorf("unsupported sub-chunk version %v", version)
	}
	r.Uint8(&count)
	r.Uint8(&y)
	layers = make([]Section, count)
	for i := range layers {
		var header uint8
		r.Uint8(&header)
		layers[i] = readBedrockStorage(r, header)
		if err := layers[i].validate(BedrockBlocks); err != nil {
			return 0, nil, fmt.Errorf("layer %v: %w", i, err)
		}
	}
	return int8(y), layers, nil
}

// WriteBiomes writes the biome storages of a chunk column to buf, one per sub-chunk. A storage equal to
// the one before it is written as a single header byte.
func WriteBiomes(buf *bytes.Buffer, storages []Section) {
	w := protocol.NewWriter(buf, 0)
	for i, s := range storages {
		if i > 0 && equal(s, storages[i-1]) {
			b := uint8(sameAsPrevious)
			w.Uint8(&b)
			continue
		}
		writeBedrockStorage(w, s)
	}
}

// ReadBiomes reads n biome storages of a chunk column from buf.
func ReadBiomes(buf *bytes.Buffer, n int) (storages []Section, err error) {
	defer recoverRead(&err)

	r := protocol.NewReader(buf, 0, false)
	storages = make([]Section, n)
	for i := range storages {
		var header uint8
		r.Uint8(&header)
		if header == sameAsPrevious {
			if i == 0 {
				return nil, fmt.Errorf("first biome storage repeats a previous storage")
			}
			storages[i] = storages[i-1]
			continue
		}
		storages[i] = readBedrockStorage(r, header)
		if err := storages[i].validate(BedrockBiomes); err != nil {
			return nil, fmt.Errorf("biome storage %v: %w", i, err)
		}
	}
	return storages, nil
}

func writeBedrockStorage(w *protocol.Writer, s Section) {
	header := uint8(s.Bits<<1) | 1
	w.Uint8(&header)
	for _, word := range s.Words {
		v := uint32(word)
		w.Uint32(&v)
	}
	if s.Bits != 0 {
		n := int32(len(s.Palette))
		w.Varint32(&n)
	}
	for _, v := range s.Palette {
		v := int32(v)
		w.Varint32(&v)
	}
}

func readBedrockStorage(r *protocol.Reader, header uint8) Section {
	if header&1 == 0 {
		panic(fmt.Errorf("storage is not of network encoding"))
	}
	s := Section{Bits: int(header >> 1)}
	if !BedrockBlocks.validBits(s.Bits, false) {
		panic(fmt.Errorf("invalid storage: %v bits per index", s.Bits))
	}
	s.Words = make([]uint64, BedrockBlocks.wordCount(s.Bits))
	for i := range s.Words {
		var v uint32
		r.Uint32(&v)
		s.Words[i] = uint64(v)
	}
	n := int32(1)
	if s.Bits != 0 {
		r.Varint32(&n)
		if n <= 0 || n > 4096 {
			panic(fmt.Errorf("invalid palette length %v", n))
		}
	}
	s.Palette = make([]uint32, n)
	for i := range s.Palette {
		var v int32
		r.Varint32(&v)
		s.Palette[i] = uint32(v)
	}
	return s
}

func equal(a, b Section) bool {
	return a.Bits == b.Bits && a.Direct == b.Direct && slices.Equal(a.Palette, b.Palette) && slices.Equal(a.Words, b.Words)
}

func recoverRead(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%v", r)
	}
}

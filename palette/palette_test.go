package palette

import (
	"bytes"
	"reflect"
	"testing"
)

var javaBlocks = JavaBlocks(15)

func identityMapper(v uint32) (uint32, bool) { return v, true }

// bedrockIndex returns the Bedrock position of the Java block position passed.
func bedrockIndex(j int) int {
	y, z, x := j>>8, (j>>4)&15, j&15
	return x<<8 | z<<4 | y
}

func TestBits(t *testing.T) {
	tests := []struct {
		f      Format
		n      int
		bits   int
		direct bool
	}{
		{BedrockBlocks, 1, 0, false},
		{BedrockBlocks, 2, 1, false},
		{BedrockBlocks, 18, 5, false},
		{BedrockBlocks, 33, 6, false},
		{BedrockBlocks, 65, 8, false},
		{BedrockBlocks, 257, 16, false},
		{javaBlocks, 1, 0, false},
		{javaBlocks, 2, 4, false},
		{javaBlocks, 16, 4, false},
		{javaBlocks, 17, 5, false},
		{javaBlocks, 256, 8, false},
		{javaBlocks, 257, 15, true},
		{JavaBiomes(6), 1, 0, false},
		{JavaBiomes(6), 3, 2, false},
		{JavaBiomes(6), 8, 3, false},
		{JavaBiomes(6), 9, 6, true},
	}
	for _, tt := range tests {
		b, direct := tt.f.Bits(tt.n)
		if b != tt.bits || direct != tt.direct {
			t.Errorf("%+v.Bits(%v) = %v, %v, want %v, %v", tt.f, tt.n, b, direct, tt.bits, tt.direct)
		}
	}
}

func TestTranslateFallback(t *testing.T) {
	values := make([]uint32, 4096)
	for i := range values {
		values[i] = 100 + uint32(i%18)
	}
	src, err := Pack(BedrockBlocks, values)
	if err != nil {
		t.Fatal(err)
	}
	if len(src.Palette) != 18 || src.Bits != 5 {
		t.Fatalf("source palette of %v with %v bits, want 18 with 5", len(src.Palette), src.Bits)
	}

	// 115 and 116 share a state, 117 is unknown and falls back onto 0, which is already in the palette.
	m := func(v uint32) (uint32, bool) {
		switch {
		case v < 115:
			return v - 100, true
		case v < 117:
			return 15, true
		}
		return 0, false
	}
	want := func(v uint32) uint32 {
		r, ok := m(v)
		if !ok {
			return 0
		}
		return r
	}

	dst, err := Translate(src, BedrockBlocks, javaBlocks, m, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(dst.Palette) != 16 || dst.Bits != 4 || dst.Direct {
		t.Fatalf("target palette of %v with %v bits (direct: %v), want 16 with 4", len(dst.Palette), dst.Bits, dst.Direct)
	}
	out, err := dst.Values(javaBlocks)
	if err != nil {
		t.Fatal(err)
	}
	for j, v := range out {
		if w := want(values[bedrockIndex(j)]); v != w {
			t.Fatalf("value at %v = %v, want %v", j, v, w)
		}
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 17, 200, 256, 300} {
		values := make([]uint32, 4096)
		for i := range values {
			values[i] = uint32((i * 7) % n)
		}
		src, err := Pack(javaBlocks, values)
		if err != nil {
			t.Fatal(err)
		}
		mid, err := Translate(src, javaBlocks, BedrockBlocks, identityMapper, 0)
		if err != nil {
			t.Fatalf("%v values: %v", n, err)
		}
		back, err := Translate(mid, BedrockBlocks, javaBlocks, identityMapper, 0)
		if err != nil {
			t.Fatalf("%v values: %v", n, err)
		}
		if n <= 256 && !reflect.DeepEqual(src, back) {
			t.Fatalf("%v values: storage changed after round trip", n)
		}
		got, err := back.Values(javaBlocks)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, values) {
			t.Fatalf("%v values: values changed after round trip", n)
		}
	}
}

func TestTranslateBiomes(t *testing.T) {
	javaBiomes := JavaBiomes(6)
	cells := make([]uint32, 64)
	for i := range cells {
		cells[i] = uint32(i % 9)
	}
	src, err := Pack(javaBiomes, cells)
	if err != nil {
		t.Fatal(err)
	}
	if !src.Direct {
		t.Fatal("biome storage of 9 values should be direct")
	}
	dst, err := Translate(src, javaBiomes, BedrockBiomes, func(v uint32) (uint32, bool) { return v + 10, true }, 0)
	if err != nil {
		t.Fatal(err)
	}
	blocks, err := dst.Values(BedrockBiomes)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range blocks {
		x, z, y := i>>8, (i>>4)&15, i&15
		if w := cells[(y>>2)<<4|(z>>2)<<2|x>>2] + 10; v != w {
			t.Fatalf("biome at %v = %v, want %v", i, v, w)
		}
	}

	back, err := Translate(dst, BedrockBiomes, javaBiomes, func(v uint32) (uint32, bool) { return v - 10, true }, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := back.Values(javaBiomes)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cells) {
		t.Fatalf("cells = %v, want %v", got, cells)
	}
}

func TestTranslateInvalid(t *testing.T) {
	bad := Section{Palette: []uint32{1, 2, 3}, Bits: 5, Words: make([]uint64, BedrockBlocks.wordCount(5))}
	bad.Words[0] = 7
	if _, err := Translate(bad, BedrockBlocks, javaBlocks, identityMapper, 0); err == nil {
		t.Fatal("expected error for index out of palette")
	}
	if _, err := Translate(Section{Bits: 7, Palette: []uint32{1}}, BedrockBlocks, javaBlocks, identityMapper, 0); err == nil {
		t.Fatal("expected error for invalid bits")
	}
	if _, err := Translate(Section{Bits: 4, Palette: []uint32{1, 2}}, javaBlocks, BedrockBlocks, identityMapper, 0); err == nil {
		t.Fatal("expected error for missing words")
	}
}

func TestSubChunk(t *testing.T) {
	values := make([]uint32, 4096)
	for i := range values {
		values[i] = uint32(i % 3)
	}
	layer, err := Pack(BedrockBlocks, values)
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	WriteSubChunk(buf, -4, layer, Uniform(0xfffffffe))

	index, layers, err := ReadSubChunk(buf)
	if err != nil {
		t.Fatal(err)
	}
	if index != -4 || len(layers) != 2 {
		t.Fatalf("index %v with %v layers", index, len(layers))
	}
	if !reflect.DeepEqual(layers[0], layer) {
		t.Fatal("first layer changed")
	}
	if layers[1].Bits != 0 || !reflect.DeepEqual(layers[1].Palette, []uint32{0xfffffffe}) {
		t.Fatalf("uniform layer = %+v", layers[1])
	}
	if buf.Len() != 0 {
		t.Fatalf("%v bytes left", buf.Len())
	}
}

func TestBiomesSameAsPrevious(t *testing.T) {
	storages := []Section{Uniform(1), Uniform(1), Uniform(2)}
	buf := new(bytes.Buffer)
	WriteBiomes(buf, storages)
	// header + value, repeat header, header + value
	if want := []byte{1, 2, 0xff, 1, 4}; !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("biomes encoded as %x, want %x", buf.Bytes(), want)
	}
	got, err := ReadBiomes(buf, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[1].Palette[0] != 1 || got[2].Palette[0] != 2 {
		t.Fatalf("biomes = %+v", got)
	}
	if _, err := ReadBiomes(bytes.NewBuffer([]byte{0xff}), 1); err == nil {
		t.Fatal("expected error for leading repeat header")
	}
}

func TestJavaColumn(t *testing.T) {
	values := make([]uint32, 4096)
	for i := range values {
		values[i] = uint32(i % 20)
	}
	blocks, err := Pack(javaBlocks, values)
	if err != nil {
		t.Fatal(err)
	}
	col := []JavaSection{
		{BlockCount: CountBlocks(blocks, javaBlocks, 0), Blocks: blocks, Biomes: Uniform(3)},
		{Blocks: Uniform(0), Biomes: Uniform(3)},
	}
	if col[0].BlockCount != 4096-205 {
		t.Fatalf("block count = %v", col[0].BlockCount)
	}
	data := WriteJavaColumn(col, 766)
	got, err := ReadJavaColumn(data, 766, 2, javaBlocks, JavaBiomes(6))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got[0].Blocks, blocks) || got[0].BlockCount != col[0].BlockCount {
		t.Fatal("block storage changed")
	}
	if got[1].Blocks.Palette[0] != 0 || got[1].Biomes.Palette[0] != 3 {
		t.Fatalf("uniform section = %+v", got[1])
	}
	if _, err := ReadJavaColumn(data[:len(data)-3], 766, 2, javaBlocks, JavaBiomes(6)); err == nil {
		t.Fatal("expected error for truncated column")
	}
}

package internal

import (
	"bytes"
	"testing"
)

func TestFrame(t *testing.T) {
	tests := []struct {
		name       string
		payloads   [][]byte
		compressed bool
	}{
		{"small", [][]byte{{1, 2, 3}, {4}}, false},
		{"large", [][]byte{bytes.Repeat([]byte{7}, 300)}, true},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				body    bytes.Buffer
				scratch [5]byte
			)
			for _, p := range tt.payloads {
				_ = writeVaruint32(&body, uint32(len(p)), scratch[:])
				body.Write(p)
			}
			frame, err := encodeFrame(&bytes.Buffer{}, uint32(len(tt.payloads)), body.Bytes())
			if err != nil {
				t.Fatal(err)
			}
			if got := frame[0]&flagPacketCompressed != 0; got != tt.compressed {
				t.Fatalf("compressed = %v, want %v", got, tt.compressed)
			}
			payloads, err := decodeFrame(frame)
			if err != nil {
				t.Fatal(err)
			}
			if len(payloads) != len(tt.payloads) {
				t.Fatalf("got %v payloads, want %v", len(payloads), len(tt.payloads))
			}
			for i := range payloads {
				if !bytes.Equal(payloads[i], tt.payloads[i]) {
					t.Fatalf("payload %v = %v, want %v", i, payloads[i], tt.payloads[i])
				}
			}
		})
	}
}

func TestDecodeFrameInvalid(t *testing.T) {
	tests := map[string][]byte{
		"empty":         nil,
		"no count":      {0},
		"length beyond": {0, 1, 10, 1, 2},
		"bad snappy":    {flagPacketCompressed, 0xff, 0xff, 0xff},
	}
	for name, frame := range tests {
		if _, err := decodeFrame(frame); err == nil {
			t.Errorf("%v: expected an error", name)
		}
	}
}

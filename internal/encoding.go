package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	flagPacketCompressed = 0x01

	compressionThreshold = 256
)

// writeVaruint32 writes a uint32 to the destination buffer passed with a size of 1-5 bytes. It uses byte
// slice b in order to prevent allocations.
func writeVaruint32(dst io.Writer, x uint32, b []byte) error {
	i := 0
	for x >= 0x80 {
		b[i] = byte(x) | 0x80
		i++
		x >>= 7
	}
	b[i] = byte(x)
	_, err := dst.Write(b[:i+1])
	return err
}

// encodeFrame prefixes the body holding count length prefixed packets with the count and a flag byte,
// compressing it if it exceeds the compression threshold.
func encodeFrame(batch *bytes.Buffer, count uint32, body []byte) ([]byte, error) {
	var scratch [5]byte
	if err := writeVaruint32(batch, count, scratch[:]); err != nil {
		return nil, err
	}
	_, _ = batch.Write(body)

	payload := batch.Bytes()
	if len(payload) > compressionThreshold {
		compressed := snappy.Encode(nil, payload)
		out := make([]byte, 1+len(compressed))
		out[0] = flagPacketCompressed
		copy(out[1:], compressed)
		return out, nil
	}
	out := make([]byte, 1+len(payload))
	copy(out[1:], payload)
	return out, nil
}

// decodeFrame splits a frame into the payloads of the packets in it.
func decodeFrame(frame []byte) ([][]byte, error) {
	if len(frame) == 0 {
		return nil, errors.New("empty frame")
	}
	data := frame[1:]
	if frame[0]&flagPacketCompressed != 0 {
		var err error
		if data, err = snappy.Decode(nil, data); err != nil {
			return nil, fmt.Errorf("decompress frame: %w", err)
		}
	}
	buf := bytes.NewBuffer(data)
	var count uint32
	if err := protocol.Varuint32(buf, &count); err != nil {
		return nil, fmt.Errorf("read packet count: %w", err)
	}
	payloads := make([][]byte, 0, min(count, 1024))
	for range count {
		var n uint32
		if err := protocol.Varuint32(buf, &n); err != nil {
			return nil, fmt.Errorf("read packet length: %w", err)
		}
		if int(n) > buf.Len() {
			return nil, fmt.Errorf("packet length %v exceeds frame", n)
		}
		payloads = append(payloads, buf.Next(int(n)))
	}
	return payloads, nil
}

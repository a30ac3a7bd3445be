package refencoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// Picture types carried in the packet header.
const (
	PictureI byte = 'I'
	PictureP byte = 'P'
	PictureB byte = 'B'
)

// HeaderSize is the length of the fixed packet header:
// magic (2) | picture type (1) | display index (4) | raw length (4) | body length (4).
const HeaderSize = 15

var magic = [2]byte{'R', 'F'}

// Header describes one coded picture.
type Header struct {
	Type    byte
	Index   uint32 // display order
	RawLen  uint32 // decompressed body length
	BodyLen uint32 // compressed body length
}

func compress(raw []byte, quality int) ([]byte, error) {
	var b bytes.Buffer
	w := brotli.NewWriterLevel(&b, quality)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decompress(body []byte, rawLen int) ([]byte, error) {
	raw := make([]byte, rawLen)
	if _, err := io.ReadFull(brotli.NewReader(bytes.NewReader(body)), raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func marshalPacket(h Header, body []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(body))
	copy(out, magic[:])
	out[2] = h.Type
	binary.BigEndian.PutUint32(out[3:], h.Index)
	binary.BigEndian.PutUint32(out[7:], h.RawLen)
	binary.BigEndian.PutUint32(out[11:], uint32(len(body)))
	return append(out, body...)
}

// ParseHeader reads the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize || data[0] != magic[0] || data[1] != magic[1] {
		return Header{}, fmt.Errorf("%w: bad header", ErrCorruptPacket)
	}
	h := Header{
		Type:    data[2],
		Index:   binary.BigEndian.Uint32(data[3:]),
		RawLen:  binary.BigEndian.Uint32(data[7:]),
		BodyLen: binary.BigEndian.Uint32(data[11:]),
	}
	switch h.Type {
	case PictureI, PictureP, PictureB:
	default:
		return Header{}, fmt.Errorf("%w: picture type %q", ErrCorruptPacket, h.Type)
	}
	return h, nil
}

// SplitStream cuts a concatenation of packets, as written by an elementary
// stream sink, back into packets.
func SplitStream(data []byte) ([][]byte, error) {
	var out [][]byte
	for len(data) > 0 {
		h, err := ParseHeader(data)
		if err != nil {
			return out, err
		}
		n := HeaderSize + int(h.BodyLen)
		if n > len(data) {
			return out, fmt.Errorf("%w: truncated packet %d", ErrCorruptPacket, len(out))
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	return out, nil
}

func xorInto(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

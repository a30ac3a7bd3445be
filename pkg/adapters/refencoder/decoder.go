package refencoder

import "fmt"

// Decoder reconstructs pictures from packets in coding order. It is used to
// verify streams; the result is the visible bytes of every plane.
type Decoder struct {
	anchor []byte
}

// Decode decodes one packet and returns its header and picture bytes.
func (d *Decoder) Decode(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if HeaderSize+int(h.BodyLen) > len(data) {
		return Header{}, nil, fmt.Errorf("%w: body length %d exceeds packet", ErrCorruptPacket, h.BodyLen)
	}
	raw, err := decompress(data[HeaderSize:HeaderSize+int(h.BodyLen)], int(h.RawLen))
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: picture %d: %v", ErrCorruptPacket, h.Index, err)
	}

	if h.Type != PictureI {
		if len(d.anchor) != len(raw) {
			return Header{}, nil, fmt.Errorf("%w: %c picture %d without matching reference", ErrCorruptPacket, h.Type, h.Index)
		}
		xorInto(raw, raw, d.anchor)
	}
	if h.Type != PictureB {
		d.anchor = raw
	}
	return h, raw, nil
}

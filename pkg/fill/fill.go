// Package fill synthesizes frame content for the encoding pipeline.
package fill

import (
	"encoding/binary"

	"github.com/user/planarenc/pkg/media"
)

// Func writes the picture for tick into buf in place. It must not change the
// buffer's dimensions or format.
type Func func(buf *media.ImageBuffer, tick int)

// Gradient draws a moving diagonal gradient: luma x+y+3t, Cb 128+y+2t and
// Cr 64+x+5t, all modulo the sample range. Rows are addressed through each
// plane's stride, so padding bytes are never touched.
func Gradient(buf *media.ImageBuffer, tick int) {
	desc, ok := media.LookupFormat(buf.Format)
	if !ok {
		return
	}
	wide := desc.BytesPerSample() == 2

	for y := 0; y < buf.PlaneHeight(0); y++ {
		row := buf.Row(0, y)
		for x := 0; x < buf.Width; x++ {
			put(row, x, wide, x+y+tick*3)
		}
	}

	if desc.PlaneCount() < 2 {
		return
	}

	cw := media.CeilShift(buf.Width, desc.Planes[1].HShift)
	ch := buf.PlaneHeight(1)
	for y := 0; y < ch; y++ {
		if desc.Interleaved {
			row := buf.Row(1, y)
			cbAt, crAt := 0, 1
			if buf.Format == media.FormatNV21 {
				cbAt, crAt = 1, 0
			}
			for x := 0; x < cw; x++ {
				row[2*x+cbAt] = byte(128 + y + tick*2)
				row[2*x+crAt] = byte(64 + x + tick*5)
			}
			continue
		}
		cb, cr := buf.Row(1, y), buf.Row(2, y)
		for x := 0; x < cw; x++ {
			put(cb, x, wide, 128+y+tick*2)
			put(cr, x, wide, 64+x+tick*5)
		}
	}

	if desc.Alpha {
		a := desc.PlaneCount() - 1
		for y := 0; y < buf.PlaneHeight(a); y++ {
			row := buf.Row(a, y)
			for x := range row {
				row[x] = 0xFF
			}
		}
	}
}

// put stores an 8-bit sample value, widened to 10 bits little-endian for
// two-byte formats.
func put(row []byte, x int, wide bool, v int) {
	if wide {
		binary.LittleEndian.PutUint16(row[2*x:], uint16(v&0xFF)<<2)
		return
	}
	row[x] = byte(v)
}

// Solid fills every visible sample with a constant luma and neutral chroma.
func Solid(luma byte) Func {
	return func(buf *media.ImageBuffer, tick int) {
		desc, ok := media.LookupFormat(buf.Format)
		if !ok {
			return
		}
		wide := desc.BytesPerSample() == 2
		for i := 0; i < buf.NumPlanes; i++ {
			v := 128
			if i == 0 {
				v = int(luma)
			}
			if desc.Alpha && i == buf.NumPlanes-1 {
				v = 0xFF
			}
			for y := 0; y < buf.PlaneHeight(i); y++ {
				row := buf.Row(i, y)
				n := len(row)
				if wide {
					n /= 2
				}
				for x := 0; x < n; x++ {
					put(row, x, wide, v)
				}
			}
		}
	}
}

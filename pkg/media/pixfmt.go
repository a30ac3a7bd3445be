// Package media defines the data model shared by the encoding pipeline:
// pixel formats, planar image buffers, frames, packets and time bases.
package media

import "sort"

// PixelFormat is a pixel format tag (e.g. "yuv420p", "nv21").
type PixelFormat string

// Supported pixel formats.
const (
	FormatYUV420P     PixelFormat = "yuv420p"
	FormatYUVJ420P    PixelFormat = "yuvj420p"
	FormatNV12        PixelFormat = "nv12"
	FormatNV21        PixelFormat = "nv21"
	FormatYUV422P     PixelFormat = "yuv422p"
	FormatYUV444P     PixelFormat = "yuv444p"
	FormatGray        PixelFormat = "gray"
	FormatYUVA420P    PixelFormat = "yuva420p"
	FormatYUV420P10LE PixelFormat = "yuv420p10le"
)

// MaxPlanes is the maximum number of planes an image buffer can hold.
const MaxPlanes = 4

// PlaneDesc describes one plane of a pixel format.
type PlaneDesc struct {
	HShift int // log2 horizontal subsampling
	VShift int // log2 vertical subsampling
	Step   int // bytes per (subsampled) pixel in this plane
}

// FormatDesc describes the memory layout of a pixel format.
type FormatDesc struct {
	Name   PixelFormat
	Planes []PlaneDesc

	// Interleaved is true when a single plane carries more than one
	// component (the CbCr / CrCb plane of NV12 and NV21).
	Interleaved bool

	// Alpha is true when the last plane holds an alpha channel.
	Alpha bool
}

// PlaneCount returns the number of planes.
func (d FormatDesc) PlaneCount() int {
	return len(d.Planes)
}

// MaxHShift returns the largest horizontal subsampling shift of any plane.
func (d FormatDesc) MaxHShift() int {
	m := 0
	for _, p := range d.Planes {
		if p.HShift > m {
			m = p.HShift
		}
	}
	return m
}

// MaxVShift returns the largest vertical subsampling shift of any plane.
func (d FormatDesc) MaxVShift() int {
	m := 0
	for _, p := range d.Planes {
		if p.VShift > m {
			m = p.VShift
		}
	}
	return m
}

// BytesPerSample returns the size of one component sample in bytes.
func (d FormatDesc) BytesPerSample() int {
	if len(d.Planes) == 0 {
		return 0
	}
	return d.Planes[0].Step
}

var formats = map[PixelFormat]FormatDesc{
	FormatYUV420P: {
		Name:   FormatYUV420P,
		Planes: []PlaneDesc{{0, 0, 1}, {1, 1, 1}, {1, 1, 1}},
	},
	FormatYUVJ420P: {
		Name:   FormatYUVJ420P,
		Planes: []PlaneDesc{{0, 0, 1}, {1, 1, 1}, {1, 1, 1}},
	},
	FormatNV12: {
		Name:        FormatNV12,
		Planes:      []PlaneDesc{{0, 0, 1}, {1, 1, 2}},
		Interleaved: true,
	},
	FormatNV21: {
		Name:        FormatNV21,
		Planes:      []PlaneDesc{{0, 0, 1}, {1, 1, 2}},
		Interleaved: true,
	},
	FormatYUV422P: {
		Name:   FormatYUV422P,
		Planes: []PlaneDesc{{0, 0, 1}, {1, 0, 1}, {1, 0, 1}},
	},
	FormatYUV444P: {
		Name:   FormatYUV444P,
		Planes: []PlaneDesc{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
	},
	FormatGray: {
		Name:   FormatGray,
		Planes: []PlaneDesc{{0, 0, 1}},
	},
	FormatYUVA420P: {
		Name:   FormatYUVA420P,
		Planes: []PlaneDesc{{0, 0, 1}, {1, 1, 1}, {1, 1, 1}, {0, 0, 1}},
		Alpha:  true,
	},
	FormatYUV420P10LE: {
		Name:   FormatYUV420P10LE,
		Planes: []PlaneDesc{{0, 0, 2}, {1, 1, 2}, {1, 1, 2}},
	},
}

// LookupFormat returns the descriptor for a pixel format tag.
func LookupFormat(f PixelFormat) (FormatDesc, bool) {
	d, ok := formats[f]
	return d, ok
}

// Formats returns all known pixel format tags in lexical order.
func Formats() []PixelFormat {
	out := make([]PixelFormat, 0, len(formats))
	for f := range formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

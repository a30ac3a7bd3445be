package media

import "sync/atomic"

// Allocation is one contiguous backing region. Several planes of the same
// image may alias into a single Allocation; several ImageBuffer handles may
// share it, tracked by an explicit reference count.
type Allocation struct {
	data    []byte
	refs    atomic.Int32
	recycle func([]byte)
}

// NewAllocation wraps data with a reference count of one. recycle, when
// non-nil, receives the storage once the last reference is released.
func NewAllocation(data []byte, recycle func([]byte)) *Allocation {
	a := &Allocation{data: data, recycle: recycle}
	a.refs.Store(1)
	return a
}

// Bytes returns the backing storage.
func (a *Allocation) Bytes() []byte {
	return a.data
}

// Refs returns the current reference count.
func (a *Allocation) Refs() int {
	return int(a.refs.Load())
}

func (a *Allocation) retain() {
	a.refs.Add(1)
}

func (a *Allocation) release() {
	n := a.refs.Add(-1)
	if n == 0 {
		data := a.data
		a.data = nil
		if a.recycle != nil && data != nil {
			a.recycle(data)
		}
	}
	if n < 0 {
		panic("media: allocation released more times than retained")
	}
}

// Plane is one image plane: a byte window inside an Allocation.
type Plane struct {
	Data   []byte // Stride*rows bytes, starting at the plane origin
	Stride int    // bytes per row, including alignment padding
	Rows   int    // rows backed by Data (the padded height for this plane)
	Alloc  int    // index into ImageBuffer.Allocations
	Offset int    // byte offset of the plane inside its allocation
}

// ImageBuffer is a planar image with per-plane strides.
type ImageBuffer struct {
	Width  int
	Height int
	Format PixelFormat
	Align  int // row alignment the strides were computed for

	Planes      [MaxPlanes]Plane
	NumPlanes   int
	Allocations []*Allocation

	released bool
}

// Ref returns a new handle sharing the same storage. Every backing
// allocation's reference count is incremented; the caller must Release the
// returned handle when done with it. Ref panics on a released handle, whose
// storage may already be back in the pool.
func (b *ImageBuffer) Ref() *ImageBuffer {
	if b.released {
		panic("media: Ref of released buffer")
	}
	for _, a := range b.Allocations {
		a.retain()
	}
	clone := &ImageBuffer{
		Width:       b.Width,
		Height:      b.Height,
		Format:      b.Format,
		Align:       b.Align,
		Planes:      b.Planes,
		NumPlanes:   b.NumPlanes,
		Allocations: append([]*Allocation(nil), b.Allocations...),
	}
	return clone
}

// Release drops this handle's reference. Releasing twice is a no-op.
func (b *ImageBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	for _, a := range b.Allocations {
		a.release()
	}
	for i := range b.Planes {
		b.Planes[i].Data = nil
	}
}

// Released reports whether Release has been called on this handle.
func (b *ImageBuffer) Released() bool {
	return b.released
}

// Shared reports whether any backing allocation has another owner.
func (b *ImageBuffer) Shared() bool {
	for _, a := range b.Allocations {
		if a.Refs() > 1 {
			return true
		}
	}
	return false
}

// Plane returns plane i.
func (b *ImageBuffer) Plane(i int) Plane {
	return b.Planes[i]
}

// Strides returns the strides of the planes that exist.
func (b *ImageBuffer) Strides() []int {
	out := make([]int, b.NumPlanes)
	for i := 0; i < b.NumPlanes; i++ {
		out[i] = b.Planes[i].Stride
	}
	return out
}

// PlaneWidthBytes returns the number of meaningful bytes per row in plane i
// (the natural row size, without alignment padding).
func (b *ImageBuffer) PlaneWidthBytes(i int) int {
	d, ok := LookupFormat(b.Format)
	if !ok || i >= len(d.Planes) {
		return 0
	}
	p := d.Planes[i]
	return CeilShift(b.Width, p.HShift) * p.Step
}

// PlaneHeight returns the number of visible rows in plane i.
func (b *ImageBuffer) PlaneHeight(i int) int {
	d, ok := LookupFormat(b.Format)
	if !ok || i >= len(d.Planes) {
		return 0
	}
	return CeilShift(b.Height, d.Planes[i].VShift)
}

// Row returns the visible bytes of row y in plane i.
func (b *ImageBuffer) Row(i, y int) []byte {
	p := b.Planes[i]
	start := y * p.Stride
	return p.Data[start : start+b.PlaneWidthBytes(i)]
}

// AppendVisible appends the visible rows of every plane to dst, dropping
// stride padding, and returns the extended slice.
func (b *ImageBuffer) AppendVisible(dst []byte) []byte {
	for i := 0; i < b.NumPlanes; i++ {
		for y := 0; y < b.PlaneHeight(i); y++ {
			dst = append(dst, b.Row(i, y)...)
		}
	}
	return dst
}

// VisibleSize returns the number of bytes AppendVisible adds.
func (b *ImageBuffer) VisibleSize() int {
	n := 0
	for i := 0; i < b.NumPlanes; i++ {
		n += b.PlaneWidthBytes(i) * b.PlaneHeight(i)
	}
	return n
}

// CopyTo copies every plane of b into dst. Both buffers must have been
// allocated with the same geometry.
func (b *ImageBuffer) CopyTo(dst *ImageBuffer) {
	for i := 0; i < b.NumPlanes; i++ {
		copy(dst.Planes[i].Data, b.Planes[i].Data[:min(len(b.Planes[i].Data), len(dst.Planes[i].Data))])
	}
}

// CeilShift returns ceil(v / 2^shift).
func CeilShift(v, shift int) int {
	return -((-v) >> shift)
}

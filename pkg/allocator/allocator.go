// Package allocator allocates padded, row-aligned planar image buffers and
// recycles their storage.
package allocator

import (
	"fmt"
	"math"
	"sync"

	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

const (
	// DefaultAlignment is the row alignment used when none is given.
	DefaultAlignment = 32

	// PaddedHeightBlock is the row count every plane height is rounded up to,
	// so that encoders may read whole macroblock rows past the visible image.
	PaddedHeightBlock = 32

	// DefaultMaxBytes caps a single allocation unit.
	DefaultMaxBytes = 1 << 30

	minPlanePadding = 32
)

// Stats reports allocator activity.
type Stats struct {
	Allocations int // buffers handed out by Allocate
	Reuses      int // allocation units served from the pool
	Clones      int // copies made by MakeWritable
	PooledBytes int // bytes currently held in the pool
}

// Allocator hands out ImageBuffers whose storage returns to an internal pool
// when the last reference is released.
type Allocator struct {
	// MaxBytes is the largest allocation unit the allocator will create.
	// Zero means DefaultMaxBytes.
	MaxBytes int

	log ports.Logger

	mu    sync.Mutex
	free  map[int][][]byte
	stats Stats
}

// New creates an Allocator.
func New(log ports.Logger) *Allocator {
	return &Allocator{
		MaxBytes: DefaultMaxBytes,
		log:      log.WithComponent("allocator"),
		free:     make(map[int][][]byte),
	}
}

// Layout is the computed memory geometry of an image.
type Layout struct {
	Strides      [media.MaxPlanes]int
	Rows         [media.MaxPlanes]int
	Sizes        [media.MaxPlanes]int
	PaddedHeight int
	PlanePadding int
}

// ComputeLayout validates the request and computes strides, padded row
// counts and plane sizes without allocating.
func ComputeLayout(width, height int, format media.PixelFormat, alignment int) (Layout, media.FormatDesc, error) {
	var l Layout
	desc, ok := media.LookupFormat(format)
	if !ok {
		return l, desc, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if alignment <= 0 {
		alignment = DefaultAlignment
	}
	if alignment&(alignment-1) != 0 {
		return l, desc, fmt.Errorf("%w: %d", ErrInvalidAlignment, alignment)
	}
	if err := checkDimensions(width, height, desc); err != nil {
		return l, desc, err
	}

	l.Strides = LineSizes(width, desc, alignment)
	l.PaddedHeight = alignUp(height, PaddedHeightBlock)
	l.PlanePadding = max(minPlanePadding, alignment)
	for i, p := range desc.Planes {
		l.Rows[i] = media.CeilShift(l.PaddedHeight, p.VShift)
		l.Sizes[i] = l.Strides[i] * l.Rows[i]
	}
	return l, desc, nil
}

// LineSizes returns the per-plane strides for width under alignment.
//
// Widths are rounded up by increasing powers of two until the luma line size
// lands on a multiple of alignment, then every line size is rounded up to
// alignment. Chroma strides therefore stay consistent with the luma stride
// under the format's subsampling.
func LineSizes(width int, desc media.FormatDesc, alignment int) [media.MaxPlanes]int {
	var ls [media.MaxPlanes]int
	for trial := 1; trial <= alignment; trial <<= 1 {
		w := alignUp(width, trial)
		for i, p := range desc.Planes {
			ls[i] = media.CeilShift(w, p.HShift) * p.Step
		}
		if ls[0]%alignment == 0 {
			break
		}
	}
	for i := range desc.Planes {
		ls[i] = alignUp(ls[i], alignment)
	}
	return ls
}

func checkDimensions(width, height int, desc media.FormatDesc) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width%(1<<desc.MaxHShift()) != 0 || height%(1<<desc.MaxVShift()) != 0 {
		return fmt.Errorf("%w: %dx%d not divisible by %s subsampling", ErrInvalidDimensions, width, height, desc.Name)
	}
	if int64(width+128)*int64(height+128) >= math.MaxInt32/8 {
		return fmt.Errorf("%w: %dx%d too large", ErrInvalidDimensions, width, height)
	}
	return nil
}

// Allocate returns a new buffer for a width x height image in format.
// Alignment <= 0 selects DefaultAlignment. Either every allocation unit is
// obtained or none is kept.
func (a *Allocator) Allocate(width, height int, format media.PixelFormat, alignment int) (*media.ImageBuffer, error) {
	if alignment <= 0 {
		alignment = DefaultAlignment
	}
	l, desc, err := ComputeLayout(width, height, format, alignment)
	if err != nil {
		return nil, err
	}

	buf := &media.ImageBuffer{
		Width:     width,
		Height:    height,
		Format:    format,
		Align:     alignment,
		NumPlanes: desc.PlaneCount(),
	}

	// Unit 0 holds luma, unit 1 the chroma planes back to back, and an alpha
	// plane gets a unit of its own.
	type unitPlan struct {
		planes []int
		size   int
	}
	var units []unitPlan
	units = append(units, unitPlan{planes: []int{0}})
	if n := desc.PlaneCount(); n > 1 {
		chroma := []int{1}
		if n > 2 && !desc.Interleaved {
			chroma = append(chroma, 2)
		}
		units = append(units, unitPlan{planes: chroma})
		if desc.Alpha {
			units = append(units, unitPlan{planes: []int{n - 1}})
		}
	}
	for i := range units {
		for _, p := range units[i].planes {
			units[i].size += l.Sizes[p]
		}
		units[i].size += 4 * l.PlanePadding
	}

	taken := make([][]byte, 0, len(units))
	for _, u := range units {
		data, err := a.take(u.size)
		if err != nil {
			for _, d := range taken {
				a.put(d)
			}
			return nil, fmt.Errorf("allocate %dx%d %s: %w", width, height, format, err)
		}
		taken = append(taken, data)
	}

	for ui, u := range units {
		buf.Allocations = append(buf.Allocations, media.NewAllocation(taken[ui], a.put))
		off := 0
		for _, p := range u.planes {
			buf.Planes[p] = media.Plane{
				Data:   taken[ui][off : off+l.Sizes[p]],
				Stride: l.Strides[p],
				Rows:   l.Rows[p],
				Alloc:  ui,
				Offset: off,
			}
			off += l.Sizes[p]
		}
	}

	a.mu.Lock()
	a.stats.Allocations++
	a.mu.Unlock()

	a.log.Debug("Allocated %dx%d %s buffer, strides %v", width, height, format, buf.Strides())
	return buf, nil
}

// MakeWritable returns a buffer the caller may modify without affecting other
// owners. An exclusively owned buffer is returned as is. A shared buffer is
// copied into a fresh buffer of identical geometry, the caller's reference to
// the original is released, and the copy is returned.
func (a *Allocator) MakeWritable(buf *media.ImageBuffer) (*media.ImageBuffer, error) {
	if !buf.Shared() {
		return buf, nil
	}
	clone, err := a.Allocate(buf.Width, buf.Height, buf.Format, buf.Align)
	if err != nil {
		return nil, err
	}
	buf.CopyTo(clone)
	buf.Release()

	a.mu.Lock()
	a.stats.Clones++
	a.mu.Unlock()
	return clone, nil
}

// Stats returns a snapshot of allocator activity.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Purge drops every pooled unit.
func (a *Allocator) Purge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = make(map[int][][]byte)
	a.stats.PooledBytes = 0
}

func (a *Allocator) take(size int) (data []byte, err error) {
	limit := a.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrOutOfMemory, size, limit)
	}

	a.mu.Lock()
	if list := a.free[size]; len(list) > 0 {
		data = list[len(list)-1]
		a.free[size] = list[:len(list)-1]
		a.stats.Reuses++
		a.stats.PooledBytes -= size
		a.mu.Unlock()
		return data, nil
	}
	a.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrOutOfMemory, r)
		}
	}()
	return make([]byte, size), nil
}

func (a *Allocator) put(data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free[len(data)] = append(a.free[len(data)], data)
	a.stats.PooledBytes += len(data)
}

func alignUp(v, a int) int {
	return (v + a - 1) &^ (a - 1)
}

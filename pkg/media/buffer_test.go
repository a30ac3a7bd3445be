package media

import "testing"

func newTestBuffer(recycled *int) *ImageBuffer {
	luma := NewAllocation(make([]byte, 64), func([]byte) { *recycled++ })
	chroma := NewAllocation(make([]byte, 32), func([]byte) { *recycled++ })
	b := &ImageBuffer{
		Width:       8,
		Height:      4,
		Format:      FormatYUV420P,
		NumPlanes:   3,
		Allocations: []*Allocation{luma, chroma},
	}
	b.Planes[0] = Plane{Data: luma.Bytes()[:32], Stride: 8, Rows: 4, Alloc: 0}
	b.Planes[1] = Plane{Data: chroma.Bytes()[:8], Stride: 4, Rows: 2, Alloc: 1}
	b.Planes[2] = Plane{Data: chroma.Bytes()[8:16], Stride: 4, Rows: 2, Alloc: 1, Offset: 8}
	return b
}

func TestImageBuffer_RefRelease(t *testing.T) {
	recycled := 0
	b := newTestBuffer(&recycled)

	if b.Shared() {
		t.Fatal("fresh buffer should not be shared")
	}

	r := b.Ref()
	if !b.Shared() || !r.Shared() {
		t.Fatal("expected both handles to report sharing")
	}
	if &r.Planes[0].Data[0] != &b.Planes[0].Data[0] {
		t.Error("ref should alias the same storage")
	}

	r.Release()
	if b.Shared() {
		t.Error("expected buffer to be exclusive after ref release")
	}
	if recycled != 0 {
		t.Errorf("storage recycled while still owned: %d", recycled)
	}

	r.Release() // second release of the same handle is a no-op
	if recycled != 0 {
		t.Errorf("double release recycled storage: %d", recycled)
	}

	b.Release()
	if recycled != 2 {
		t.Errorf("expected 2 allocations recycled, got %d", recycled)
	}
	if !b.Released() {
		t.Error("expected Released() to be true")
	}
}

func TestImageBuffer_RefAfterReleasePanics(t *testing.T) {
	recycled := 0
	b := newTestBuffer(&recycled)
	luma := b.Allocations[0]
	b.Release()

	defer func() {
		if recover() == nil {
			t.Error("expected Ref of a released buffer to panic")
		}
		if got := luma.Refs(); got != 0 {
			t.Errorf("Refs = %d after rejected Ref, want 0", got)
		}
	}()
	b.Ref()
}

func TestImageBuffer_Geometry(t *testing.T) {
	recycled := 0
	b := newTestBuffer(&recycled)

	if got := b.PlaneWidthBytes(0); got != 8 {
		t.Errorf("luma width bytes = %d, want 8", got)
	}
	if got := b.PlaneWidthBytes(1); got != 4 {
		t.Errorf("chroma width bytes = %d, want 4", got)
	}
	if got := b.PlaneHeight(2); got != 2 {
		t.Errorf("chroma height = %d, want 2", got)
	}
	if got := len(b.Row(0, 3)); got != 8 {
		t.Errorf("row length = %d, want 8", got)
	}

	strides := b.Strides()
	if len(strides) != 3 || strides[0] != 8 || strides[1] != 4 {
		t.Errorf("unexpected strides %v", strides)
	}
}

func TestLookupFormat(t *testing.T) {
	tests := []struct {
		format PixelFormat
		planes int
		bps    int
	}{
		{FormatYUV420P, 3, 1},
		{FormatNV21, 2, 1},
		{FormatNV12, 2, 1},
		{FormatGray, 1, 1},
		{FormatYUVA420P, 4, 1},
		{FormatYUV420P10LE, 3, 2},
	}

	for _, tt := range tests {
		d, ok := LookupFormat(tt.format)
		if !ok {
			t.Fatalf("format %s not registered", tt.format)
		}
		if d.PlaneCount() != tt.planes {
			t.Errorf("%s: planes = %d, want %d", tt.format, d.PlaneCount(), tt.planes)
		}
		if d.BytesPerSample() != tt.bps {
			t.Errorf("%s: bytes per sample = %d, want %d", tt.format, d.BytesPerSample(), tt.bps)
		}
	}

	if _, ok := LookupFormat("rgb48"); ok {
		t.Error("expected unknown format lookup to fail")
	}
}

func TestCeilShift(t *testing.T) {
	if CeilShift(5, 1) != 3 || CeilShift(4, 1) != 2 || CeilShift(7, 0) != 7 {
		t.Error("CeilShift rounding is wrong")
	}
}

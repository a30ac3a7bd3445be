package allocator

import (
	"errors"
	"testing"

	"github.com/user/planarenc/pkg/adapters/logger"
	"github.com/user/planarenc/pkg/media"
)

func TestAllocate_DefaultScenario(t *testing.T) {
	tests := []struct {
		format  media.PixelFormat
		strides []int
		planes  int
		allocs  int
	}{
		{media.FormatYUV420P, []int{640, 320, 320}, 3, 2},
		{media.FormatNV21, []int{640, 640}, 2, 2},
		{media.FormatGray, []int{640}, 1, 1},
		{media.FormatYUVA420P, []int{640, 320, 320, 640}, 4, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			a := New(logger.NewNoop())
			buf, err := a.Allocate(640, 320, tt.format, 32)
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}
			defer buf.Release()

			if buf.NumPlanes != tt.planes {
				t.Fatalf("NumPlanes = %d, want %d", buf.NumPlanes, tt.planes)
			}
			if len(buf.Allocations) != tt.allocs {
				t.Errorf("allocations = %d, want %d", len(buf.Allocations), tt.allocs)
			}
			for i, want := range tt.strides {
				if got := buf.Planes[i].Stride; got != want {
					t.Errorf("stride[%d] = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestAllocate_ChromaPlanesShareAllocation(t *testing.T) {
	a := New(logger.NewNoop())
	buf, err := a.Allocate(100, 50, media.FormatYUV420P, 32)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	defer buf.Release()

	u, v := buf.Planes[1], buf.Planes[2]
	if u.Alloc != 1 || v.Alloc != 1 {
		t.Fatalf("chroma allocs = %d,%d, want 1,1", u.Alloc, v.Alloc)
	}
	// Padded height 64, chroma rows 32, chroma stride 64.
	if u.Rows != 32 {
		t.Errorf("chroma rows = %d, want 32", u.Rows)
	}
	if v.Offset != u.Stride*u.Rows {
		t.Errorf("plane 2 offset = %d, want %d", v.Offset, u.Stride*u.Rows)
	}

	// Writes through one plane must not bleed into the other.
	for i := range u.Data {
		u.Data[i] = 0xAA
	}
	for _, b := range v.Data {
		if b != 0 {
			t.Fatal("plane 1 write reached plane 2")
		}
	}
}

func TestAllocate_StrideProperty(t *testing.T) {
	widths := []int{2, 16, 98, 100, 176, 352, 640, 1278, 1920}
	alignments := []int{1, 4, 16, 32, 64}

	for _, f := range media.Formats() {
		desc, _ := media.LookupFormat(f)
		for _, w := range widths {
			if w%(1<<desc.MaxHShift()) != 0 {
				continue
			}
			for _, align := range alignments {
				a := New(logger.NewNoop())
				buf, err := a.Allocate(w, 2*(1<<desc.MaxVShift()), f, align)
				if err != nil {
					t.Fatalf("%s %d align %d: %v", f, w, align, err)
				}
				for i := 0; i < buf.NumPlanes; i++ {
					p := buf.Planes[i]
					if p.Stride%align != 0 {
						t.Errorf("%s w=%d align=%d: stride[%d]=%d not aligned", f, w, align, i, p.Stride)
					}
					if p.Stride < buf.PlaneWidthBytes(i) {
						t.Errorf("%s w=%d align=%d: stride[%d]=%d < row bytes %d", f, w, align, i, p.Stride, buf.PlaneWidthBytes(i))
					}
					if len(p.Data) != p.Stride*p.Rows {
						t.Errorf("%s w=%d align=%d: plane %d len %d, want %d", f, w, align, i, len(p.Data), p.Stride*p.Rows)
					}
				}
				buf.Release()
			}
		}
	}
}

func TestLineSizes_TrialAlignment(t *testing.T) {
	desc, _ := media.LookupFormat(media.FormatYUV420P)
	got := LineSizes(100, desc, 32)
	want := [media.MaxPlanes]int{128, 64, 64, 0}
	if got != want {
		t.Errorf("LineSizes(100) = %v, want %v", got, want)
	}
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		format media.PixelFormat
		align  int
		want   error
	}{
		{"zero width", 0, 320, media.FormatYUV420P, 32, ErrInvalidDimensions},
		{"negative height", 640, -2, media.FormatYUV420P, 32, ErrInvalidDimensions},
		{"odd width 420", 641, 320, media.FormatYUV420P, 32, ErrInvalidDimensions},
		{"odd height 420", 640, 321, media.FormatNV21, 32, ErrInvalidDimensions},
		{"too large", 20000, 20000, media.FormatGray, 32, ErrInvalidDimensions},
		{"unknown format", 640, 320, media.PixelFormat("rgb48"), 32, ErrUnknownFormat},
		{"alignment not power of two", 640, 320, media.FormatYUV420P, 24, ErrInvalidAlignment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(logger.NewNoop())
			buf, err := a.Allocate(tt.w, tt.h, tt.format, tt.align)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if buf != nil {
				t.Error("expected nil buffer on error")
			}
		})
	}
}

func TestAllocate_OddWidthAllowedFor444(t *testing.T) {
	a := New(logger.NewNoop())
	buf, err := a.Allocate(33, 17, media.FormatYUV444P, 0)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	defer buf.Release()
	if buf.Align != DefaultAlignment {
		t.Errorf("Align = %d, want %d", buf.Align, DefaultAlignment)
	}
	if buf.Planes[0].Stride != 64 {
		t.Errorf("stride = %d, want 64", buf.Planes[0].Stride)
	}
}

func TestAllocate_AllOrNothing(t *testing.T) {
	a := New(logger.NewNoop())
	// yuv444p 64x64: luma unit 64*64 + 4*32, chroma unit twice the plane size.
	lumaUnit := 64*64 + 4*32
	a.MaxBytes = lumaUnit

	buf, err := a.Allocate(64, 64, media.FormatYUV444P, 32)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
	if buf != nil {
		t.Fatal("expected nil buffer")
	}
	if got := a.Stats().PooledBytes; got != lumaUnit {
		t.Errorf("PooledBytes = %d, want luma unit %d returned to pool", got, lumaUnit)
	}
	if got := a.Stats().Allocations; got != 0 {
		t.Errorf("Allocations = %d, want 0", got)
	}
}

func TestAllocate_ReusesReleasedStorage(t *testing.T) {
	a := New(logger.NewNoop())
	first, err := a.Allocate(64, 64, media.FormatYUV420P, 32)
	if err != nil {
		t.Fatal(err)
	}
	luma := &first.Planes[0].Data[0]
	first.Release()

	second, err := a.Allocate(64, 64, media.FormatYUV420P, 32)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Release()

	if &second.Planes[0].Data[0] != luma {
		t.Error("expected luma storage to be reused")
	}
	if got := a.Stats().Reuses; got != 2 {
		t.Errorf("Reuses = %d, want 2", got)
	}
}

func TestPurge_DropsPooledStorage(t *testing.T) {
	a := New(logger.NewNoop())
	first, err := a.Allocate(64, 64, media.FormatYUV420P, 32)
	if err != nil {
		t.Fatal(err)
	}
	first.Release()
	if a.Stats().PooledBytes == 0 {
		t.Fatal("released storage should be pooled")
	}

	a.Purge()
	if got := a.Stats().PooledBytes; got != 0 {
		t.Errorf("PooledBytes after Purge = %d, want 0", got)
	}

	second, err := a.Allocate(64, 64, media.FormatYUV420P, 32)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Release()
	if got := a.Stats().Reuses; got != 0 {
		t.Errorf("Reuses = %d, want 0 after Purge", got)
	}
}

func TestMakeWritable(t *testing.T) {
	a := New(logger.NewNoop())
	buf, err := a.Allocate(64, 32, media.FormatNV12, 32)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("exclusive buffer is returned as is", func(t *testing.T) {
		got, err := a.MakeWritable(buf)
		if err != nil {
			t.Fatal(err)
		}
		if got != buf {
			t.Error("expected the same buffer")
		}
	})

	t.Run("shared buffer is copied", func(t *testing.T) {
		buf.Planes[0].Data[0] = 42
		buf.Planes[1].Data[1] = 7
		held := buf.Ref()
		defer held.Release()

		got, err := a.MakeWritable(buf)
		if err != nil {
			t.Fatal(err)
		}
		defer got.Release()

		if got == buf {
			t.Fatal("expected a new buffer")
		}
		if !buf.Released() {
			t.Error("caller's reference to the original should be released")
		}
		if held.Shared() {
			t.Error("other owner should now hold the original exclusively")
		}
		if got.Planes[0].Data[0] != 42 || got.Planes[1].Data[1] != 7 {
			t.Error("contents not copied")
		}
		got.Planes[0].Data[0] = 1
		if held.Planes[0].Data[0] != 42 {
			t.Error("write to copy modified the original")
		}
		if a.Stats().Clones != 1 {
			t.Errorf("Clones = %d, want 1", a.Stats().Clones)
		}
	})
}

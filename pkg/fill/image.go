package fill

import (
	"image"
	"image/color"

	"github.com/user/planarenc/pkg/media"
)

// FromImage converts img into the buffer's pixel format using BT.601
// coefficients. Each chroma sample takes the top-left pixel of its block.
// Pixels outside the image bounds read as transparent black.
func FromImage(buf *media.ImageBuffer, img image.Image) {
	desc, ok := media.LookupFormat(buf.Format)
	if !ok {
		return
	}
	wide := desc.BytesPerSample() == 2
	origin := img.Bounds().Min

	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(origin.X+x, origin.Y+y)).(color.NRGBA)
	}

	for y := 0; y < buf.PlaneHeight(0); y++ {
		row := buf.Row(0, y)
		for x := 0; x < buf.Width; x++ {
			c := at(x, y)
			luma, _, _ := color.RGBToYCbCr(c.R, c.G, c.B)
			put(row, x, wide, int(luma))
		}
	}

	if desc.PlaneCount() >= 2 {
		hs, vs := desc.Planes[1].HShift, desc.Planes[1].VShift
		cw := media.CeilShift(buf.Width, hs)
		cbAt, crAt := 0, 1
		if buf.Format == media.FormatNV21 {
			cbAt, crAt = 1, 0
		}
		for y := 0; y < buf.PlaneHeight(1); y++ {
			for x := 0; x < cw; x++ {
				c := at(x<<hs, y<<vs)
				_, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
				if desc.Interleaved {
					row := buf.Row(1, y)
					row[2*x+cbAt] = cb
					row[2*x+crAt] = cr
					continue
				}
				put(buf.Row(1, y), x, wide, int(cb))
				put(buf.Row(2, y), x, wide, int(cr))
			}
		}
	}

	if desc.Alpha {
		a := desc.PlaneCount() - 1
		for y := 0; y < buf.PlaneHeight(a); y++ {
			row := buf.Row(a, y)
			for x := 0; x < buf.Width; x++ {
				put(row, x, wide, int(at(x, y).A))
			}
		}
	}
}
